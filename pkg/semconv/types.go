// Package semconv loads and indexes the semantic convention definitions that
// emitted span attributes are checked against.
package semconv

import "fmt"

// AttributeType represents the type of a semantic convention attribute.
// For scalar types (string, int, boolean, etc.) Value holds the type name.
// For enum types, Value is "enum" and Members is populated.
type AttributeType struct {
	Value   string
	Members []EnumMember
}

// UnmarshalYAML handles both scalar type strings and enum definitions with members.
func (t *AttributeType) UnmarshalYAML(unmarshal func(any) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		t.Value = scalar
		return nil
	}

	var mapping struct {
		Members []EnumMember `yaml:"members"`
	}
	if err := unmarshal(&mapping); err != nil {
		return fmt.Errorf("attribute type: expected string or mapping with members: %w", err)
	}
	t.Value = "enum"
	t.Members = mapping.Members
	return nil
}

// EnumMember represents a single member of an enum attribute type.
type EnumMember struct {
	ID        string `yaml:"id"`
	Value     any    `yaml:"value"`
	Brief     string `yaml:"brief"`
	Stability string `yaml:"stability"`
}

// Examples holds example values for an attribute.
type Examples struct {
	Values []any
}

// UnmarshalYAML accepts a scalar or a sequence of examples.
func (e *Examples) UnmarshalYAML(unmarshal func(any) error) error {
	var seq []any
	if err := unmarshal(&seq); err == nil {
		e.Values = seq
		return nil
	}

	var scalar any
	if err := unmarshal(&scalar); err != nil {
		return fmt.Errorf("examples: expected scalar or sequence: %w", err)
	}
	e.Values = []any{scalar}
	return nil
}

// RequirementLevel is how strongly a group requires an attribute. Plain levels
// (required, recommended, opt_in) leave Explanation empty; conditional levels
// carry the condition text.
type RequirementLevel struct {
	Level       string
	Explanation string
}

// UnmarshalYAML accepts either a plain level or a single-key mapping.
func (r *RequirementLevel) UnmarshalYAML(unmarshal func(any) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		r.Level = scalar
		return nil
	}

	var mapping map[string]string
	if err := unmarshal(&mapping); err != nil {
		return fmt.Errorf("requirement_level: expected string or mapping: %w", err)
	}
	for level, why := range mapping {
		r.Level = level
		r.Explanation = why
	}
	return nil
}

// Required reports whether the attribute must always be present.
func (r RequirementLevel) Required() bool {
	return r.Level == "required"
}

// Attribute is a semantic convention attribute definition or, when Ref is set,
// a reference to one defined elsewhere.
type Attribute struct {
	ID         string        `yaml:"id"`
	Ref        string        `yaml:"ref"`
	Type       AttributeType `yaml:"type"`
	Brief      string        `yaml:"brief"`
	Stability  string        `yaml:"stability"`
	Examples   Examples      `yaml:"examples"`
	Deprecated any           `yaml:"deprecated"`

	RequirementLevel RequirementLevel `yaml:"requirement_level"`
}

// EnumValues returns the string values of an enum attribute's members.
func (a *Attribute) EnumValues() []string {
	values := make([]string, 0, len(a.Type.Members))
	for _, m := range a.Type.Members {
		if s, ok := m.Value.(string); ok {
			values = append(values, s)
		}
	}
	return values
}

// Group is a semantic convention group (attribute_group, metric, span).
type Group struct {
	ID          string      `yaml:"id"`
	Type        string      `yaml:"type"`
	DisplayName string      `yaml:"display_name"`
	Brief       string      `yaml:"brief"`
	Stability   string      `yaml:"stability"`
	MetricName  string      `yaml:"metric_name"`
	Instrument  string      `yaml:"instrument"`
	Unit        string      `yaml:"unit"`
	Attributes  []Attribute `yaml:"attributes"`

	domain string // first directory of the source file
}
