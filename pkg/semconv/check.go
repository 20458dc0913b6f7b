// Conformance checks of emitted span attributes against the registry
package semconv

import (
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
)

// Severity levels for check findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Finding is a single conformance problem with an attribute.
type Finding struct {
	Key      string
	Severity string
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Key, f.Message)
}

// CheckAttributes reports attributes that are unknown to the registry, carry a
// value of the wrong type, or use a value outside a known enum. Enum values are
// open in the conventions, so unlisted values are warnings.
func (r *Registry) CheckAttributes(attrs []attribute.KeyValue) []Finding {
	var findings []Finding
	for _, kv := range attrs {
		key := string(kv.Key)
		def := r.Attribute(key)
		if def == nil {
			findings = append(findings, Finding{Key: key, Severity: SeverityError, Message: "not defined in the semantic conventions"})
			continue
		}
		if def.Deprecated != nil {
			findings = append(findings, Finding{Key: key, Severity: SeverityWarning, Message: "deprecated"})
		}

		want := expectedType(def.Type.Value)
		if want != attribute.INVALID && kv.Value.Type() != want {
			findings = append(findings, Finding{
				Key:      key,
				Severity: SeverityError,
				Message:  fmt.Sprintf("has type %s, convention requires %s", kv.Value.Type(), def.Type.Value),
			})
			continue
		}

		if def.Type.Value == "enum" && kv.Value.Type() == attribute.STRING {
			if values := def.EnumValues(); len(values) > 0 && !slices.Contains(values, kv.Value.AsString()) {
				findings = append(findings, Finding{
					Key:      key,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("value %q is not a well-known member", kv.Value.AsString()),
				})
			}
		}
	}
	return findings
}

// expectedType maps a convention type name to an attribute type. INVALID means
// the convention type is not checked.
func expectedType(conv string) attribute.Type {
	switch conv {
	case "string", "enum":
		return attribute.STRING
	case "int":
		return attribute.INT64
	case "double":
		return attribute.FLOAT64
	case "boolean":
		return attribute.BOOL
	case "string[]":
		return attribute.STRINGSLICE
	default:
		return attribute.INVALID
	}
}

// CheckMetric checks attrs as recorded on the named metric instrument. On top
// of CheckAttributes it warns about attributes the metric requires but attrs
// lacks. Scenarios that withhold fields on purpose produce these warnings.
func (r *Registry) CheckMetric(name string, attrs []attribute.KeyValue) []Finding {
	findings := r.CheckAttributes(attrs)
	g := r.Metric(name)
	if g == nil {
		return append(findings, Finding{Key: name, Severity: SeverityError, Message: "metric not defined in the semantic conventions"})
	}

	present := make(map[string]bool, len(attrs))
	for _, kv := range attrs {
		present[string(kv.Key)] = true
	}
	for _, a := range g.Attributes {
		if a.RequirementLevel.Required() && !present[a.ID] {
			findings = append(findings, Finding{Key: a.ID, Severity: SeverityWarning, Message: "required by " + name + " but absent"})
		}
	}
	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	return slices.ContainsFunc(findings, func(f Finding) bool { return f.Severity == SeverityError })
}
