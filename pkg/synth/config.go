// YAML configuration types, loading, and validation for scenario tables
// Describes the operations emitted each cycle, the cycle interval, and naming options
package synth

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/andrewh/txname/pkg/naming"
	"gopkg.in/yaml.v3"
)

// DefaultInterval is the pause between two passes over the scenario table.
const DefaultInterval = 500 * time.Millisecond

// Config is the top-level YAML configuration for a scenario table.
type Config struct {
	Interval       string           `yaml:"interval,omitempty"`
	Duration       string           `yaml:"duration,omitempty"`
	MessagingOrder string           `yaml:"messaging_order,omitempty"`
	Scenarios      []ScenarioConfig `yaml:"scenarios"`
}

// ScenarioConfig describes one simulated operation. Exactly one of Web or Messaging is set.
type ScenarioConfig struct {
	Name      string           `yaml:"name,omitempty"`
	Class     string           `yaml:"class,omitempty"`
	Web       *WebConfig       `yaml:"web,omitempty"`
	Messaging *MessagingConfig `yaml:"messaging,omitempty"`
}

// WebConfig is the YAML form of a simulated web request. Omitted or null fields are absent.
type WebConfig struct {
	Method   *string `yaml:"method,omitempty"`
	Route    *string `yaml:"route,omitempty"`
	SpanName *string `yaml:"span_name,omitempty"`
}

// MessagingConfig is the YAML form of a simulated messaging operation.
type MessagingConfig struct {
	Operation           *string `yaml:"operation,omitempty"`
	DestinationTemplate *string `yaml:"destination_template,omitempty"`
	DestinationName     *string `yaml:"destination_name,omitempty"`
	SpanName            *string `yaml:"span_name,omitempty"`
}

// Options are the resolved, validated settings of a Config.
type Options struct {
	Interval       time.Duration
	Durations      naming.DurationRange
	MessagingOrder naming.MessagingOrder
}

const (
	urlFetchTimeout = 10 * time.Second
	maxConfigBytes  = 10 << 20
)

// LoadConfig reads and parses a YAML configuration from a file path or an
// http(s) URL. URL fetches are bounded by a timeout and a 10 MB body limit.
func LoadConfig(source string) (*Config, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err := fetchConfig(source)
		if err != nil {
			return nil, err
		}
		return ParseConfig(data)
	}

	data, err := os.ReadFile(source) //nolint:gosec // user-supplied config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

func fetchConfig(url string) ([]byte, error) {
	client := &http.Client{Timeout: urlFetchTimeout}
	resp, err := client.Get(url) //nolint:gosec,noctx // user-supplied URL is expected
	if err != nil {
		return nil, fmt.Errorf("fetching URL: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching URL: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxConfigBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetching URL: %w", err)
	}
	if len(data) > maxConfigBytes {
		return nil, fmt.Errorf("fetching URL: response exceeds %d MB limit", maxConfigBytes>>20)
	}
	return data, nil
}

// ParseConfig parses YAML configuration bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// ValidateConfig checks a configuration for structural correctness.
func ValidateConfig(cfg *Config) error {
	if len(cfg.Scenarios) == 0 {
		return fmt.Errorf("at least one scenario is required")
	}

	for i, sc := range cfg.Scenarios {
		label := scenarioLabel(i, sc)
		switch {
		case sc.Web == nil && sc.Messaging == nil:
			return fmt.Errorf("%s: one of web or messaging is required", label)
		case sc.Web != nil && sc.Messaging != nil:
			return fmt.Errorf("%s: web and messaging are mutually exclusive", label)
		}
		switch sc.Class {
		case "", ClassDerived, ClassOverride, ClassUnknown:
		default:
			return fmt.Errorf("%s: unknown class %q, valid classes: %s, %s, %s", label, sc.Class, ClassDerived, ClassOverride, ClassUnknown)
		}
	}

	if _, err := cfg.Options(); err != nil {
		return err
	}
	return nil
}

// Options resolves the interval, duration range, and messaging order, applying defaults.
func (cfg *Config) Options() (Options, error) {
	opts := Options{
		Interval:  DefaultInterval,
		Durations: naming.DefaultDurations,
	}

	if cfg.Interval != "" {
		d, err := time.ParseDuration(cfg.Interval)
		if err != nil {
			return Options{}, fmt.Errorf("invalid interval: %w", err)
		}
		if d < 0 {
			return Options{}, fmt.Errorf("interval must not be negative")
		}
		opts.Interval = d
	}

	if cfg.Duration != "" {
		r, err := naming.ParseDurationRange(cfg.Duration)
		if err != nil {
			return Options{}, fmt.Errorf("invalid duration: %w", err)
		}
		opts.Durations = r
	}

	order, err := naming.ParseMessagingOrder(cfg.MessagingOrder)
	if err != nil {
		return Options{}, err
	}
	opts.MessagingOrder = order

	return opts, nil
}

// BuildScenarios converts validated scenario configs into a scenario table.
func BuildScenarios(cfgs []ScenarioConfig) []Scenario {
	scenarios := make([]Scenario, 0, len(cfgs))
	for i, sc := range cfgs {
		s := Scenario{Name: sc.Name, Class: sc.Class}
		if sc.Web != nil {
			s.Operation = naming.WebRequest{
				Method:       sc.Web.Method,
				Route:        sc.Web.Route,
				NameOverride: sc.Web.SpanName,
			}
		} else {
			s.Operation = naming.MessagingOperation{
				Operation:           sc.Messaging.Operation,
				DestinationTemplate: sc.Messaging.DestinationTemplate,
				DestinationName:     sc.Messaging.DestinationName,
				NameOverride:        sc.Messaging.SpanName,
			}
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("scenario %d", i+1)
		}
		if s.Class == "" {
			s.Class = InferClass(s.Operation)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios
}

// InferClass classifies an operation by the fields a backend uses to derive a transaction name.
func InferClass(op naming.Operation) string {
	switch o := op.(type) {
	case naming.WebRequest:
		switch {
		case o.Method == nil && o.Route == nil:
			return ClassUnknown
		case o.NameOverride != nil:
			return ClassOverride
		}
	case naming.MessagingOperation:
		switch {
		case o.Operation == nil:
			return ClassUnknown
		case o.NameOverride != nil:
			return ClassOverride
		}
	}
	return ClassDerived
}

func scenarioLabel(i int, sc ScenarioConfig) string {
	if sc.Name != "" {
		return fmt.Sprintf("scenario %q", sc.Name)
	}
	return fmt.Sprintf("scenario %d", i+1)
}
