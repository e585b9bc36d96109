package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// FieldRule describes the check applied to one checkout field.
type FieldRule struct {
	Field     string `yaml:"field" json:"field"`
	Required  bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Pattern   string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	MinLength int    `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	Min       int    `yaml:"min,omitempty" json:"min,omitempty"`
	Max       int    `yaml:"max,omitempty" json:"max,omitempty"`
	Postal    bool   `yaml:"postal,omitempty" json:"postal,omitempty"`
	Message   string `yaml:"message" json:"message"`

	re *regexp.Regexp
}

// PostalPattern is the postal code format of a single country. Patterns
// carry no flags; letter case is spelled out in the character classes.
type PostalPattern struct {
	Pattern string `yaml:"pattern" json:"pattern"`

	re *regexp.Regexp
}

// PostalRules maps ISO country codes to postal code formats. Countries not
// listed only need FallbackMinLength characters.
type PostalRules struct {
	FallbackMinLength int                      `yaml:"fallback_min_length" json:"fallback_min_length"`
	Countries         map[string]PostalPattern `yaml:"countries" json:"countries"`
}

// Rules is the compiled checkout rule table shared by the intake service,
// the browser script and the Go checkout client.
type Rules struct {
	Fields []FieldRule `yaml:"fields" json:"fields"`
	Postal PostalRules `yaml:"postal" json:"postal"`

	byField map[string]*FieldRule
}

var (
	defaultOnce  sync.Once
	defaultRules *Rules
	defaultErr   error
)

// Default returns the rule table embedded in the binary. It panics if the
// embedded table does not compile, which can only happen at build time.
func Default() *Rules {
	defaultOnce.Do(func() {
		defaultRules, defaultErr = ParseYAML(defaultRulesYAML)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded checkout rules: %v", defaultErr))
	}
	return defaultRules
}

// ParseYAML decodes and compiles a YAML rule table.
func ParseYAML(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode rules yaml: %w", err)
	}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseJSON decodes and compiles a rule table served by GET /api/checkout/rules.
func ParseJSON(data []byte) (*Rules, error) {
	var r Rules
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode rules json: %w", err)
	}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rules) compile() error {
	r.byField = make(map[string]*FieldRule, len(r.Fields))
	for i := range r.Fields {
		f := &r.Fields[i]
		if f.Field == "" {
			return fmt.Errorf("rule %d has no field name", i)
		}
		if f.Pattern != "" {
			re, err := compilePattern(f.Pattern)
			if err != nil {
				return fmt.Errorf("compile pattern for %s: %w", f.Field, err)
			}
			f.re = re
		}
		r.byField[f.Field] = f
	}
	for code, p := range r.Postal.Countries {
		re, err := compilePattern(p.Pattern)
		if err != nil {
			return fmt.Errorf("compile postal pattern for %s: %w", code, err)
		}
		p.re = re
		r.Postal.Countries[code] = p
	}
	return nil
}

// FieldNames lists the checked fields in display order.
func (r *Rules) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		names = append(names, f.Field)
	}
	return names
}

// Message returns the error text shown for a failing field.
func (r *Rules) Message(field string) string {
	if f, ok := r.byField[field]; ok {
		return f.Message
	}
	return "Invalid value"
}

// CheckString applies the rule for field to an already trimmed value.
// Lengths are counted in code points, as the browser does with [...v].length.
// Fields without a rule, and the postal field, always pass here.
func (r *Rules) CheckString(field, value string) bool {
	f, ok := r.byField[field]
	if !ok || f.Postal {
		return true
	}
	if f.Required && value == "" {
		return false
	}
	if f.MinLength > 0 && utf8.RuneCountInString(value) < f.MinLength {
		return false
	}
	if f.re != nil && !f.re.MatchString(value) {
		return false
	}
	return true
}

// CheckInt applies the min/max bounds of field.
func (r *Rules) CheckInt(field string, n int) bool {
	f, ok := r.byField[field]
	if !ok {
		return true
	}
	if f.Min != 0 && n < f.Min {
		return false
	}
	if f.Max != 0 && n > f.Max {
		return false
	}
	return true
}

// ValidPin reports whether pin is a valid postal code for country.
func (r *Rules) ValidPin(pin, country string) bool {
	p := TrimSpace(pin)
	if c, ok := r.Postal.Countries[country]; ok {
		return c.re.MatchString(p)
	}
	return utf8.RuneCountInString(p) >= r.Postal.FallbackMinLength
}

// ValidPin checks pin against the embedded table.
func ValidPin(pin, country string) bool { return Default().ValidPin(pin, country) }

// ValidEmail checks email against the embedded table.
func ValidEmail(email string) bool { return Default().CheckString("email", email) }

// ValidPhone checks phone against the embedded table.
func ValidPhone(phone string) bool { return Default().CheckString("phone", TrimSpace(phone)) }
