package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// Errors maps a field name to the message describing why it was rejected.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator runs the checkout rule table through go-playground/validator.
type Validator struct {
	rules *Rules
	v     *validatorv10.Validate
}

// New returns a configured validator with the "rule" tag and the postal
// code struct-level check registered against rules.
func New(rules *Rules) *Validator {
	v := validatorv10.New()

	// report fields by their JSON names so errors line up with form ids
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("rule", func(fl validatorv10.FieldLevel) bool {
		field := fl.Field()
		switch field.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			return rules.CheckInt(fl.FieldName(), int(field.Int()))
		default:
			return rules.CheckString(fl.FieldName(), field.String())
		}
	})

	v.RegisterStructValidation(func(sl validatorv10.StructLevel) {
		in := sl.Current().Interface().(Input)
		if !rules.ValidPin(in.Pin, in.Country) {
			sl.ReportError(in.Pin, "pin", "Pin", "postal", in.Country)
		}
	}, Input{})

	return &Validator{rules: rules, v: v}
}

// Rules exposes the table the validator was built from.
func (v *Validator) Rules() *Rules { return v.rules }

// Validate checks every field and returns all violations at once.
// A nil result means the input is valid.
func (v *Validator) Validate(in Input) Errors {
	err := v.v.Struct(in)
	if err == nil {
		return nil
	}
	out := Errors{}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = v.rules.Message(fe.Field())
	}
	return out
}
