package validation

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Text is a request string that also accepts JSON numbers and booleans,
// since form serializers are not consistent about quoting postal codes and
// phone numbers. null and non-scalar values decode to "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case data[0] == '{', data[0] == '[':
		*t = ""
	default:
		// number or boolean literal
		*t = Text(data)
	}
	return nil
}

// Quantity keeps the raw textual form of qty until Sanitize coerces it.
type Quantity string

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	*q = Quantity(t)
	return nil
}

// RawOrder is the untrusted body of POST /api/orders.
type RawOrder struct {
	Name     Text     `json:"name"`
	Email    Text     `json:"email"`
	Phone    Text     `json:"phone"`
	Address1 Text     `json:"address1"`
	Address2 Text     `json:"address2"`
	City     Text     `json:"city"`
	State    Text     `json:"state"`
	Country  Text     `json:"country"`
	Pin      Text     `json:"pin"`
	Qty      Quantity `json:"qty"`
}

// Input is a sanitized order ready for validation.
type Input struct {
	Name     string `json:"name" validate:"rule"`
	Email    string `json:"email" validate:"rule"`
	Phone    string `json:"phone" validate:"rule"`
	Address1 string `json:"address1" validate:"rule"`
	Address2 string `json:"address2"`
	City     string `json:"city" validate:"rule"`
	State    string `json:"state" validate:"rule"`
	Country  string `json:"country" validate:"rule"`
	Pin      string `json:"pin"` // checked at struct level against Country
	Qty      int    `json:"qty" validate:"rule"`
}

// Sanitize trims every string, lower-cases the email and coerces qty.
func Sanitize(raw RawOrder) Input {
	return Input{
		Name:     clean(raw.Name),
		Email:    strings.ToLower(clean(raw.Email)),
		Phone:    clean(raw.Phone),
		Address1: clean(raw.Address1),
		Address2: clean(raw.Address2),
		City:     clean(raw.City),
		State:    clean(raw.State),
		Country:  clean(raw.Country),
		Pin:      clean(raw.Pin),
		Qty:      ParseQuantity(string(raw.Qty)),
	}
}

// decimalNumber is the numeric syntax both sides accept for qty. It keeps
// ParseFloat's extras (hex, inf, nan) and Number()'s (0x, 0b, 0o) out.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseQuantity coerces a raw quantity. Absent or non-numeric values mean 1.
// Fractional or out-of-range numbers map to 0 so that the range check
// rejects them instead of silently rounding.
func ParseQuantity(s string) int {
	s = TrimSpace(s)
	if s == "" || !decimalNumber.MatchString(s) {
		return 1
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// only ErrRange is possible here
		return 0
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func clean(t Text) string { return TrimSpace(string(t)) }
