package checkout

import (
	"context"
	"errors"
	"strconv"

	"github.com/imrishuroy/landing-checkout/internal/money"
	"github.com/imrishuroy/landing-checkout/internal/validation"
)

const (
	minQty = 1
	maxQty = 10

	firstField = "name"
	homeAnchor = "#home"
)

// Fields are the raw values of the checkout form inputs.
type Fields struct {
	Name     string
	Email    string
	Phone    string
	Address1 string
	Address2 string
	City     string
	State    string
	Country  string
	Pin      string
	Qty      string
}

// ValidationResult maps every checked field to its message, "" when valid.
type ValidationResult struct {
	OK     bool
	Errors map[string]string
}

// Submitter sends a validated order; *Client satisfies it.
type Submitter interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Receipt, error)
}

// Form is the checkout modal controller. It holds the same state the
// browser page does: visibility, focus, field values, errors and the
// displayed total.
type Form struct {
	validator      *validation.Validator
	submitter      Submitter
	unitPriceCents int

	Open         bool
	AriaHidden   string
	ScrollLocked bool
	Focus        string
	Location     string

	Fields    Fields
	Errors    map[string]string
	FormError string
	Total     string
}

// NewForm returns a closed form with default values.
func NewForm(v *validation.Validator, submitter Submitter, unitPriceCents int) *Form {
	f := &Form{
		validator:      v,
		submitter:      submitter,
		unitPriceCents: unitPriceCents,
		AriaHidden:     "true",
	}
	f.reset()
	return f
}

// OpenModal shows the modal, locks page scroll and focuses the first field.
func (f *Form) OpenModal() {
	f.Open = true
	f.AriaHidden = "false"
	f.ScrollLocked = true
	f.Focus = firstField
}

// CloseModal hides the modal and releases the scroll lock.
func (f *Form) CloseModal() {
	f.Open = false
	f.AriaHidden = "true"
	f.ScrollLocked = false
	f.Focus = ""
}

// UpdateTotal clamps qty to [1,10], writes it back to the quantity field
// and refreshes the displayed total. It returns the clamped quantity.
// This mirrors the page's quantity input; callers holding explicit input
// that must reach validation unchanged use TotalFor instead.
func (f *Form) UpdateTotal(qty string) int {
	n := clampQty(qty)
	f.Fields.Qty = strconv.Itoa(n)
	f.Total = f.TotalFor(qty)
	return n
}

// TotalFor is the total displayed for qty, clamped to [1,10]. It does not
// touch the form.
func (f *Form) TotalFor(qty string) string {
	return money.Format(clampQty(qty) * f.unitPriceCents)
}

func clampQty(qty string) int {
	n := validation.ParseQuantity(qty)
	if n < minQty {
		return minQty
	}
	if n > maxQty {
		return maxQty
	}
	return n
}

// Validate runs fields through the shared rule table.
func (f *Form) Validate(fields Fields) ValidationResult {
	in := validation.Sanitize(fields.raw())
	errs := f.validator.Validate(in)

	res := ValidationResult{OK: len(errs) == 0, Errors: map[string]string{}}
	for _, name := range f.validator.Rules().FieldNames() {
		res.Errors[name] = errs[name]
	}
	return res
}

// CheckPin re-validates the postal code as the user types.
func (f *Form) CheckPin() {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	rules := f.validator.Rules()
	if rules.ValidPin(f.Fields.Pin, f.Fields.Country) {
		f.Errors["pin"] = ""
		return
	}
	f.Errors["pin"] = rules.Message("pin")
}

// Submit validates the current fields and, if they pass, sends the order.
// On success the modal closes, the form resets and the view returns home.
// A rejection from the server is mapped back onto the fields.
func (f *Form) Submit(ctx context.Context) (*Receipt, error) {
	f.FormError = ""
	res := f.Validate(f.Fields)
	f.Errors = res.Errors
	if !res.OK {
		return nil, &RejectedError{Fields: nonEmpty(res.Errors)}
	}

	in := validation.Sanitize(f.Fields.raw())
	receipt, err := f.submitter.CreateOrder(ctx, OrderRequest{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Address1: in.Address1,
		Address2: in.Address2,
		City:     in.City,
		State:    in.State,
		Country:  in.Country,
		Pin:      in.Pin,
		Qty:      in.Qty,
	})
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			for field, msg := range rejected.Fields {
				f.Errors[field] = msg
			}
		} else {
			f.FormError = "Something went wrong, please try again."
		}
		return nil, err
	}

	f.CloseModal()
	f.reset()
	f.Location = homeAnchor
	return receipt, nil
}

func (f *Form) reset() {
	f.Fields = Fields{}
	f.Errors = map[string]string{}
	f.FormError = ""
	f.UpdateTotal("1")
}

func (fs Fields) raw() validation.RawOrder {
	return validation.RawOrder{
		Name:     validation.Text(fs.Name),
		Email:    validation.Text(fs.Email),
		Phone:    validation.Text(fs.Phone),
		Address1: validation.Text(fs.Address1),
		Address2: validation.Text(fs.Address2),
		City:     validation.Text(fs.City),
		State:    validation.Text(fs.State),
		Country:  validation.Text(fs.Country),
		Pin:      validation.Text(fs.Pin),
		Qty:      validation.Quantity(fs.Qty),
	}
}

func nonEmpty(m map[string]string) validation.Errors {
	out := validation.Errors{}
	for k, v := range m {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
