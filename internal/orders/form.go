package orders

import (
	"fmt"
	"strings"
	"time"

	"lavka/internal/api"
)

// WireDateFormat is the one date representation sent to the service, on
// create and update alike. The calendar input produces the same layout;
// the legacy dotted form is accepted on the way in and converted.
const WireDateFormat = "2006-01-02"

const dottedDateFormat = "02.01.2006"

// Form is the checkout form as the UI collects it.
type Form struct {
	FullName         string
	Email            string
	Phone            string
	DeliveryAddress  string
	DeliveryDate     string
	DeliveryInterval string
	Comment          string
	Subscribe        bool
}

// ValidationError names exactly which required fields were missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// ParseDate reads a delivery date in either accepted input layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{WireDateFormat, dottedDateFormat} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToWireDate normalizes an input date to the wire layout.
func ToWireDate(s string) (string, error) {
	t, ok := ParseDate(s)
	if !ok {
		return "", fmt.Errorf("unrecognized delivery date %q", s)
	}
	return t.Format(WireDateFormat), nil
}

func (f Form) trimmed() Form {
	return Form{
		FullName:         strings.TrimSpace(f.FullName),
		Email:            strings.TrimSpace(f.Email),
		Phone:            strings.TrimSpace(f.Phone),
		DeliveryAddress:  strings.TrimSpace(f.DeliveryAddress),
		DeliveryDate:     strings.TrimSpace(f.DeliveryDate),
		DeliveryInterval: strings.TrimSpace(f.DeliveryInterval),
		Comment:          strings.TrimSpace(f.Comment),
		Subscribe:        f.Subscribe,
	}
}

func (f Form) missing() []string {
	var m []string
	check := func(name, v string) {
		if v == "" {
			m = append(m, name)
		}
	}
	check("full_name", f.FullName)
	check("email", f.Email)
	check("phone", f.Phone)
	check("delivery_address", f.DeliveryAddress)
	check("delivery_date", f.DeliveryDate)
	check("delivery_interval", f.DeliveryInterval)
	return m
}

func (f Form) payload() api.OrderPayload {
	sub := 0
	if f.Subscribe {
		sub = 1
	}
	return api.OrderPayload{
		FullName:         f.FullName,
		Email:            f.Email,
		Subscribe:        sub,
		Phone:            f.Phone,
		DeliveryAddress:  f.DeliveryAddress,
		DeliveryDate:     f.DeliveryDate,
		DeliveryInterval: f.DeliveryInterval,
		Comment:          f.Comment,
	}
}

// BuildCreatePayload validates the form against a snapshot of the cart
// and assembles the create body. The cart list goes out flat, repeats
// and all, since repeats are how the service encodes quantity.
func BuildCreatePayload(f Form, cartIDs []int64) (api.OrderPayload, error) {
	f = f.trimmed()

	missing := f.missing()
	if len(cartIDs) == 0 {
		missing = append(missing, "cart")
	}
	if len(missing) > 0 {
		return api.OrderPayload{}, &ValidationError{Missing: missing}
	}

	wire, err := ToWireDate(f.DeliveryDate)
	if err != nil {
		return api.OrderPayload{}, err
	}
	f.DeliveryDate = wire

	p := f.payload()
	p.GoodIDs = append([]int64(nil), cartIDs...)
	return p, nil
}

// BuildUpdatePayload assembles the full-replace body for editing an
// order. The line items are not editable, so no good_ids go out.
func BuildUpdatePayload(f Form) (api.OrderPayload, error) {
	f = f.trimmed()

	if missing := f.missing(); len(missing) > 0 {
		return api.OrderPayload{}, &ValidationError{Missing: missing}
	}

	wire, err := ToWireDate(f.DeliveryDate)
	if err != nil {
		return api.OrderPayload{}, err
	}
	f.DeliveryDate = wire

	return f.payload(), nil
}
