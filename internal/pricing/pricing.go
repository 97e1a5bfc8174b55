// Package pricing holds the money rules shared by the catalog, the cart
// and the order views: picking the effective unit price of a good and
// computing the delivery cost for a chosen date and time window.
package pricing

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// Delivery pricing, in whole currency units.
const (
	DeliveryBase     = 200.0
	WeekendSurcharge = 300.0
	EveningSurcharge = 200.0
)

// Evening starts at this hour (inclusive).
const eveningHour = 18

func valid(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}

// Effective picks the price to charge for a good given its actual and
// discount price fields, either of which may be missing or garbage.
// The discount wins only when it is positive and beats the actual price;
// a positive discount with no usable actual price also wins; otherwise
// the actual price is used, and 0 when neither field is usable.
func Effective(actual, discount *float64) float64 {
	ap, dp := valid(actual), valid(discount)
	switch {
	case dp && *discount > 0 && ap && *discount < *actual:
		return *discount
	case dp && *discount > 0 && !ap:
		return *discount
	case ap:
		return *actual
	default:
		return 0
	}
}

var intervalStart = regexp.MustCompile(`^(\d{2}):(\d{2})`)

// IntervalStartHour parses the starting hour out of a delivery window
// such as "18:00-20:00". ok is false when the string does not begin
// with an HH:MM pattern.
func IntervalStartHour(interval string) (hour int, ok bool) {
	m := intervalStart.FindStringSubmatch(interval)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return h, true
}

// DeliveryCost returns the delivery fee for the chosen date and window.
// No date means no delivery has been picked yet, which costs nothing.
// Weekend delivery carries its surcharge regardless of the window;
// otherwise an evening window (start hour >= 18) adds the evening
// surcharge. A window that fails to parse adds nothing.
func DeliveryCost(date time.Time, hasDate bool, interval string) float64 {
	if !hasDate {
		return 0
	}
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return DeliveryBase + WeekendSurcharge
	}
	if h, ok := IntervalStartHour(interval); ok && h >= eveningHour {
		return DeliveryBase + EveningSurcharge
	}
	return DeliveryBase
}
