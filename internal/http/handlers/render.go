package handlers

import (
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"

	"lavka/internal/cart"
	"lavka/internal/orders"
)

// render injects the data every page needs: the cart badge count.
func render(c *fiber.Ctx, carts *cart.Store, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["CartCount"]; !ok {
		data["CartCount"] = carts.Count()
	}
	return c.Render(tmpl, data)
}

// FormatPrice renders a money amount the way the shop displays it:
// rounded to whole rubles. Registered as the "price" template func.
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0 ₽"
	}
	return fmt.Sprintf("%d ₽", int64(math.Round(v)))
}

// FormatDate renders a wire date for display; anything unparseable
// shows as a dash. Registered as the "date" template func.
func FormatDate(s string) string {
	if t, ok := orders.ParseDate(s); ok {
		return t.Format("02.01.2006")
	}
	// Order timestamps come with time attached.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("02.01.2006")
	}
	return "—"
}
