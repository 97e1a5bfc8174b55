package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lavka/internal/cart"
	applog "lavka/internal/log"
	"lavka/internal/orders"
	"lavka/internal/pricing"
)

type CartHandler struct {
	Cart *cart.Store
	Rec  *orders.Reconciler
}

// View renders the cart: every good resolved by a concurrent batch of
// fetches, with goods that fail to load dropped, plus the running
// totals. Date and interval arrive as query params so the delivery cost
// preview updates on form submit.
func (h *CartHandler) View(c *fiber.Ctx) error {
	ids := h.Cart.IDs()
	date := strings.TrimSpace(c.Query("date"))
	interval := strings.TrimSpace(c.Query("interval"))

	goods, failed := h.Rec.FetchGoods(c.Context(), ids)
	if len(failed) > 0 {
		applog.Security(c, "cart.resolve.partial", map[string]any{"failed_ids": failed})
	}

	goodsSum := 0.0
	for _, g := range goods {
		goodsSum += g.Price
	}

	d, hasDate := orders.ParseDate(date)
	deliverySum := pricing.DeliveryCost(d, hasDate, interval)

	return render(c, h.Cart, "cart", fiber.Map{
		"Goods":       goods,
		"FailedCount": len(failed),
		"Date":        date,
		"Interval":    interval,
		"GoodsSum":    goodsSum,
		"DeliverySum": deliverySum,
		"TotalSum":    goodsSum + deliverySum,
		"Empty":       len(ids) == 0,
	})
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.FormValue("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("bad good id")
	}
	if err := h.Cart.Remove(id); err != nil {
		applog.Error(c, "cart.remove", err, map[string]any{"good_id": id})
		return c.Status(fiber.StatusInternalServerError).SendString("could not update the cart")
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(); err != nil {
		applog.Error(c, "cart.clear", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("could not update the cart")
	}
	return c.Redirect("/cart")
}
