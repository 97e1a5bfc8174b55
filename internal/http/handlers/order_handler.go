package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lavka/internal/api"
	"lavka/internal/cart"
	applog "lavka/internal/log"
	"lavka/internal/orders"
	"lavka/internal/pricing"
)

type OrderHandler struct {
	API  *api.Client
	Cart *cart.Store
	Rec  *orders.Reconciler
}

func formFromRequest(c *fiber.Ctx) orders.Form {
	return orders.Form{
		FullName:         c.FormValue("full_name"),
		Email:            c.FormValue("email"),
		Phone:            c.FormValue("phone"),
		DeliveryAddress:  c.FormValue("delivery_address"),
		DeliveryDate:     c.FormValue("delivery_date"),
		DeliveryInterval: c.FormValue("delivery_interval"),
		Comment:          c.FormValue("comment"),
		Subscribe:        c.FormValue("subscribe") != "",
	}
}

// checkoutData resolves the cart summary the checkout page shows next
// to the form.
func (h *OrderHandler) checkoutData(c *fiber.Ctx) fiber.Map {
	ids := h.Cart.IDs()
	goods, failed := h.Rec.FetchGoods(c.Context(), ids)

	goodsSum := 0.0
	for _, g := range goods {
		goodsSum += g.Price
	}

	return fiber.Map{
		"Goods":       goods,
		"FailedCount": len(failed),
		"GoodsSum":    goodsSum,
		"Empty":       len(ids) == 0,
	}
}

// Checkout renders the order form with the cart summary.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	return render(c, h.Cart, "checkout", h.checkoutData(c))
}

// Place creates the order from the form plus the cart snapshot. The
// cart is cleared only after the service accepted the order.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	form := formFromRequest(c)
	ids := h.Cart.IDs()

	payload, err := orders.BuildCreatePayload(form, ids)
	if err != nil {
		data := h.checkoutData(c)
		data["Form"] = form
		var ve *orders.ValidationError
		if errors.As(err, &ve) {
			data["Missing"] = ve.Missing
			data["Error"] = "Please fill in: " + strings.Join(ve.Missing, ", ")
		} else {
			data["Error"] = err.Error()
		}
		return render(c, h.Cart, "checkout", data)
	}

	o, err := h.API.CreateOrder(c.Context(), payload)
	if err != nil {
		applog.Error(c, "order.create", err, nil)
		data := h.checkoutData(c)
		data["Form"] = form
		data["Error"] = err.Error()
		return render(c, h.Cart, "checkout", data)
	}

	if err := h.Cart.Clear(); err != nil {
		applog.Error(c, "cart.clear", err, nil)
	}
	applog.Info(c, "order.create", map[string]any{"order_id": o.ID})
	return c.Redirect("/orders")
}

// History lists the orders for the current key. Each row's total and
// count are reconciled: authoritative when the record carries one,
// computed from resolved goods otherwise. A listing failure fails safe
// with an empty table.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	list, err := h.API.Orders(c.Context())
	if err != nil {
		applog.Error(c, "orders.list", err, nil)
		return render(c, h.Cart, "orders", fiber.Map{
			"Rows":  []orderRow{},
			"Error": "Could not load orders.",
		})
	}

	rows := make([]orderRow, 0, len(list))
	for _, o := range list {
		rec := h.Rec.Reconcile(c.Context(), o)
		rows = append(rows, orderRow{Order: o, Rec: rec})
	}
	return render(c, h.Cart, "orders", fiber.Map{"Rows": rows})
}

type orderRow struct {
	Order api.Order
	Rec   orders.Reconciliation
}

func (h *OrderHandler) orderID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// View renders one order with its resolved line items.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("bad order id")
	}
	o, err := h.API.OrderByID(c.Context(), id)
	if err != nil {
		applog.Error(c, "order.view", err, map[string]any{"order_id": id})
		return render(c, h.Cart, "notfound", fiber.Map{"Message": err.Error()})
	}

	rec := h.Rec.Reconcile(c.Context(), o)
	d, hasDate := orders.ParseDate(o.DeliveryDate)
	return render(c, h.Cart, "order_view", fiber.Map{
		"Order":       o,
		"Rec":         rec,
		"DeliverySum": pricing.DeliveryCost(d, hasDate, o.DeliveryInterval),
	})
}

// EditForm renders the editable fields of one order.
func (h *OrderHandler) EditForm(c *fiber.Ctx) error {
	id, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("bad order id")
	}
	o, err := h.API.OrderByID(c.Context(), id)
	if err != nil {
		applog.Error(c, "order.edit.load", err, map[string]any{"order_id": id})
		return render(c, h.Cart, "notfound", fiber.Map{"Message": err.Error()})
	}
	return render(c, h.Cart, "order_edit", fiber.Map{"Order": o})
}

// Update replaces the editable fields wholesale.
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("bad order id")
	}
	form := formFromRequest(c)

	payload, err := orders.BuildUpdatePayload(form)
	if err != nil {
		return render(c, h.Cart, "order_edit", fiber.Map{
			"Order": api.Order{ID: id},
			"Form":  form,
			"Error": err.Error(),
		})
	}

	if _, err := h.API.UpdateOrder(c.Context(), id, payload); err != nil {
		applog.Error(c, "order.update", err, map[string]any{"order_id": id})
		return render(c, h.Cart, "order_edit", fiber.Map{
			"Order": api.Order{ID: id},
			"Form":  form,
			"Error": err.Error(),
		})
	}
	applog.Info(c, "order.update", map[string]any{"order_id": id})
	return c.Redirect("/orders")
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := h.orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("bad order id")
	}
	if err := h.API.DeleteOrder(c.Context(), id); err != nil {
		applog.Error(c, "order.delete", err, map[string]any{"order_id": id})
		return render(c, h.Cart, "orders", fiber.Map{"Rows": []orderRow{}, "Error": err.Error()})
	}
	applog.Info(c, "order.delete", map[string]any{"order_id": id})
	return c.Redirect("/orders")
}
