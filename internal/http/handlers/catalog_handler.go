package handlers

import (
	"strconv"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"

	"lavka/internal/api"
	"lavka/internal/cart"
	"lavka/internal/catalog"
	applog "lavka/internal/log"
)

// CatalogHandler owns the displayed catalog: the paginator plus the
// accumulated items it has produced since the last reset.
type CatalogHandler struct {
	Cart *cart.Store

	mu      sync.Mutex
	pag     *catalog.Paginator
	display []api.Good
	cats    []string
}

func NewCatalogHandler(pag *catalog.Paginator, carts *cart.Store) *CatalogHandler {
	return &CatalogHandler{Cart: carts, pag: pag}
}

// queryFromRequest reads the filter form off the URL.
func queryFromRequest(c *fiber.Ctx) catalog.Query {
	q := catalog.Query{
		Search: strings.TrimSpace(c.Query("q")),
		Sort:   strings.TrimSpace(c.Query("sort")),
	}
	for _, cat := range c.Context().QueryArgs().PeekMulti("category") {
		if s := strings.TrimSpace(string(cat)); s != "" {
			q.Categories = append(q.Categories, s)
		}
	}
	if v, err := strconv.ParseFloat(c.Query("price_from"), 64); err == nil {
		q.PriceFrom = &v
	}
	if v, err := strconv.ParseFloat(c.Query("price_to"), 64); err == nil {
		q.PriceTo = &v
	}
	q.DiscountOnly = c.Query("discount_only") != ""
	return q
}

// Index renders the catalog. Any visit with changed search/sort/filters
// resets pagination and reloads from page one; a plain revisit shows the
// accumulated display as is.
func (h *CatalogHandler) Index(c *fiber.Ctx) error {
	q := queryFromRequest(c)

	h.mu.Lock()
	defer h.mu.Unlock()

	if !sameQuery(q, h.pag.Query()) || len(h.display) == 0 {
		h.pag.Reset(q)
		h.display = nil
		pg, err := h.pag.LoadNext(c.Context())
		if err != nil {
			// Listing failures fail safe: empty catalog, not a 500.
			applog.Error(c, "catalog.load", err, nil)
			h.display = nil
			return h.renderPage(c, true)
		}
		h.display = pg.Items
		h.cats = catalog.Categories(pg.Items)
	}
	return h.renderPage(c, false)
}

// More loads the next page and appends it to the display.
func (h *CatalogHandler) More(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pag.HasMore() {
		pg, err := h.pag.LoadNext(c.Context())
		if err != nil {
			applog.Error(c, "catalog.more", err, nil)
			return h.renderPage(c, true)
		}
		h.display = append(h.display, pg.Items...)
	}
	return h.renderPage(c, false)
}

func (h *CatalogHandler) renderPage(c *fiber.Ctx, failed bool) error {
	q := h.pag.Query()
	inCart := map[int64]bool{}
	for _, id := range h.Cart.IDs() {
		inCart[id] = true
	}
	return render(c, h.Cart, "catalog", fiber.Map{
		"Items":      h.display,
		"Categories": h.cats,
		"InCart":     inCart,
		"HasMore":    h.pag.HasMore(),
		"Query":      q,
		"LoadFailed": failed,
	})
}

func sameQuery(a, b catalog.Query) bool {
	if a.Search != b.Search || a.Sort != b.Sort || a.DiscountOnly != b.DiscountOnly {
		return false
	}
	if !samePtr(a.PriceFrom, b.PriceFrom) || !samePtr(a.PriceTo, b.PriceTo) {
		return false
	}
	if len(a.Categories) != len(b.Categories) {
		return false
	}
	for i := range a.Categories {
		if a.Categories[i] != b.Categories[i] {
			return false
		}
	}
	return true
}

func samePtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// AddToCart handles the catalog card button.
func (h *CatalogHandler) AddToCart(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.FormValue("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("bad good id")
	}
	if err := h.Cart.Add(id); err != nil {
		applog.Error(c, "cart.add", err, map[string]any{"good_id": id})
		return c.Status(fiber.StatusInternalServerError).SendString("could not update the cart")
	}
	applog.Info(c, "cart.add", map[string]any{"good_id": id})
	return c.Redirect("/")
}
