package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"lavka/internal/api"
	"lavka/internal/cart"
	"lavka/internal/config"
	"lavka/internal/http/handlers"
	"lavka/internal/store"
)

// newTestApp wires the full app against a fake goods/orders service.
func newTestApp(t *testing.T, apiHandler http.Handler) (*fiber.App, *cart.Store) {
	t.Helper()

	srv := httptest.NewServer(apiHandler)
	t.Cleanup(srv.Close)

	kv, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })

	carts := cart.New(kv)
	client := api.NewClient(srv.URL, "/api", "test-key", kv)

	engine := html.New("../../../web/templates", ".html")
	engine.AddFunc("price", handlers.FormatPrice)
	engine.AddFunc("date", handlers.FormatDate)

	app := fiber.New(fiber.Config{Views: engine, ViewsLayout: "layout"})
	app.Use(requestid.New())

	deps := handlers.NewDeps(client, carts, kv, config.Config{PageSize: 12})
	app.Get("/", deps.CatalogHandler.Index)
	app.Post("/catalog/more", deps.CatalogHandler.More)
	app.Post("/cart/add", deps.CatalogHandler.AddToCart)
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart/remove", deps.CartHandler.Remove)
	app.Get("/checkout", deps.OrderHandler.Checkout)
	app.Post("/orders", deps.OrderHandler.Place)
	app.Get("/orders", deps.OrderHandler.History)
	app.Get("/settings", deps.SettingsHandler.View)
	app.Post("/settings", deps.SettingsHandler.Save)

	return app, carts
}

func goodsAPI(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/goods", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"items": [
				{"id": 5, "name": "Лампа", "actual_price": 100, "main_category": "home"},
				{"id": 7, "name": "Кружка", "actual_price": 100, "discount_price": 50, "main_category": "kitchen"}
			],
			"total": 30
		}`))
	})
	mux.HandleFunc("/api/goods/5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 5, "name": "Лампа", "actual_price": 100}`))
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"id": 1}`))
			return
		}
		w.Write([]byte(`[]`))
	})
	return mux
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestCatalogPageRendersGoods(t *testing.T) {
	app, _ := newTestApp(t, goodsAPI(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	s := body(t, resp)
	if resp.StatusCode != 200 {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !strings.Contains(s, "Лампа") || !strings.Contains(s, "Кружка") {
		t.Fatalf("goods missing from page")
	}
	// 2 of 30 loaded, so the load-more affordance is present.
	if !strings.Contains(s, "/catalog/more") {
		t.Fatal("load-more missing")
	}
	// Discounted good shows the struck-through original price.
	if !strings.Contains(s, "line-through") {
		t.Fatal("discount styling missing")
	}
}

func TestCatalogFailSafeOnAPIError(t *testing.T) {
	app, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, 500)
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("listing failure must render, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), "Не удалось загрузить каталог") {
		t.Fatal("failure notice missing")
	}
}

func TestAddToCartAndView(t *testing.T) {
	app, carts := newTestApp(t, goodsAPI(t))

	form := url.Values{"id": {"5"}}
	req := httptest.NewRequest("POST", "/cart/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !carts.Contains(5) {
		t.Fatal("good not in cart")
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/cart", nil))
	if err != nil {
		t.Fatal(err)
	}
	s := body(t, resp)
	if !strings.Contains(s, "Лампа") || !strings.Contains(s, "100 ₽") {
		t.Fatalf("cart page wrong:\n%s", s)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	app, carts := newTestApp(t, goodsAPI(t))
	carts.Add(5)

	form := url.Values{"full_name": {"Anna"}}
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	s := body(t, resp)
	if !strings.Contains(s, "email") || !strings.Contains(s, "delivery_address") {
		t.Fatalf("missing fields not reported:\n%s", s)
	}
	if carts.Count() != 1 {
		t.Fatal("cart must survive a failed submit")
	}
}

func TestPlaceOrderClearsCart(t *testing.T) {
	app, carts := newTestApp(t, goodsAPI(t))
	carts.Add(5)

	form := url.Values{
		"full_name":         {"Anna"},
		"email":             {"a@b.c"},
		"phone":             {"+7 900"},
		"delivery_address":  {"Tverskaya 1"},
		"delivery_date":     {"2024-06-03"},
		"delivery_interval": {"08:00-12:00"},
	}
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status %d: %s", resp.StatusCode, body(t, resp))
	}
	if carts.Count() != 0 {
		t.Fatal("cart must be cleared after a successful order")
	}
}

func TestOrdersListFailSafe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"key expired"}`, 403)
	})
	app, _ := newTestApp(t, mux)

	resp, err := app.Test(httptest.NewRequest("GET", "/orders", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("order listing failure must render, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), "Could not load orders") {
		t.Fatal("failure notice missing")
	}
}

func TestSettingsRejectsNonUUIDKey(t *testing.T) {
	app, _ := newTestApp(t, goodsAPI(t))

	form := url.Values{"api_key": {"not-a-uuid"}}
	req := httptest.NewRequest("POST", "/settings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body(t, resp), "UUID") {
		t.Fatal("bad key accepted")
	}

	form = url.Values{"api_key": {"07ad9b1b-9a18-4e25-8eeb-5c6b5f3cb362"}}
	req = httptest.NewRequest("POST", "/settings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("valid key rejected: %d", resp.StatusCode)
	}
}
