package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"lavka/internal/api"
	"lavka/internal/cart"
	"lavka/internal/config"
	"lavka/internal/http/handlers"
	applog "lavka/internal/log"
	"lavka/internal/store"
)

func main() {
	cfg := config.Load()

	flush, err := applog.Init(cfg.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer flush()

	kv, err := store.Open(cfg.StateDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer kv.Close()

	carts := cart.New(kv)
	client := api.NewClient(cfg.APIHost, cfg.APIPrefix, cfg.DefaultAPIKey, kv)

	// The badge and the cart page read the store directly; this
	// observer keeps an audit trail of every cart change.
	carts.Subscribe(func(e cart.Event) {
		applog.Info(nil, "cart.changed", map[string]any{"count": e.Count})
	})

	engine := html.New("./web/templates", ".html")
	engine.AddFunc("price", handlers.FormatPrice)
	engine.AddFunc("date", handlers.FormatDate)

	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layout",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please slow down.")
		},
	}))

	deps := handlers.NewDeps(client, carts, kv, cfg)

	// Catalog
	app.Get("/", deps.CatalogHandler.Index)
	app.Post("/catalog/more", deps.CatalogHandler.More)
	app.Post("/cart/add", deps.CatalogHandler.AddToCart)

	// Cart
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart/remove", deps.CartHandler.Remove)
	app.Post("/cart/clear", deps.CartHandler.Clear)

	// Orders
	app.Get("/checkout", deps.OrderHandler.Checkout)
	app.Post("/orders", deps.OrderHandler.Place)
	app.Get("/orders", deps.OrderHandler.History)
	app.Get("/order/:id", deps.OrderHandler.View)
	app.Get("/order/:id/edit", deps.OrderHandler.EditForm)
	app.Post("/order/:id", deps.OrderHandler.Update)
	app.Post("/order/:id/delete", deps.OrderHandler.Delete)

	// Settings
	app.Get("/settings", deps.SettingsHandler.View)
	app.Post("/settings", deps.SettingsHandler.Save)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
