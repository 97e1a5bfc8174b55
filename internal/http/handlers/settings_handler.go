package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lavka/internal/cart"
	applog "lavka/internal/log"
	"lavka/internal/store"
)

// SettingsHandler lets the shopper inspect and replace the stored API
// key. Keys issued by the service are UUIDs, so anything else is
// rejected before it gets persisted; a blank submit resets to the
// built-in default on the next request.
type SettingsHandler struct {
	Keys *store.Store
	Cart *cart.Store
}

func (h *SettingsHandler) View(c *fiber.Ctx) error {
	key, err := h.Keys.APIKey()
	if err != nil {
		applog.Error(c, "settings.load", err, nil)
	}
	return render(c, h.Cart, "settings", fiber.Map{"APIKey": key})
}

func (h *SettingsHandler) Save(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.FormValue("api_key"))
	if key != "" {
		if _, err := uuid.Parse(key); err != nil {
			return render(c, h.Cart, "settings", fiber.Map{
				"APIKey": key,
				"Error":  "The API key must be a UUID.",
			})
		}
	}
	if err := h.Keys.SetAPIKey(key); err != nil {
		applog.Error(c, "settings.save", err, nil)
		return render(c, h.Cart, "settings", fiber.Map{
			"APIKey": key,
			"Error":  "Could not save the key.",
		})
	}
	applog.Info(c, "settings.save", map[string]any{"cleared": key == ""})
	return c.Redirect("/settings")
}
