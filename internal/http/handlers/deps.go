package handlers

import (
	"lavka/internal/api"
	"lavka/internal/cart"
	"lavka/internal/catalog"
	"lavka/internal/config"
	"lavka/internal/orders"
	"lavka/internal/store"
)

type Deps struct {
	CatalogHandler  *CatalogHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	SettingsHandler *SettingsHandler
}

func NewDeps(client *api.Client, carts *cart.Store, kv *store.Store, cfg config.Config) *Deps {
	pag := catalog.NewPaginator(client, cfg.PageSize)
	rec := orders.NewReconciler(client)

	return &Deps{
		CatalogHandler:  NewCatalogHandler(pag, carts),
		CartHandler:     &CartHandler{Cart: carts, Rec: rec},
		OrderHandler:    &OrderHandler{API: client, Cart: carts, Rec: rec},
		SettingsHandler: &SettingsHandler{Keys: kv, Cart: carts},
	}
}
