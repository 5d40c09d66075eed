package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/BaanBox/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App) {
	// HttpRouter first: it creates the session store, the storefront
	// controller and the UserContext middleware the API relies on.
	setup(app, NewHttpRouter(), NewApiRouter())
}

// InstallRouterWith is InstallRouter on an injected storefront configuration.
func InstallRouterWith(app *fiber.App, cfg controllers.StoreConfig) {
	setup(app, NewHttpRouterWith(cfg), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
