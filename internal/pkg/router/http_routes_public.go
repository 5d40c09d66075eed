package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ManuelReschke/BaanBox/app/controllers"
	"github.com/ManuelReschke/BaanBox/internal/pkg/middleware"
	"github.com/ManuelReschke/BaanBox/internal/pkg/oauth"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", knownProvider, gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", knownProvider, controllers.HandleOAuthCallback)
}

func knownProvider(c *fiber.Ctx) error {
	if !oauth.IsProvider(c.Params("provider")) {
		return fiber.ErrNotFound
	}
	return c.Next()
}
