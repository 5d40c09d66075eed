package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/BaanBox/app/controllers"
	"github.com/ManuelReschke/BaanBox/internal/pkg/env"
	"github.com/ManuelReschke/BaanBox/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", controllers.HandleHome)

	// Menu and cart, open to guests
	group.Get("/menu", controllers.HandleMenu)
	group.Get("/menu/:id", controllers.HandleMenuItem)
	group.Post("/menu/:id", controllers.HandleMenuItemAdd)
	group.Get("/cart", controllers.HandleCart)
	group.Post("/cart", controllers.HandleCartPost)

	// Plan and meal selection
	group.Get("/subscribe/plans", controllers.HandlePlans)
	group.Post("/subscribe/plans", controllers.HandlePlansSelect)
	group.Get("/subscribe/meals", controllers.HandleMeals)
	group.Post("/subscribe/meals", controllers.HandleMealsSelect)

	// Checkout needs an account
	group.Get("/checkout/start", middleware.RequireAuth, controllers.HandleCheckoutStart)
	group.Get("/checkout", middleware.RequireAuth, controllers.HandleCheckout)
	group.Post("/checkout", middleware.RequireAuth, controllers.HandleCheckoutSubmit)
	group.Post("/checkout/cancel", middleware.RequireAuth, controllers.HandleCheckoutCancel)

	// Orders
	group.Get("/orders", middleware.RequireAuth, controllers.HandleOrders)
	group.Get("/orders/:id", middleware.RequireAuth, controllers.HandleOrderDetail)
	group.Get("/orders/:id/status", middleware.RequireAuth, controllers.HandleOrderStatus)
	group.Post("/orders/:id/pause", middleware.RequireAuth, controllers.HandleOrderPause)
	group.Post("/orders/:id/resume", middleware.RequireAuth, controllers.HandleOrderResume)
	group.Post("/orders/:id/cancel", middleware.RequireAuth, controllers.HandleOrderCancel)
	group.Post("/orders/:id/auto-renew", middleware.RequireAuth, controllers.HandleOrderAutoRenew)
	group.Get("/notifications", middleware.RequireAuth, controllers.HandleNotifications)

	// Accounts
	group.Get("/login", controllers.HandleAuthLogin)
	group.Post("/login", controllers.HandleAuthLogin)
	group.Get("/register", controllers.HandleAuthRegister)
	group.Post("/register", controllers.HandleAuthRegister)
	group.Get("/activate", controllers.HandleAuthActivate)
	group.Get("/user/settings", middleware.RequireAuth, controllers.HandleUserSettings)
	group.Post("/user/settings", middleware.RequireAuth, controllers.HandleUserSettingsPost)

	// Static pages
	group.Get("/page/:slug", controllers.HandlePageDisplay)
}
