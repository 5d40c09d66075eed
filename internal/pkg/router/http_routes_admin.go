package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/BaanBox/app/controllers"
	"github.com/ManuelReschke/BaanBox/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	// csrf runs from the group registered before; "" matches every path
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", controllers.HandleAdminDashboard)
	adminGroup.Get("/settings", controllers.HandleAdminSettings)
	adminGroup.Post("/settings", controllers.HandleAdminSettingsUpdate)

	// Menu management
	adminGroup.Get("/menu", controllers.HandleAdminMenu)
	adminGroup.Get("/menu/new", controllers.HandleAdminMenuCreate)
	adminGroup.Post("/menu", controllers.HandleAdminMenuStore)
	adminGroup.Get("/menu/:id/edit", controllers.HandleAdminMenuEdit)
	adminGroup.Post("/menu/:id", controllers.HandleAdminMenuUpdate)
	adminGroup.Post("/menu/:id/delete", controllers.HandleAdminMenuDelete)
}
