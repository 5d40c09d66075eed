package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to the storefront controller so the API and the pages share one cart
	"github.com/ManuelReschke/BaanBox/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// GetMenu lists the available dishes. The controller reads ?category itself.
func (s *APIServer) GetMenu(c *fiber.Ctx, params GetMenuParams) error {
	return controllers.HandleMenuAPI(c)
}

// GetCart returns the priced cart of the caller's session.
func (s *APIServer) GetCart(c *fiber.Ctx) error {
	return controllers.HandleCartAPI(c)
}
