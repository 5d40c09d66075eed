package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/BaanBox/internal/pkg/cart"
	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/viewmodel"
)

// Cart form actions
const (
	CartActionUpdateQuantity = "update_quantity"
	CartActionRemoveItem     = "remove_item"
	CartActionClear          = "clear_cart"
)

func (sc *StoreController) cartView(c *fiber.Ctx) (viewmodel.Cart, error) {
	sid, err := sc.sessionID(c)
	if err != nil {
		return viewmodel.Cart{}, err
	}
	lines, err := sc.carts.List(c.UserContext(), sid)
	if err != nil {
		return viewmodel.Cart{}, err
	}

	engine := sc.engine()
	priced := engine.Price(lines)

	out := viewmodel.Cart{
		Lines:   make([]viewmodel.CartLine, len(lines)),
		Pricing: priced,
		Config:  engine.Config(),
	}
	for i, l := range lines {
		out.Lines[i] = viewmodel.CartLine{Line: l, Priced: priced.Lines[i]}
	}
	return out, nil
}

func (sc *StoreController) HandleCart(c *fiber.Ctx) error {
	data, err := sc.cartView(c)
	if err != nil {
		return serverError("Cart", err)
	}
	return render(c, sc.repos, "cart", " | Cart", data)
}

// HandleCartPost applies one cart action and always redirects back to the
// cart. An index that does not exist leaves the cart untouched.
func (sc *StoreController) HandleCartPost(c *fiber.Ctx) error {
	sid, err := sc.sessionID(c)
	if err != nil {
		return serverError("Cart", err)
	}
	ctx := c.UserContext()

	var outcome cart.Outcome
	message := ""
	switch c.FormValue("action") {
	case CartActionUpdateQuantity:
		outcome, err = sc.carts.UpdateQuantity(ctx, sid, formInt(c, "item_index"), formInt(c, "quantity"))
		message = "Your cart was updated."
	case CartActionRemoveItem:
		outcome, err = sc.carts.RemoveItem(ctx, sid, formInt(c, "item_index"))
		message = "The item was removed from your cart."
	case CartActionClear:
		outcome, err = sc.carts.Clear(ctx, sid)
		message = "Your cart is empty now."
	default:
		outcome = cart.Ignored
	}
	if err != nil {
		return serverError("Cart", err)
	}

	if outcome == cart.Ignored {
		return c.Redirect(constants.RouteCart, fiber.StatusSeeOther)
	}
	return redirectWithSuccess(c, constants.RouteCart, message)
}

// CartResponse is the JSON shape of GET /api/v1/cart.
type CartResponse struct {
	Lines   []cart.Line       `json:"lines"`
	Pricing pricing.Breakdown `json:"pricing"`
}

func (sc *StoreController) HandleCartAPI(c *fiber.Ctx) error {
	data, err := sc.cartView(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_error",
			"message": "cart could not be loaded",
		})
	}
	lines := make([]cart.Line, len(data.Lines))
	for i, l := range data.Lines {
		lines[i] = l.Line
	}
	return c.JSON(CartResponse{Lines: lines, Pricing: data.Pricing})
}

func (sc *StoreController) HandleMenuAPI(c *fiber.Ctx) error {
	items, err := sc.repos.Menu.List(c.UserContext(), strings.ToLower(strings.TrimSpace(c.Query("category"))))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_error",
			"message": "menu could not be loaded",
		})
	}
	return c.JSON(fiber.Map{"items": items})
}
