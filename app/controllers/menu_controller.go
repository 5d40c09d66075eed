package controllers

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cart"
	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
	"github.com/ManuelReschke/BaanBox/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/BaanBox/internal/pkg/statistics"
	"github.com/ManuelReschke/BaanBox/internal/pkg/usercontext"
	"github.com/ManuelReschke/BaanBox/internal/pkg/viewmodel"
)

// AddItemInput is the posted customization form of a dish.
type AddItemInput struct {
	Quantity        int    `form:"quantity"`
	SpiceLevel      string `form:"spice_level"`
	NoCoriander     bool   `form:"no_coriander"`
	ExtraProtein    bool   `form:"extra_protein"`
	ExtraVegetables bool   `form:"extra_vegetables"`
	Note            string `form:"note" validate:"max=200"`
}

var validate = validator.New()

var spiceLabels = []viewmodel.Option{
	{Value: cart.SpiceMild, Label: "Mild"},
	{Value: cart.SpiceMedium, Label: "Medium"},
	{Value: cart.SpiceHot, Label: "Hot"},
	{Value: cart.SpiceThaiHot, Label: "Thai hot"},
}

func spiceOptions(selected string) []viewmodel.Option {
	out := make([]viewmodel.Option, len(spiceLabels))
	for i, o := range spiceLabels {
		o.Selected = o.Value == selected
		out[i] = o
	}
	return out
}

func (sc *StoreController) HandleHome(c *fiber.Ctx) error {
	data := viewmodel.Home{
		Stats: statistics.GetStatisticsData(sc.repos.Order),
	}

	plans, err := sc.repos.Plan.GetActive()
	if err != nil {
		return serverError("Home", err)
	}
	data.Plans = plans

	items, err := sc.repos.Menu.List(c.UserContext(), "")
	if err != nil {
		return serverError("Home", err)
	}
	popular := append([]models.MenuItem(nil), items...)
	sort.SliceStable(popular, func(i, j int) bool { return popular[i].Popularity > popular[j].Popularity })
	if len(popular) > 4 {
		popular = popular[:4]
	}
	data.Popular = popular

	return render(c, sc.repos, "home", "", data)
}

func (sc *StoreController) HandleMenu(c *fiber.Ctx) error {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))

	categories, err := sc.repos.Menu.Categories(c.UserContext())
	if err != nil {
		return serverError("Menu", err)
	}
	items, err := sc.repos.Menu.List(c.UserContext(), category)
	if err != nil {
		return serverError("Menu", err)
	}

	return render(c, sc.repos, "menu", " | Menu", viewmodel.Menu{
		Category:   category,
		Categories: categories,
		Items:      items,
	})
}

// loadMenuItem maps a missing or unavailable dish to 404.
func (sc *StoreController) loadMenuItem(c *fiber.Ctx) (*models.MenuItem, error) {
	id, ok := paramUint(c, "id")
	if !ok {
		return nil, fiber.ErrNotFound
	}
	item, err := sc.repos.Menu.GetByID(c.UserContext(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.ErrNotFound
	}
	if err != nil {
		return nil, serverError("Menu", err)
	}
	if !item.IsAvailable {
		return nil, fiber.ErrNotFound
	}
	return item, nil
}

// HandleMenuItem renders the customization form of a dish.
func (sc *StoreController) HandleMenuItem(c *fiber.Ctx) error {
	item, err := sc.loadMenuItem(c)
	if err != nil {
		return err
	}

	if err := counter.AddMenuView(c.UserContext(), item.ID); err != nil {
		log.Debugf("[Menu] count view of %d: %v", item.ID, err)
	}

	spice := cart.NormalizeSpiceLevel(item.DefaultSpiceLevel)
	noCoriander := false
	if us := sc.userSettings(usercontext.GetUserID(c)); us != nil {
		spice = cart.NormalizeSpiceLevel(us.DefaultSpiceLevel)
		noCoriander = us.NoCoriander
	}

	return render(c, sc.repos, "menu_item", " | "+item.Name, viewmodel.MenuDetail{
		Item:        *item,
		SpiceLevels: spiceOptions(spice),
		NoCoriander: noCoriander,
		MaxQuantity: cart.MaxQuantity,
		Pricing:     sc.pricing(),
	})
}

// HandleMenuItemAdd appends the customized dish to the cart. Lines are never
// merged, adding the same dish twice gives two lines.
func (sc *StoreController) HandleMenuItemAdd(c *fiber.Ctx) error {
	item, err := sc.loadMenuItem(c)
	if err != nil {
		return err
	}

	var in AddItemInput
	if err := c.BodyParser(&in); err != nil {
		return redirectWithError(c, c.Path(), "We could not read your selection.")
	}
	in.Note = strings.TrimSpace(in.Note)
	if err := validate.Struct(in); err != nil {
		return redirectWithError(c, c.Path(), "Your note must be 200 characters or fewer.")
	}

	sid, err := sc.sessionID(c)
	if err != nil {
		return serverError("Cart", err)
	}

	line := cart.Line{
		MenuID:      item.ID,
		DisplayName: item.Name,
		Quantity:    in.Quantity,
		UnitPrice:   item.Price,
		Customizations: cart.Customizations{
			ExtraProtein:    in.ExtraProtein,
			ExtraVegetables: in.ExtraVegetables,
			SpiceLevel:      in.SpiceLevel,
			NoCoriander:     in.NoCoriander,
		},
		Note: in.Note,
	}
	if _, err := sc.carts.AddItem(c.UserContext(), sid, line); err != nil {
		return serverError("Cart", err)
	}

	return redirectWithSuccess(c, constants.RouteCart, item.Name+" was added to your cart.")
}
