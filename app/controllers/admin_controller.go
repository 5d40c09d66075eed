package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database"
	"github.com/ManuelReschke/BaanBox/internal/pkg/imageurl"
	"github.com/ManuelReschke/BaanBox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/BaanBox/internal/pkg/viewmodel"
)

var menuCategories = []string{
	models.MenuCategoryCurry,
	models.MenuCategoryNoodles,
	models.MenuCategoryRice,
	models.MenuCategorySalad,
	models.MenuCategorySoup,
	models.MenuCategoryStarter,
	models.MenuCategoryDessert,
	models.MenuCategoryBeverage,
}

// AdminController handles the admin area: dashboard, store settings and menu.
type AdminController struct {
	repos *repository.Repositories
	now   func() time.Time
}

func NewAdminController(repos *repository.Repositories) *AdminController {
	return &AdminController{repos: repos, now: time.Now}
}

func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	var data viewmodel.AdminDashboard
	var err error

	if data.Users, err = ac.repos.User.Count(); err != nil {
		return serverError("Admin", err)
	}
	if data.MenuItems, err = ac.repos.Menu.Count(); err != nil {
		return serverError("Admin", err)
	}
	for status, dst := range map[string]*int64{
		models.SUBSCRIPTION_ACTIVE:    &data.Active,
		models.SUBSCRIPTION_PAUSED:    &data.Paused,
		models.SUBSCRIPTION_CANCELLED: &data.Cancelled,
	} {
		if *dst, err = ac.repos.Order.CountByStatus(status); err != nil {
			return serverError("Admin", err)
		}
	}
	if data.Delivered, err = ac.repos.Order.CountMeals(models.MEAL_DELIVERED); err != nil {
		return serverError("Admin", err)
	}
	if data.RecentUsers, err = ac.repos.User.List(0, 5); err != nil {
		return serverError("Admin", err)
	}

	// last seven days including today
	end := ac.now()
	y, m, d := end.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, end.Location()).AddDate(0, 0, -6)
	if data.DailyStats, err = ac.repos.Order.GetDailyStats(start, end); err != nil {
		log.Warnf("[Admin] daily stats: %v", err)
	}

	return render(c, ac.repos, "admin_dashboard", " | Admin", data)
}

func (ac *AdminController) HandleSettings(c *fiber.Ctx) error {
	return render(c, ac.repos, "admin_settings", " | Admin settings", viewmodel.AdminSettings{Settings: models.GetAppSettings()})
}

func (ac *AdminController) HandleSettingsUpdate(c *fiber.Ctx) error {
	back := constants.RouteAdmin + "/settings"
	s := models.GetAppSettings()

	s.SiteTitle = strings.TrimSpace(c.FormValue("site_title"))
	s.SiteDescription = strings.TrimSpace(c.FormValue("site_description"))
	s.OrderingEnabled = formBool(c, "ordering_enabled")

	for key, dst := range map[string]*decimal.Decimal{
		"extra_protein_surcharge":    &s.ExtraProteinSurcharge,
		"extra_vegetables_surcharge": &s.ExtraVegetablesSurcharge,
		"free_delivery_threshold":    &s.FreeDeliveryThreshold,
		"flat_delivery_fee":          &s.FlatDeliveryFee,
		"tax_rate":                   &s.TaxRate,
	} {
		d, err := decimal.NewFromString(strings.TrimSpace(c.FormValue(key)))
		if err != nil {
			return redirectWithError(c, back, "Please enter a number for "+strings.ReplaceAll(key, "_", " ")+".")
		}
		*dst = d
	}

	if err := models.SaveSettings(database.GetDB(), s); err != nil {
		return redirectWithError(c, back, "Settings not saved: "+err.Error())
	}
	log.Infof("[Admin] settings updated")
	return redirectWithSuccess(c, back, "Settings saved. New prices apply right away.")
}

func (ac *AdminController) HandleMenu(c *fiber.Ctx) error {
	items, err := ac.repos.Menu.ListAll(c.UserContext())
	if err != nil {
		return serverError("Admin", err)
	}
	return render(c, ac.repos, "admin_menu", " | Admin menu", viewmodel.AdminMenu{Items: items})
}

func (ac *AdminController) HandleMenuCreate(c *fiber.Ctx) error {
	item := models.MenuItem{
		Category:          models.MenuCategoryCurry,
		DefaultSpiceLevel: models.SPICE_MEDIUM,
		IsAvailable:       true,
	}
	return ac.renderMenuForm(c, item, nil, true, fiber.StatusOK)
}

func (ac *AdminController) HandleMenuStore(c *fiber.Ctx) error {
	var item models.MenuItem
	if errs := bindMenuItem(c, &item); len(errs) > 0 {
		return ac.renderMenuForm(c, item, errs, true, fiber.StatusUnprocessableEntity)
	}
	if err := ac.repos.Menu.Create(&item); err != nil {
		return serverError("Admin", err)
	}
	jobqueue.RefreshStatistics()
	return redirectWithSuccess(c, constants.RouteAdminMenu, item.Name+" is on the menu.")
}

func (ac *AdminController) loadItem(c *fiber.Ctx) (*models.MenuItem, error) {
	id, ok := paramUint(c, "id")
	if !ok {
		return nil, fiber.ErrNotFound
	}
	item, err := ac.repos.Menu.GetByID(c.UserContext(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.ErrNotFound
	}
	if err != nil {
		return nil, serverError("Admin", err)
	}
	return item, nil
}

func (ac *AdminController) HandleMenuEdit(c *fiber.Ctx) error {
	item, err := ac.loadItem(c)
	if err != nil {
		return err
	}
	return ac.renderMenuForm(c, *item, nil, false, fiber.StatusOK)
}

func (ac *AdminController) HandleMenuUpdate(c *fiber.Ctx) error {
	item, err := ac.loadItem(c)
	if err != nil {
		return err
	}
	if errs := bindMenuItem(c, item); len(errs) > 0 {
		return ac.renderMenuForm(c, *item, errs, false, fiber.StatusUnprocessableEntity)
	}
	if err := ac.repos.Menu.Update(item); err != nil {
		return serverError("Admin", err)
	}
	return redirectWithSuccess(c, constants.RouteAdminMenu, item.Name+" was updated.")
}

// HandleMenuDelete soft deletes the dish. Past orders keep showing its name.
func (ac *AdminController) HandleMenuDelete(c *fiber.Ctx) error {
	item, err := ac.loadItem(c)
	if err != nil {
		return err
	}
	if err := ac.repos.Menu.Delete(item.ID); err != nil {
		return serverError("Admin", err)
	}
	return redirectWithSuccess(c, constants.RouteAdminMenu, item.Name+" was removed from the menu.")
}

func (ac *AdminController) renderMenuForm(c *fiber.Ctx, item models.MenuItem, errs []string, isNew bool, status int) error {
	title := " | Edit " + item.Name
	if isNew {
		title = " | New dish"
	}
	return render(c, ac.repos, "admin_menu_form", title, viewmodel.AdminMenuForm{
		Item:       item,
		Categories: menuCategories,
		Errors:     errs,
		IsNew:      isNew,
	}, status)
}

// bindMenuItem copies the posted form onto item and validates the result.
func bindMenuItem(c *fiber.Ctx, item *models.MenuItem) []string {
	var errs []string

	item.Name = strings.TrimSpace(c.FormValue("name"))
	item.ThaiName = strings.TrimSpace(c.FormValue("thai_name"))
	item.Description = strings.TrimSpace(c.FormValue("description"))
	item.Category = strings.ToLower(strings.TrimSpace(c.FormValue("category")))
	if img, err := imageurl.Validate(c.FormValue("image_url")); err != nil {
		item.ImageURL = strings.TrimSpace(c.FormValue("image_url"))
		errs = append(errs, err.Error())
	} else {
		item.ImageURL = img
	}
	item.IsVegetarian = formBool(c, "is_vegetarian")
	item.IsAvailable = formBool(c, "is_available")

	settings := models.UserSettings{DefaultSpiceLevel: models.SPICE_MEDIUM}
	if !settings.SetSpiceLevel(c.FormValue("default_spice_level")) {
		errs = append(errs, "Please choose a valid spice level.")
	}
	item.DefaultSpiceLevel = settings.DefaultSpiceLevel

	price, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("price")))
	if err != nil {
		errs = append(errs, "Price must be a number.")
	} else {
		item.Price = price.Round(2)
	}

	for _, f := range []struct {
		key string
		dst *int
	}{
		{"calories", &item.Calories},
		{"protein_grams", &item.ProteinGrams},
		{"carbs_grams", &item.CarbsGrams},
		{"fat_grams", &item.FatGrams},
	} {
		key, dst := f.key, f.dst
		raw := strings.TrimSpace(c.FormValue(key))
		if raw == "" {
			*dst = 0
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errs = append(errs, strings.ReplaceAll(key, "_", " ")+" must be a positive whole number.")
			continue
		}
		*dst = n
	}

	if len(errs) > 0 {
		return errs
	}
	if err := item.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, "Please check "+strings.ToLower(fe.Field())+".")
			}
			return errs
		}
		return []string{err.Error()}
	}
	return nil
}
