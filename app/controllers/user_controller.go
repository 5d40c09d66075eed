package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database"
	"github.com/ManuelReschke/BaanBox/internal/pkg/usercontext"
	"github.com/ManuelReschke/BaanBox/internal/pkg/viewmodel"
)

type UserController struct {
	repos *repository.Repositories
}

func NewUserController(repos *repository.Repositories) *UserController {
	return &UserController{repos: repos}
}

func timeOptions(selected string) []viewmodel.Option {
	opts := append([]viewmodel.Option{{Value: "", Label: "No preference"}}, deliveryTimes...)
	for i := range opts {
		opts[i].Selected = opts[i].Value == selected
	}
	return opts
}

func (uc *UserController) HandleSettings(c *fiber.Ctx) error {
	us, err := models.GetOrCreateUserSettings(database.GetDB(), usercontext.GetUserID(c))
	if err != nil {
		return serverError("Settings", err)
	}
	return render(c, uc.repos, "settings", " | Settings", viewmodel.Settings{
		Settings: us,
		Spice:    spiceOptions(us.DefaultSpiceLevel),
		Times:    timeOptions(us.PreferredDeliveryTime),
	})
}

func (uc *UserController) HandleSettingsPost(c *fiber.Ctx) error {
	db := database.GetDB()
	us, err := models.GetOrCreateUserSettings(db, usercontext.GetUserID(c))
	if err != nil {
		return serverError("Settings", err)
	}

	if !us.SetSpiceLevel(c.FormValue("default_spice_level")) {
		return redirectWithError(c, constants.RouteSettings, "Please choose a valid spice level.")
	}
	if !us.SetPreferredDeliveryTime(c.FormValue("preferred_delivery_time")) {
		return redirectWithError(c, constants.RouteSettings, "Please choose a valid delivery time.")
	}
	us.NoCoriander = formBool(c, "no_coriander")
	us.Vegetarian = formBool(c, "vegetarian")
	us.OrderEmails = formBool(c, "order_emails")

	if err := db.Save(us).Error; err != nil {
		return serverError("Settings", err)
	}
	return redirectWithSuccess(c, constants.RouteSettings, "Your preferences are saved.")
}
