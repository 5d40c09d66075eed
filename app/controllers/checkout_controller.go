package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/internal/pkg/billing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/checkout"
	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
	"github.com/ManuelReschke/BaanBox/internal/pkg/nutrition"
	"github.com/ManuelReschke/BaanBox/internal/pkg/usercontext"
	"github.com/ManuelReschke/BaanBox/internal/pkg/viewmodel"
)

var deliveryTimes = []viewmodel.Option{
	{Value: "morning", Label: "Morning (8:00 - 12:00)"},
	{Value: "afternoon", Label: "Afternoon (12:00 - 17:00)"},
	{Value: "evening", Label: "Evening (17:00 - 21:00)"},
}

var paymentMethods = []string{
	models.PAYMENT_METHOD_CARD,
	models.PAYMENT_METHOD_PAYPAL,
	models.PAYMENT_METHOD_BANK_TRANSFER,
	models.PAYMENT_METHOD_CASH,
}

// stepRoute is where a missing checkout prerequisite sends the customer.
func stepRoute(step string) (string, string) {
	switch step {
	case checkout.StepPlan:
		return constants.RoutePlans, "Please choose a plan first."
	case checkout.StepMeals:
		return constants.RouteMeals, "Please pick the meals for your plan."
	default:
		return constants.RouteCheckoutStart, "Your checkout session expired. Please review your order again."
	}
}

func (sc *StoreController) redirectToStep(c *fiber.Ctx, err error) error {
	step, _ := checkout.IsPrerequisite(err)
	to, msg := stepRoute(step)
	return redirectWithError(c, to, msg)
}

// HandleCheckoutStart assembles the draft from plan, meal selection and cart.
func (sc *StoreController) HandleCheckoutStart(c *fiber.Ctx) error {
	if !sc.open() {
		return redirectWithError(c, constants.RouteCart, "We are not taking new orders right now. Please try again later.")
	}
	ctx := c.UserContext()
	sid, err := sc.sessionID(c)
	if err != nil {
		return serverError("Checkout", err)
	}

	planID, ok, err := sc.state.SelectedPlanID(ctx, sid)
	if err != nil {
		return serverError("Checkout", err)
	}
	var plan *models.SubscriptionPlan
	if ok {
		plan, err = sc.repos.Plan.GetByID(planID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return serverError("Checkout", err)
		}
	}

	crt, err := sc.carts.Load(ctx, sid)
	if err != nil {
		return serverError("Checkout", err)
	}
	selected, err := sc.state.SelectedMealIDs(ctx, sid)
	if err != nil {
		return serverError("Checkout", err)
	}
	if len(selected) == 0 {
		selected = crt.MenuIDs()
	}

	// an old draft's token must not stay claimable
	if err := sc.checkout.Abandon(ctx, sid, usercontext.GetUserID(c)); err != nil {
		log.Warnf("[Checkout] drop previous draft: %v", err)
	}

	draft, err := sc.assembler.Assemble(ctx, plan, selected, nil, sc.engine().Price(crt.List()))
	if err != nil {
		if _, ok := checkout.IsPrerequisite(err); ok {
			return sc.redirectToStep(c, err)
		}
		return serverError("Checkout", err)
	}
	if err := sc.state.SaveDraft(ctx, sid, draft); err != nil {
		return serverError("Checkout", err)
	}
	return c.Redirect(constants.RouteCheckout, fiber.StatusSeeOther)
}

// HandleCheckout shows the draft and the delivery form, prefilled from the
// customer's stored address and preferences.
func (sc *StoreController) HandleCheckout(c *fiber.Ctx) error {
	sid, err := sc.sessionID(c)
	if err != nil {
		return serverError("Checkout", err)
	}
	draft, err := sc.state.LoadDraft(c.UserContext(), sid)
	if err != nil {
		return serverError("Checkout", err)
	}
	if draft == nil {
		return c.Redirect(constants.RouteCheckoutStart, fiber.StatusSeeOther)
	}

	userID := usercontext.GetUserID(c)
	in := checkout.Input{PaymentMethod: models.PAYMENT_METHOD_CARD}
	if user, err := sc.repos.User.GetByID(userID); err == nil {
		addr := user.Address()
		in.DeliveryAddress = addr.Street
		in.City = addr.City
		in.ZipCode = addr.ZipCode
		in.DeliveryInstructions = addr.Instructions
	}
	if us := sc.userSettings(userID); us != nil {
		in.PreferredTime = us.PreferredDeliveryTime
	}

	return render(c, sc.repos, "checkout", " | Checkout", sc.checkoutView(draft, in, nil))
}

func (sc *StoreController) checkoutView(draft *checkout.Draft, in checkout.Input, errs []string) viewmodel.Checkout {
	days := make([]viewmodel.Option, len(models.DeliveryDayNames))
	for i, d := range models.DeliveryDayNames {
		days[i] = viewmodel.Option{Value: d, Label: strings.ToUpper(d[:1]) + d[1:], Selected: in.HasDay(d)}
	}
	times := make([]viewmodel.Option, len(deliveryTimes))
	for i, t := range deliveryTimes {
		t.Selected = t.Value == in.PreferredTime
		times[i] = t
	}
	methods := make([]viewmodel.Option, len(paymentMethods))
	for i, m := range paymentMethods {
		methods[i] = viewmodel.Option{Value: m, Label: models.PaymentMethodLabel(m), Selected: m == in.PaymentMethod}
	}

	meals := draft.Meals()
	var summary nutrition.Summary
	for _, m := range meals {
		summary.Add(nutrition.Facts{Calories: m.Calories, Protein: m.ProteinGrams, Carbs: m.CarbsGrams, Fat: m.FatGrams}, 1)
	}

	return viewmodel.Checkout{
		Draft:          draft,
		Meals:          meals,
		Input:          in,
		Errors:         errs,
		Days:           days,
		Times:          times,
		PaymentMethods: methods,
		WeekendDates:   billing.UpcomingWeekendDates(sc.now(), 4),
		Nutrition:      summary,
	}
}

// HandleCheckoutSubmit commits the order. Rejected input re-renders the form
// with 422 and every value kept; a failed commit re-renders with 500.
func (sc *StoreController) HandleCheckoutSubmit(c *fiber.Ctx) error {
	if c.FormValue("submit_order") != "1" {
		return c.Redirect(constants.RouteCheckout, fiber.StatusSeeOther)
	}
	if !sc.open() {
		return redirectWithError(c, constants.RouteCart, "We are not taking new orders right now. Please try again later.")
	}

	var in checkout.Input
	if err := c.BodyParser(&in); err != nil {
		return redirectWithError(c, constants.RouteCheckout, "We could not read the checkout form. Please try again.")
	}

	sid, err := sc.sessionID(c)
	if err != nil {
		return serverError("Checkout", err)
	}
	userID := usercontext.GetUserID(c)

	placed, err := sc.checkout.PlaceOrder(c.UserContext(), sid, userID, in)
	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrMissingPrerequisite):
		return sc.redirectToStep(c, err)
	case errors.Is(err, checkout.ErrStaleSubmission):
		return redirectWithError(c, constants.RouteCheckout, "Your checkout form was out of date. Please review your order and submit again.")
	case errors.Is(err, checkout.ErrDuplicateSubmission):
		return redirectWithInfo(c, constants.RouteOrders, "Your order is already being processed.")
	default:
		return serverError("Checkout", err)
	}

	if placed.Duplicate {
		return c.Redirect(constants.OrderStatusRoute(placed.SubscriptionID), fiber.StatusSeeOther)
	}

	in.Normalize()
	switch placed.State {
	case checkout.StateCommitted:
		return redirectWithSuccess(c, constants.OrderStatusRoute(placed.SubscriptionID), "Thank you! Your order has been placed.")
	case checkout.StateRejected:
		if _, ok := checkout.IsPrerequisite(placed.Err); ok {
			return sc.redirectToStep(c, placed.Err)
		}
		return render(c, sc.repos, "checkout", " | Checkout", sc.checkoutView(placed.Draft, in, placed.Errors), fiber.StatusUnprocessableEntity)
	default:
		return render(c, sc.repos, "checkout", " | Checkout", sc.checkoutView(placed.Draft, in, placed.Errors), fiber.StatusInternalServerError)
	}
}

// HandleCheckoutCancel drops the draft and keeps the cart and selections.
func (sc *StoreController) HandleCheckoutCancel(c *fiber.Ctx) error {
	sid, err := sc.sessionID(c)
	if err != nil {
		return serverError("Checkout", err)
	}
	if err := sc.checkout.Abandon(c.UserContext(), sid, usercontext.GetUserID(c)); err != nil {
		return serverError("Checkout", err)
	}
	return redirectWithInfo(c, constants.RouteCart, "Checkout cancelled. Your cart is still here.")
}
