package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
	"github.com/ManuelReschke/BaanBox/internal/pkg/viewmodel"
)

func (sc *StoreController) HandlePlans(c *fiber.Ctx) error {
	plans, err := sc.repos.Plan.GetActive()
	if err != nil {
		return serverError("Subscribe", err)
	}

	data := viewmodel.Plans{Plans: plans}
	if sid, err := sc.sessionID(c); err == nil {
		if id, ok, err := sc.state.SelectedPlanID(c.UserContext(), sid); err == nil && ok {
			data.SelectedID = id
		}
	}
	return render(c, sc.repos, "plans", " | Choose your plan", data)
}

func (sc *StoreController) HandlePlansSelect(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.FormValue("plan_id"), 10, 64)
	if err != nil || id == 0 {
		return redirectWithError(c, constants.RoutePlans, "Please choose a plan.")
	}
	plan, err := sc.repos.Plan.GetByID(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return redirectWithError(c, constants.RoutePlans, "This plan is no longer available.")
	}
	if err != nil {
		return serverError("Subscribe", err)
	}

	sid, err := sc.sessionID(c)
	if err != nil {
		return serverError("Subscribe", err)
	}
	if err := sc.state.SelectPlan(c.UserContext(), sid, plan.ID); err != nil {
		return serverError("Subscribe", err)
	}
	return c.Redirect(constants.RouteMeals, fiber.StatusSeeOther)
}

func (sc *StoreController) HandleMeals(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sid, err := sc.sessionID(c)
	if err != nil {
		return serverError("Subscribe", err)
	}

	planID, ok, err := sc.state.SelectedPlanID(ctx, sid)
	if err != nil {
		return serverError("Subscribe", err)
	}
	if !ok {
		return redirectWithError(c, constants.RoutePlans, "Please choose a plan first.")
	}
	plan, err := sc.repos.Plan.GetByID(planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return redirectWithError(c, constants.RoutePlans, "This plan is no longer available.")
	}
	if err != nil {
		return serverError("Subscribe", err)
	}

	items, err := sc.repos.Menu.List(ctx, "")
	if err != nil {
		return serverError("Subscribe", err)
	}

	selected, err := sc.state.SelectedMealIDs(ctx, sid)
	if err != nil {
		return serverError("Subscribe", err)
	}
	if len(selected) == 0 {
		if crt, err := sc.carts.Load(ctx, sid); err == nil {
			selected = crt.MenuIDs()
		}
	}
	marked := make(map[uint]bool, len(selected))
	for _, id := range selected {
		marked[id] = true
	}

	return render(c, sc.repos, "meals", " | Choose your meals", viewmodel.Meals{
		Plan:     *plan,
		Items:    items,
		Selected: marked,
	})
}

func (sc *StoreController) HandleMealsSelect(c *fiber.Ctx) error {
	ids := make([]uint, 0)
	for _, raw := range c.Context().PostArgs().PeekMulti("meal_ids") {
		if id, err := strconv.ParseUint(string(raw), 10, 64); err == nil && id > 0 {
			ids = append(ids, uint(id))
		}
	}
	if len(ids) == 0 {
		return redirectWithError(c, constants.RouteMeals, "Please pick at least one meal.")
	}

	ids, err := sc.orderableMeals(c, ids)
	if err != nil {
		return serverError("Subscribe", err)
	}
	if len(ids) == 0 {
		return redirectWithError(c, constants.RouteMeals, "Those meals are no longer on the menu, please pick again.")
	}

	sid, err := sc.sessionID(c)
	if err != nil {
		return serverError("Subscribe", err)
	}
	if err := sc.state.SelectMeals(c.UserContext(), sid, ids); err != nil {
		return serverError("Subscribe", err)
	}
	return c.Redirect(constants.RouteCheckoutStart, fiber.StatusSeeOther)
}

// orderableMeals keeps the posted ids that are on the menu, in posted order
// and without repeats.
func (sc *StoreController) orderableMeals(c *fiber.Ctx, ids []uint) ([]uint, error) {
	items, err := sc.repos.Menu.GetByIDs(c.UserContext(), ids)
	if err != nil {
		return nil, err
	}
	available := make(map[uint]bool, len(items))
	for _, it := range items {
		if it.IsAvailable {
			available[it.ID] = true
		}
	}

	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if available[id] {
			out = append(out, id)
			delete(available, id)
		}
	}
	return out, nil
}
