package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/billing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
	"github.com/ManuelReschke/BaanBox/internal/pkg/nutrition"
	"github.com/ManuelReschke/BaanBox/internal/pkg/tracking"
	"github.com/ManuelReschke/BaanBox/internal/pkg/usercontext"
	"github.com/ManuelReschke/BaanBox/internal/pkg/viewmodel"
)

const ordersPerPage = 10

func (sc *StoreController) HandleOrders(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	total, err := sc.repos.Order.CountByUser(userID)
	if err != nil {
		return serverError("Orders", err)
	}
	orders, err := sc.repos.Order.ListByUser(userID, (page-1)*ordersPerPage, ordersPerPage)
	if err != nil {
		return serverError("Orders", err)
	}

	totalPages := int(total) / ordersPerPage
	if int(total)%ordersPerPage > 0 {
		totalPages++
	}
	pages := make([]int, totalPages)
	for i := range pages {
		pages[i] = i + 1
	}

	return render(c, sc.repos, "orders", " | My orders", viewmodel.Orders{Orders: orders, Page: page, Pages: pages})
}

// loadOrder only ever finds orders of the logged-in customer; anything else is 404.
func (sc *StoreController) loadOrder(c *fiber.Ctx) (*repository.OrderDetail, error) {
	detail, err := sc.repos.Order.GetDetail(usercontext.GetUserID(c), c.Params("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.ErrNotFound
	}
	if err != nil {
		return nil, serverError("Orders", err)
	}
	return detail, nil
}

func (sc *StoreController) HandleOrderDetail(c *fiber.Ctx) error {
	detail, err := sc.loadOrder(c)
	if err != nil {
		return err
	}
	sub := detail.Subscription

	meals := make([]viewmodel.OrderMeal, 0, len(sub.ScheduledMeals))
	var summary nutrition.Summary
	for _, m := range sub.ScheduledMeals {
		name := m.MenuItem.Name
		if name == "" {
			name = "Menu item #" + strconv.FormatUint(uint64(m.MenuID), 10)
		}
		meals = append(meals, viewmodel.OrderMeal{Meal: m, Name: name})
		summary.Add(nutrition.Facts{
			Calories: m.MenuItem.Calories,
			Protein:  m.MenuItem.ProteinGrams,
			Carbs:    m.MenuItem.CarbsGrams,
			Fat:      m.MenuItem.FatGrams,
		}, m.Quantity)
	}
	p, cb, f := summary.MacroSplit()

	return render(c, sc.repos, "order_detail", " | Order #"+sub.ShortID(), viewmodel.OrderDetail{
		Subscription: sub,
		Payment:      detail.Payment,
		Meals:        meals,
		Nutrition:    summary,
		MacroSplit:   [3]int{p, cb, f},
		Timeline:     tracking.Timeline(sub, detail.Payment, sc.now()),
		CanPause:     sub.Status == models.SUBSCRIPTION_ACTIVE,
		CanResume:    sub.Status == models.SUBSCRIPTION_PAUSED,
		CanCancel: sub.Status == models.SUBSCRIPTION_ACTIVE ||
			sub.Status == models.SUBSCRIPTION_PAUSED ||
			sub.Status == models.SUBSCRIPTION_PENDING_PAYMENT,
	})
}

// HandleOrderStatus is the confirmation page a committed checkout lands on.
func (sc *StoreController) HandleOrderStatus(c *fiber.Ctx) error {
	detail, err := sc.loadOrder(c)
	if err != nil {
		return err
	}
	steps := tracking.Timeline(detail.Subscription, detail.Payment, sc.now())

	return render(c, sc.repos, "order_status", " | Order status", viewmodel.OrderStatus{
		Subscription: detail.Subscription,
		Payment:      detail.Payment,
		Timeline:     steps,
		Current:      tracking.CurrentLabel(steps),
		MealCount:    len(detail.Subscription.ScheduledMeals),
	})
}

type transitionFunc func(c *fiber.Ctx, userID uint, id string) (*models.Subscription, error)

func (sc *StoreController) changeOrder(c *fiber.Ctx, fn transitionFunc, done string) error {
	id := c.Params("id")
	back := constants.OrderRoute(id)

	_, err := fn(c, usercontext.GetUserID(c), id)
	switch {
	case err == nil:
		return redirectWithSuccess(c, back, done)
	case errors.Is(err, billing.ErrSubscriptionNotFound):
		return fiber.ErrNotFound
	case errors.Is(err, billing.ErrInvalidTransition):
		return redirectWithError(c, back, "This order cannot be changed right now.")
	default:
		return serverError("Orders", err)
	}
}

func (sc *StoreController) HandleOrderPause(c *fiber.Ctx) error {
	return sc.changeOrder(c, func(c *fiber.Ctx, userID uint, id string) (*models.Subscription, error) {
		return sc.billing.Pause(c.UserContext(), userID, id)
	}, "Your subscription is paused.")
}

func (sc *StoreController) HandleOrderResume(c *fiber.Ctx) error {
	return sc.changeOrder(c, func(c *fiber.Ctx, userID uint, id string) (*models.Subscription, error) {
		return sc.billing.Resume(c.UserContext(), userID, id)
	}, "Welcome back! Your subscription is active again.")
}

func (sc *StoreController) HandleOrderCancel(c *fiber.Ctx) error {
	return sc.changeOrder(c, func(c *fiber.Ctx, userID uint, id string) (*models.Subscription, error) {
		return sc.billing.Cancel(c.UserContext(), userID, id)
	}, "Your subscription was cancelled.")
}

func (sc *StoreController) HandleOrderAutoRenew(c *fiber.Ctx) error {
	enabled := formBool(c, "auto_renew")
	msg := "Auto-renew is off."
	if enabled {
		msg = "Auto-renew is on."
	}
	return sc.changeOrder(c, func(c *fiber.Ctx, userID uint, id string) (*models.Subscription, error) {
		return nil, sc.billing.SetAutoRenew(c.UserContext(), userID, id, enabled)
	}, msg)
}

// HandleNotifications lists the newest notifications and marks them read.
// The page still shows which ones were new.
func (sc *StoreController) HandleNotifications(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	items, err := sc.repos.Notification.ListRecent(userID, 50)
	if err != nil {
		return serverError("Notifications", err)
	}
	if err := sc.repos.Notification.MarkAllRead(userID); err != nil {
		return serverError("Notifications", err)
	}
	return render(c, sc.repos, "notifications", " | Notifications", viewmodel.Notifications{Items: items})
}
