// Package orderevents holds what happens after an order is committed:
// the customer's notification, the confirmation mail and the popularity
// counters. None of it may fail the order.
package orderevents

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/checkout"
	"github.com/ManuelReschke/BaanBox/internal/pkg/constants"
	"github.com/ManuelReschke/BaanBox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/BaanBox/internal/pkg/mail"
	"github.com/ManuelReschke/BaanBox/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/statistics"
)

// KeepNotifications is how many notifications a customer keeps.
const KeepNotifications = 50

// Notifier writes the "order placed" notification.
type Notifier struct {
	repo repository.NotificationRepository
	keep int
}

func NewNotifier(repo repository.NotificationRepository) *Notifier {
	return &Notifier{repo: repo, keep: KeepNotifications}
}

func (n *Notifier) OrderPlaced(_ context.Context, userID uint, draft *checkout.Draft, res *checkout.Result) error {
	if err := n.repo.Create(models.NewOrderNotification(userID, res.Subscription, draft.Plan.Name)); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if pruned, err := n.repo.PruneToLatest(userID, n.keep); err != nil {
		log.Warnf("[Notifications] prune for user %d: %v", userID, err)
	} else if pruned > 0 {
		log.Debugf("[Notifications] pruned %d old notifications of user %d", pruned, userID)
	}
	return nil
}

// SettingsLookup returns the stored preferences of a user.
type SettingsLookup func(userID uint) (*models.UserSettings, error)

// Mailer sends the order confirmation unless the customer opted out.
type Mailer struct {
	users    repository.UserRepository
	settings SettingsLookup
	send     func(to string, data mail.OrderConfirmationData) error
}

func NewMailer(users repository.UserRepository, settings SettingsLookup) *Mailer {
	return &Mailer{users: users, settings: settings, send: jobqueue.SendOrderConfirmation}
}

func (m *Mailer) OrderPlaced(_ context.Context, userID uint, draft *checkout.Draft, res *checkout.Result) error {
	if m.settings != nil {
		if us, err := m.settings(userID); err == nil && us != nil && !us.OrderEmails {
			return nil
		}
	}

	user, err := m.users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	if user.Email == "" {
		return nil
	}

	return m.send(user.Email, ConfirmationData(user, draft, res))
}

// ConfirmationData maps a committed order onto the mail template.
func ConfirmationData(user *models.User, draft *checkout.Draft, res *checkout.Result) mail.OrderConfirmationData {
	sub := res.Subscription

	days := make([]string, 0, len(sub.Days()))
	for _, d := range sub.Days() {
		days = append(days, strings.ToUpper(d[:1])+d[1:])
	}

	names := make(map[uint]string, len(draft.MealDetailsByID))
	for id, m := range draft.MealDetailsByID {
		names[id] = m.Name
	}
	counts := make(map[uint]int)
	var order []uint
	for _, meal := range res.ScheduledMeals {
		if counts[meal.MenuID] == 0 {
			order = append(order, meal.MenuID)
		}
		counts[meal.MenuID] += meal.Quantity
	}
	meals := make([]mail.OrderMeal, 0, len(order))
	for _, id := range order {
		name := names[id]
		if name == "" {
			name = fmt.Sprintf("Menu item #%d", id)
		}
		meals = append(meals, mail.OrderMeal{Name: name, Quantity: counts[id]})
	}

	data := mail.OrderConfirmationData{
		Name:         user.Name,
		OrderNumber:  sub.ShortID(),
		PlanName:     draft.Plan.Name,
		BillingCycle: sub.BillingCycle,
		Total:        pricing.Format(sub.TotalAmount),
		StartDate:    sub.StartDate.Format("Monday, 02 Jan 2006"),
		DeliveryDays: days,
		Meals:        meals,
		StatusLink:   mail.PublicURL(constants.OrderStatusRoute(sub.ID)),
	}
	if res.Payment != nil {
		data.Currency = res.Payment.Currency
		data.PaymentMethod = models.PaymentMethodLabel(res.Payment.PaymentMethod)
	}
	return data
}

// Popularity counts every scheduled portion towards its dish.
type Popularity struct {
	add func(ctx context.Context, menuID uint, qty int) error
}

func NewPopularity() *Popularity {
	return &Popularity{add: counter.AddMenuOrder}
}

func (p *Popularity) OrderPlaced(ctx context.Context, _ uint, _ *checkout.Draft, res *checkout.Result) error {
	for _, meal := range res.ScheduledMeals {
		if err := p.add(ctx, meal.MenuID, meal.Quantity); err != nil {
			return fmt.Errorf("count menu item %d: %w", meal.MenuID, err)
		}
	}
	return nil
}

// RefreshStatistics makes the next home page view recount the counters.
var RefreshStatistics = checkout.OrderListenerFunc(func(context.Context, uint, *checkout.Draft, *checkout.Result) error {
	statistics.ResetCacheUpdateTimer()
	return nil
})
