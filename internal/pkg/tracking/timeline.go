// Package tracking derives the order status timeline shown on the order
// confirmation and order detail pages.
package tracking

import (
	"time"

	"github.com/ManuelReschke/BaanBox/app/models"
)

type StepState string

const (
	Done     StepState = "done"
	Current  StepState = "current"
	Upcoming StepState = "upcoming"
)

const (
	StepPlaced           = "placed"
	StepPaymentConfirmed = "payment_confirmed"
	StepPreparing        = "preparing"
	StepOutForDelivery   = "out_for_delivery"
	StepDelivered        = "delivered"
	StepCancelled        = "cancelled"
	StepPaused           = "paused"
)

var labels = map[string]string{
	StepPlaced:           "Order placed",
	StepPaymentConfirmed: "Payment confirmed",
	StepPreparing:        "Preparing your meals",
	StepOutForDelivery:   "Out for delivery",
	StepDelivered:        "Delivered",
	StepCancelled:        "Cancelled",
	StepPaused:           "Paused",
}

// kitchen hands the boxes to the drivers at noon of the delivery day
const dispatchHour = 12

type Step struct {
	Key   string
	Label string
	State StepState
	At    *time.Time
}

// Timeline returns the steps of an order as of now. Cancelled and paused
// orders stop after the payment step.
func Timeline(sub models.Subscription, payment *models.Payment, now time.Time) []Step {
	placedAt := sub.CreatedAt
	steps := []Step{{Key: StepPlaced, State: Done, At: &placedAt}}

	paid := payment != nil && payment.Status == models.PAYMENT_COMPLETED
	payStep := Step{Key: StepPaymentConfirmed, State: Upcoming}
	if paid {
		at := payment.PaymentDate
		payStep.State = Done
		payStep.At = &at
	} else {
		payStep.State = Current
	}
	steps = append(steps, payStep)

	switch sub.Status {
	case models.SUBSCRIPTION_CANCELLED:
		at := sub.UpdatedAt
		steps = append(steps, Step{Key: StepCancelled, State: Done, At: &at})
		return withLabels(steps)
	case models.SUBSCRIPTION_PAUSED:
		steps = append(steps, Step{Key: StepPaused, State: Current})
		return withLabels(steps)
	}

	rest := []string{StepPreparing, StepOutForDelivery, StepDelivered}
	reached := -1
	if paid {
		reached = progress(sub, now)
	}
	for i, key := range rest {
		st := Step{Key: key, State: Upcoming}
		switch {
		case i <= reached:
			st.State = Done
		case i == reached+1 && paid:
			st.State = Current
		}
		steps = append(steps, st)
	}
	return withLabels(steps)
}

// progress is the index into preparing/out/delivered that has been completed,
// -1 when the kitchen has not started yet.
func progress(sub models.Subscription, now time.Time) int {
	var preparing, delivered, open int
	for _, m := range sub.ScheduledMeals {
		switch m.Status {
		case models.MEAL_PREPARING:
			preparing++
		case models.MEAL_DELIVERED:
			delivered++
		case models.MEAL_SCHEDULED:
			open++
		}
	}

	start := sub.StartDate
	dispatch := time.Date(start.Year(), start.Month(), start.Day(), dispatchHour, 0, 0, 0, start.Location())

	switch {
	case delivered > 0 && open == 0 && preparing == 0:
		return 2
	case delivered > 0 || !now.Before(dispatch):
		return 1
	case preparing > 0 || !now.Before(start):
		return 0
	default:
		return -1
	}
}

func withLabels(steps []Step) []Step {
	for i := range steps {
		steps[i].Label = labels[steps[i].Key]
	}
	return steps
}

// CurrentLabel is the short status shown in the order history table.
func CurrentLabel(steps []Step) string {
	for _, s := range steps {
		if s.State == Current {
			return s.Label
		}
	}
	if len(steps) == 0 {
		return ""
	}
	return steps[len(steps)-1].Label
}
