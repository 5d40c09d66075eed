package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/internal/pkg/billing"
)

// State is where a commit attempt ended up.
type State string

const (
	StateValidating State = "validating"
	StatePersisting State = "persisting"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
	StateRolledBack State = "rolled_back"
)

// GenericFailureMessage is all the customer sees when persisting fails.
const GenericFailureMessage = "We could not place your order. Nothing was charged, please try again."

// MissingMenuPolicy decides what happens when a selected meal disappeared
// from the menu between draft and commit.
type MissingMenuPolicy string

const (
	SkipMissingMenu    MissingMenuPolicy = "skip"
	AbortOnMissingMenu MissingMenuPolicy = "abort"
)

// ParseMissingMenuPolicy defaults to skip for anything but "abort".
func ParseMissingMenuPolicy(s string) MissingMenuPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(AbortOnMissingMenu)) {
		return AbortOnMissingMenu
	}
	return SkipMissingMenu
}

type Result struct {
	State          State
	Errors         []string
	Subscription   *models.Subscription
	Payment        *models.Payment
	ScheduledMeals []models.ScheduledMeal
	SkippedMenuIDs []uint
	Err            error
}

func (r *Result) Committed() bool {
	return r != nil && r.State == StateCommitted
}

type Workflow struct {
	uow      UnitOfWork
	policy   MissingMenuPolicy
	currency string
	now      func() time.Time
	newID    func() string
}

type Option func(*Workflow)

func WithMissingMenuPolicy(p MissingMenuPolicy) Option {
	return func(w *Workflow) { w.policy = p }
}

func WithCurrency(code string) Option {
	return func(w *Workflow) {
		if code = strings.ToUpper(strings.TrimSpace(code)); len(code) == 3 {
			w.currency = code
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(w *Workflow) { w.newID = gen }
}

func NewWorkflow(uow UnitOfWork, opts ...Option) *Workflow {
	w := &Workflow{
		uow:      uow,
		policy:   SkipMissingMenu,
		currency: "USD",
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) Policy() MissingMenuPolicy {
	return w.policy
}

type commitStep struct {
	name string
	run  func(tx Tx) error
}

// Commit validates in and, when valid, persists subscription, payment,
// scheduled meals and the user's address in one transaction. Nothing is
// written when validation fails.
func (w *Workflow) Commit(ctx context.Context, userID uint, draft *Draft, in Input) *Result {
	res := &Result{State: StateValidating}

	in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		res.State = StateRejected
		res.Errors = errs
		return res
	}
	if draft == nil || draft.Plan.ID == 0 {
		res.State = StateRejected
		res.Err = &PrerequisiteError{Step: StepDraft}
		res.Errors = []string{"Your checkout session expired. Please choose your plan again."}
		return res
	}

	res.State = StatePersisting

	now := w.now()
	start := billing.StartDate(now)
	cycle := billing.NormalizeCycle(draft.Plan.BillingCycle)
	next := billing.NextBillingDate(start, cycle)
	amount := draft.Plan.FinalPrice

	sub := &models.Subscription{
		ID:                    w.newID(),
		UserID:                userID,
		PlanID:                draft.Plan.ID,
		Status:                models.SUBSCRIPTION_ACTIVE,
		StartDate:             start,
		NextBillingDate:       next,
		BillingCycle:          cycle,
		TotalAmount:           amount,
		PreferredDeliveryTime: in.PreferredTime,
		SpecialInstructions:   in.DeliveryInstructions,
		AutoRenew:             true,
	}
	sub.SetDays(in.DeliveryDays)

	payment := &models.Payment{
		ID:                 w.newID(),
		SubscriptionID:     sub.ID,
		UserID:             userID,
		PaymentMethod:      in.PaymentMethod,
		TransactionID:      billing.TransactionID(now, sub.ID),
		Amount:             amount,
		Currency:           w.currency,
		NetAmount:          amount,
		Status:             models.PAYMENT_COMPLETED,
		PaymentDate:        now,
		BillingPeriodStart: start,
		BillingPeriodEnd:   next,
		Description:        fmt.Sprintf("%s subscription (%s)", draft.Plan.Name, cycle),
	}

	var meals []models.ScheduledMeal
	var skipped []uint

	steps := []commitStep{
		{name: "create subscription", run: func(tx Tx) error { return tx.CreateSubscription(sub) }},
		{name: "record payment", run: func(tx Tx) error { return tx.CreatePayment(payment) }},
		{name: "schedule meals", run: func(tx Tx) error {
			var err error
			meals, skipped, err = w.scheduleMeals(tx, sub.ID, start, draft.SelectedMealIDs)
			return err
		}},
		{name: "update delivery address", run: func(tx Tx) error { return tx.UpdateUserAddress(userID, in.Address()) }},
	}

	err := w.uow.Do(ctx, func(tx Tx) error {
		for _, st := range steps {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%s: %w", st.name, err)
			}
			if err := st.run(tx); err != nil {
				return fmt.Errorf("%s: %w", st.name, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Errorf("[Checkout] order for user %d rolled back: %v", userID, err)
		res.State = StateRolledBack
		res.Err = err
		res.Errors = []string{GenericFailureMessage}
		return res
	}

	if len(skipped) > 0 {
		log.Warnf("[Checkout] order %s committed without menu items %v", sub.ID, skipped)
	}
	log.Infof("[Checkout] order %s committed for user %d (%d meals)", sub.ID, userID, len(meals))

	res.State = StateCommitted
	res.Subscription = sub
	res.Payment = payment
	res.ScheduledMeals = meals
	res.SkippedMenuIDs = skipped
	return res
}

// scheduleMeals is the single place the missing-menu policy is applied.
func (w *Workflow) scheduleMeals(tx Tx, subscriptionID string, delivery time.Time, ids []uint) ([]models.ScheduledMeal, []uint, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	exists, err := tx.AvailableMenuIDs(ids)
	if err != nil {
		return nil, nil, err
	}

	meals := make([]models.ScheduledMeal, 0, len(ids))
	var skipped []uint
	for _, id := range ids {
		if !exists[id] {
			if w.policy == AbortOnMissingMenu {
				return nil, nil, fmt.Errorf("%w: %d", ErrMenuItemMissing, id)
			}
			skipped = append(skipped, id)
			continue
		}
		meals = append(meals, models.ScheduledMeal{
			ID:             w.newID(),
			SubscriptionID: subscriptionID,
			MenuID:         id,
			DeliveryDate:   delivery,
			Quantity:       1,
			Status:         models.MEAL_SCHEDULED,
		})
	}

	if err := tx.CreateScheduledMeals(meals); err != nil {
		return nil, nil, err
	}
	return meals, skipped, nil
}
