package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/BaanBox/app/models"
)

var errBoom = errors.New("boom")

// memUoW keeps writes in a staging tx and publishes them only when fn succeeds.
type memUoW struct {
	menu   map[uint]bool
	users  map[uint]models.DeliveryAddress
	failOn string
	calls  int

	subs     []models.Subscription
	payments []models.Payment
	meals    []models.ScheduledMeal
}

func newMemUoW(menuIDs ...uint) *memUoW {
	u := &memUoW{menu: map[uint]bool{}, users: map[uint]models.DeliveryAddress{7: {Street: "Old Road 1", City: "Austin", ZipCode: "73301"}}}
	for _, id := range menuIDs {
		u.menu[id] = true
	}
	return u
}

func (u *memUoW) Do(ctx context.Context, fn func(tx Tx) error) error {
	u.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{uow: u, users: map[uint]models.DeliveryAddress{}}
	for k, v := range u.users {
		tx.users[k] = v
	}
	if err := fn(tx); err != nil {
		return err
	}
	u.subs = append(u.subs, tx.subs...)
	u.payments = append(u.payments, tx.payments...)
	u.meals = append(u.meals, tx.meals...)
	u.users = tx.users
	return nil
}

func (u *memUoW) writes() int {
	return len(u.subs) + len(u.payments) + len(u.meals)
}

type memTx struct {
	uow      *memUoW
	subs     []models.Subscription
	payments []models.Payment
	meals    []models.ScheduledMeal
	users    map[uint]models.DeliveryAddress
}

func (t *memTx) fail(step string) error {
	if t.uow.failOn == step {
		return fmt.Errorf("%s: %w", step, errBoom)
	}
	return nil
}

func (t *memTx) CreateSubscription(sub *models.Subscription) error {
	if err := t.fail("subscription"); err != nil {
		return err
	}
	t.subs = append(t.subs, *sub)
	return nil
}

func (t *memTx) CreatePayment(p *models.Payment) error {
	if err := t.fail("payment"); err != nil {
		return err
	}
	t.payments = append(t.payments, *p)
	return nil
}

func (t *memTx) AvailableMenuIDs(ids []uint) (map[uint]bool, error) {
	out := map[uint]bool{}
	for _, id := range ids {
		if t.uow.menu[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (t *memTx) CreateScheduledMeals(meals []models.ScheduledMeal) error {
	if err := t.fail("meals"); err != nil {
		return err
	}
	t.meals = append(t.meals, meals...)
	return nil
}

func (t *memTx) UpdateUserAddress(userID uint, addr models.DeliveryAddress) error {
	if err := t.fail("address"); err != nil {
		return err
	}
	if _, ok := t.users[userID]; !ok {
		return ErrUserNotFound
	}
	t.users[userID] = addr
	return nil
}

type fakeCatalog struct {
	items     map[uint]models.MenuItem
	requested [][]uint
}

func (c *fakeCatalog) GetByIDs(_ context.Context, ids []uint) ([]models.MenuItem, error) {
	c.requested = append(c.requested, append([]uint(nil), ids...))
	var out []models.MenuItem
	for _, id := range ids {
		if it, ok := c.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// fixedNow is a Sunday afternoon; orders start Monday 2024-06-10.
var fixedNow = time.Date(2024, time.June, 9, 15, 4, 5, 0, time.UTC)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%08x-1111-4222-8333-%012d", n, n)
	}
}

func testDraft(cycle string, mealIDs ...uint) *Draft {
	return &Draft{
		Plan: PlanSnapshot{
			ID:              3,
			Name:            "Family Feast",
			MealsPerWeek:    5,
			Price:           decimal.RequireFromString("59.99"),
			DiscountPercent: decimal.RequireFromString("10"),
			FinalPrice:      decimal.RequireFromString("53.99"),
			BillingCycle:    cycle,
		},
		SelectedMealIDs: mealIDs,
		SubmitToken:     "tok-1",
	}
}

func validInput() Input {
	return Input{
		DeliveryAddress: "12 Soi Sukhumvit",
		City:            "Austin",
		ZipCode:         "73301",
		PaymentMethod:   models.PAYMENT_METHOD_CARD,
		DeliveryDays:    []string{"friday", "monday"},
		PreferredTime:   "evening",
		SubmitToken:     "tok-1",
	}
}
