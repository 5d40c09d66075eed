package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/BaanBox/internal/pkg/cart"
	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
)

type checkoutFeature struct {
	cart   cart.Cart
	priced pricing.Breakdown
	now    time.Time
	draft  *Draft
	input  Input
	uow    *memUoW
	result *Result
}

func (f *checkoutFeature) reset() {
	*f = checkoutFeature{now: fixedNow, uow: newMemUoW(1, 2, 3)}
}

func (f *checkoutFeature) anEmptyCart() error {
	f.cart.Clear()
	return nil
}

func (f *checkoutFeature) iAdd(qty int, menuID int, price string) error {
	return f.add(qty, menuID, price, cart.Customizations{})
}

func (f *checkoutFeature) iAddWithExtraProtein(qty int, menuID int, price string) error {
	return f.add(qty, menuID, price, cart.Customizations{ExtraProtein: true})
}

func (f *checkoutFeature) add(qty int, menuID int, price string, c cart.Customizations) error {
	unit, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	f.cart.Add(cart.Line{MenuID: uint(menuID), Quantity: qty, UnitPrice: unit, Customizations: c})
	f.priced = pricing.NewEngine(pricing.DefaultConfig()).Price(f.cart.List())
	return nil
}

func amountIs(name string, got decimal.Decimal, want string) error {
	if s := pricing.Format(got); s != want {
		return fmt.Errorf("%s = %s, want %s", name, s, want)
	}
	return nil
}

func (f *checkoutFeature) theSubtotalIs(want string) error {
	return amountIs("subtotal", f.priced.Subtotal, want)
}

func (f *checkoutFeature) theDeliveryFeeIs(want string) error {
	return amountIs("delivery fee", f.priced.DeliveryFee, want)
}

func (f *checkoutFeature) theTaxIs(want string) error {
	return amountIs("tax", f.priced.TaxAmount, want)
}

func (f *checkoutFeature) theTotalIs(want string) error {
	return amountIs("total", f.priced.Total, want)
}

func (f *checkoutFeature) todayIs(day string) error {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		return err
	}
	f.now = d.Add(15 * time.Hour)
	return nil
}

func (f *checkoutFeature) aDraft(cycle, meals string) error {
	var ids []uint
	for _, s := range strings.Split(meals, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		ids = append(ids, uint(id))
	}
	f.draft = testDraft(cycle, ids...)
	return nil
}

func (f *checkoutFeature) aCompleteForm() error {
	f.input = validInput()
	return nil
}

func (f *checkoutFeature) noDeliveryDays() error {
	f.input.DeliveryDays = nil
	return nil
}

func (f *checkoutFeature) iPlaceTheOrder() error {
	wf := NewWorkflow(f.uow, WithClock(func() time.Time { return f.now }), WithIDGenerator(seqIDs()))
	f.result = wf.Commit(context.Background(), 7, f.draft, f.input)
	return nil
}

func (f *checkoutFeature) rejectedWith(n int, msg string) error {
	if f.result.State != StateRejected {
		return fmt.Errorf("state = %s, want rejected", f.result.State)
	}
	if len(f.result.Errors) != n || f.result.Errors[0] != msg {
		return fmt.Errorf("errors = %q", f.result.Errors)
	}
	return nil
}

func (f *checkoutFeature) nothingIsStored() error {
	if n := f.uow.writes(); n != 0 {
		return fmt.Errorf("%d rows stored", n)
	}
	return nil
}

func (f *checkoutFeature) committed() error {
	if !f.result.Committed() {
		return fmt.Errorf("state = %s (%v)", f.result.State, f.result.Err)
	}
	return nil
}

func (f *checkoutFeature) startsOn(day string) error {
	if got := f.result.Subscription.StartDate.Format("2006-01-02"); got != day {
		return fmt.Errorf("start date = %s, want %s", got, day)
	}
	return nil
}

func (f *checkoutFeature) nextBillingIs(day string) error {
	if got := f.result.Subscription.NextBillingDate.Format("2006-01-02"); got != day {
		return fmt.Errorf("next billing date = %s, want %s", got, day)
	}
	return nil
}

func initializeCheckoutScenario(sc *godog.ScenarioContext) {
	f := &checkoutFeature{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})

	sc.Step(`^an empty cart$`, f.anEmptyCart)
	sc.Step(`^I add (\d+) of menu item (\d+) at (\d+\.\d{2})$`, f.iAdd)
	sc.Step(`^I add (\d+) of menu item (\d+) at (\d+\.\d{2}) with extra protein$`, f.iAddWithExtraProtein)
	sc.Step(`^the subtotal is (\d+\.\d{2})$`, f.theSubtotalIs)
	sc.Step(`^the delivery fee is (\d+\.\d{2})$`, f.theDeliveryFeeIs)
	sc.Step(`^the tax is (\d+\.\d{2})$`, f.theTaxIs)
	sc.Step(`^the total is (\d+\.\d{2})$`, f.theTotalIs)

	sc.Step(`^today is (\d{4}-\d{2}-\d{2})$`, f.todayIs)
	sc.Step(`^a checkout draft for a "([^"]*)" plan with meals ([\d, ]+)$`, f.aDraft)
	sc.Step(`^a complete checkout form$`, f.aCompleteForm)
	sc.Step(`^no delivery days are selected$`, f.noDeliveryDays)
	sc.Step(`^I place the order$`, f.iPlaceTheOrder)
	sc.Step(`^the order is rejected with (\d+) error "([^"]*)"$`, f.rejectedWith)
	sc.Step(`^nothing is stored$`, f.nothingIsStored)
	sc.Step(`^the order is committed$`, f.committed)
	sc.Step(`^the subscription starts on (\d{4}-\d{2}-\d{2})$`, f.startsOn)
	sc.Step(`^the next billing date is (\d{4}-\d{2}-\d{2})$`, f.nextBillingIs)
}

func TestCheckoutFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeCheckoutScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/checkout.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
