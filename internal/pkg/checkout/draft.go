// Package checkout assembles the checkout draft from the customer's plan,
// meal selection and cart, and commits it as an order in one transaction.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/session"
)

var (
	// ErrMissingPrerequisite means an earlier checkout step was skipped.
	ErrMissingPrerequisite = errors.New("checkout prerequisite missing")
	// ErrStaleSubmission means the posted form belongs to an older draft.
	ErrStaleSubmission = errors.New("checkout form is out of date")
	// ErrDuplicateSubmission means the same draft is already being committed.
	ErrDuplicateSubmission = errors.New("order is already being processed")
	// ErrMenuItemMissing is returned under the abort policy when a selected meal no longer exists.
	ErrMenuItemMissing = errors.New("menu item no longer exists")
)

// Prerequisite steps, in the order the customer walks through them.
const (
	StepPlan  = "plan"
	StepMeals = "meals"
	StepDraft = "draft"
)

// PrerequisiteError names the step the customer has to go back to.
type PrerequisiteError struct {
	Step string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingPrerequisite, e.Step)
}

func (e *PrerequisiteError) Unwrap() error {
	return ErrMissingPrerequisite
}

// PlanSnapshot freezes the plan terms the customer saw when the draft was built.
type PlanSnapshot struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	MealsPerWeek    int             `json:"meals_per_week"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	BillingCycle    string          `json:"billing_cycle"`
}

func SnapshotPlan(p *models.SubscriptionPlan) PlanSnapshot {
	return PlanSnapshot{
		ID:              p.ID,
		Name:            p.Name,
		MealsPerWeek:    p.MealsPerWeek,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		FinalPrice:      p.FinalPrice(),
		BillingCycle:    p.BillingCycle,
	}
}

type MealDetail struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	IsVegetarian bool            `json:"is_vegetarian"`
	Calories     int             `json:"calories"`
	ProteinGrams int             `json:"protein_grams"`
	CarbsGrams   int             `json:"carbs_grams"`
	FatGrams     int             `json:"fat_grams"`
}

func MealDetailFrom(m models.MenuItem) MealDetail {
	return MealDetail{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		Price:        m.Price,
		IsVegetarian: m.IsVegetarian,
		Calories:     m.Calories,
		ProteinGrams: m.ProteinGrams,
		CarbsGrams:   m.CarbsGrams,
		FatGrams:     m.FatGrams,
	}
}

// Draft is everything the final checkout page shows and commits. It lives in
// session state until the order commits or the customer abandons checkout.
type Draft struct {
	Plan            PlanSnapshot        `json:"plan"`
	SelectedMealIDs []uint              `json:"selected_meal_ids"`
	MealDetailsByID map[uint]MealDetail `json:"meal_details_by_id"`
	Pricing         pricing.Breakdown   `json:"pricing"`
	SubmitToken     string              `json:"submit_token"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Meals returns the selected meals in selection order. Ids without details are skipped.
func (d *Draft) Meals() []MealDetail {
	out := make([]MealDetail, 0, len(d.SelectedMealIDs))
	for _, id := range d.SelectedMealIDs {
		if m, ok := d.MealDetailsByID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

const (
	keyDraft         = "checkout_draft"
	keySelectedPlan  = "selected_plan_id"
	keySelectedMeals = "selected_meal_ids"
)

// SessionState stores the checkout steps in per-session state.
type SessionState struct {
	store session.StateStore
}

func NewSessionState(store session.StateStore) *SessionState {
	return &SessionState{store: store}
}

func (s *SessionState) SelectPlan(ctx context.Context, sid string, planID uint) error {
	return s.store.Set(ctx, sid, keySelectedPlan, []byte(strconv.FormatUint(uint64(planID), 10)))
}

func (s *SessionState) SelectedPlanID(ctx context.Context, sid string) (uint, bool, error) {
	raw, ok, err := s.store.Get(ctx, sid, keySelectedPlan)
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false, nil
	}
	return uint(id), true, nil
}

func (s *SessionState) SelectMeals(ctx context.Context, sid string, ids []uint) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, sid, keySelectedMeals, raw)
}

func (s *SessionState) SelectedMealIDs(ctx context.Context, sid string) ([]uint, error) {
	raw, ok, err := s.store.Get(ctx, sid, keySelectedMeals)
	if err != nil || !ok {
		return nil, err
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode meal selection: %w", err)
	}
	return ids, nil
}

func (s *SessionState) SaveDraft(ctx context.Context, sid string, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.store.Set(ctx, sid, keyDraft, raw)
}

// LoadDraft returns nil without error when no draft exists.
func (s *SessionState) LoadDraft(ctx context.Context, sid string) (*Draft, error) {
	raw, ok, err := s.store.Get(ctx, sid, keyDraft)
	if err != nil || !ok {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

// Abandon drops the draft but keeps plan and meal selection for a retry.
func (s *SessionState) Abandon(ctx context.Context, sid string) error {
	return s.store.Delete(ctx, sid, keyDraft)
}

// Clear removes draft, plan and meal selection after a committed order.
func (s *SessionState) Clear(ctx context.Context, sid string) error {
	return s.store.Delete(ctx, sid, keyDraft, keySelectedPlan, keySelectedMeals)
}
