package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/securetoken"
)

// MenuCatalog is the read-only menu lookup the assembler hydrates meals from.
type MenuCatalog interface {
	GetByIDs(ctx context.Context, ids []uint) ([]models.MenuItem, error)
}

type Assembler struct {
	catalog MenuCatalog
	token   func() (string, error)
	now     func() time.Time
}

func NewAssembler(catalog MenuCatalog) *Assembler {
	return &Assembler{catalog: catalog, token: securetoken.SubmissionToken, now: time.Now}
}

// Assemble builds a draft. A missing plan or an empty meal selection is a
// *PrerequisiteError. When details is empty the selected meals are looked up
// in the catalog, and only those ids.
func (a *Assembler) Assemble(ctx context.Context, plan *models.SubscriptionPlan, selected []uint, details map[uint]MealDetail, priced pricing.Breakdown) (*Draft, error) {
	if plan == nil || plan.ID == 0 {
		return nil, &PrerequisiteError{Step: StepPlan}
	}

	ids := make([]uint, 0, len(selected))
	for _, id := range selected {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, &PrerequisiteError{Step: StepMeals}
	}

	if len(details) == 0 {
		hydrated, err := a.hydrate(ctx, ids)
		if err != nil {
			return nil, err
		}
		details = hydrated
	}

	token, err := a.token()
	if err != nil {
		return nil, fmt.Errorf("issue submission token: %w", err)
	}

	return &Draft{
		Plan:            SnapshotPlan(plan),
		SelectedMealIDs: ids,
		MealDetailsByID: details,
		Pricing:         priced,
		SubmitToken:     token,
		CreatedAt:       a.now(),
	}, nil
}

func (a *Assembler) hydrate(ctx context.Context, ids []uint) (map[uint]MealDetail, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	items, err := a.catalog.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("load selected meals: %w", err)
	}

	details := make(map[uint]MealDetail, len(items))
	for _, it := range items {
		details[it.ID] = MealDetailFrom(it)
	}
	if len(details) < len(unique) {
		log.Warnf("[Checkout] %d of %d selected meals are no longer on the menu", len(unique)-len(details), len(unique))
	}
	return details, nil
}
