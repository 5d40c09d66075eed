package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidTransition    = errors.New("subscription cannot change to the requested status")
)

// Service manages the lifecycle of a customer's subscription after checkout.
// Every call is scoped by the owning user id.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

func (s *Service) Pause(ctx context.Context, userID uint, subscriptionID string) (*models.Subscription, error) {
	return s.transition(ctx, userID, subscriptionID, models.SUBSCRIPTION_PAUSED)
}

// Resume reactivates a paused subscription. A billing date that passed while
// paused is moved forward cycle by cycle until it lies after today.
func (s *Service) Resume(ctx context.Context, userID uint, subscriptionID string) (*models.Subscription, error) {
	return s.transition(ctx, userID, subscriptionID, models.SUBSCRIPTION_ACTIVE)
}

func (s *Service) Cancel(ctx context.Context, userID uint, subscriptionID string) (*models.Subscription, error) {
	return s.transition(ctx, userID, subscriptionID, models.SUBSCRIPTION_CANCELLED)
}

// SetAutoRenew turns renewal off for any live subscription. Turning it on
// needs a subscription that is billed, so a paused one has to resume first.
func (s *Service) SetAutoRenew(ctx context.Context, userID uint, subscriptionID string, autoRenew bool) error {
	sub, err := s.load(ctx, userID, subscriptionID)
	if err != nil {
		return err
	}
	if sub.Status == models.SUBSCRIPTION_CANCELLED || sub.Status == models.SUBSCRIPTION_EXPIRED {
		return ErrInvalidTransition
	}
	if autoRenew && !isBillableStatus(sub.Status) {
		return fmt.Errorf("%w: auto renew needs an active subscription", ErrInvalidTransition)
	}
	return s.repo.SetAutoRenew(ctx, userID, sub.ID, autoRenew)
}

func (s *Service) transition(ctx context.Context, userID uint, subscriptionID, to string) (*models.Subscription, error) {
	sub, err := s.load(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !canTransition(sub.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sub.Status, to)
	}

	var next *time.Time
	if to == models.SUBSCRIPTION_ACTIVE {
		n := rollForward(sub.NextBillingDate, sub.BillingCycle, s.now())
		next = &n
		sub.NextBillingDate = n
	}
	if err := s.repo.UpdateSubscriptionStatus(ctx, userID, sub.ID, to, next); err != nil {
		return nil, err
	}
	sub.Status = to
	return sub, nil
}

func (s *Service) load(ctx context.Context, userID uint, subscriptionID string) (*models.Subscription, error) {
	id := strings.TrimSpace(subscriptionID)
	if userID == 0 || id == "" {
		return nil, ErrSubscriptionNotFound
	}
	sub, err := s.repo.GetSubscription(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func rollForward(next time.Time, cycle string, now time.Time) time.Time {
	today := StartDate(now).AddDate(0, 0, -1)
	for !next.After(today) {
		next = NextBillingDate(next, cycle)
	}
	return next
}
