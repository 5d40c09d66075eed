package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ManuelReschke/BaanBox/internal/pkg/session"
)

// StateKey is the session state key the cart is stored under.
const StateKey = "cart"

// Service loads and saves carts through a session.StateStore. Mutations for
// one session run one at a time so concurrent tabs cannot lose writes.
type Service struct {
	store session.StateStore
	locks *session.KeyedMutex
}

func NewService(store session.StateStore) *Service {
	return &Service{store: store, locks: session.NewKeyedMutex()}
}

func (s *Service) Load(ctx context.Context, sid string) (*Cart, error) {
	raw, ok, err := s.store.Get(ctx, sid, StateKey)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	c := &Cart{}
	if !ok || len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, sid string) ([]Line, error) {
	c, err := s.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	return c.List(), nil
}

func (s *Service) AddItem(ctx context.Context, sid string, line Line) (Outcome, error) {
	return s.mutate(ctx, sid, func(c *Cart) Outcome { return c.Add(line) })
}

func (s *Service) UpdateQuantity(ctx context.Context, sid string, index, quantity int) (Outcome, error) {
	return s.mutate(ctx, sid, func(c *Cart) Outcome { return c.UpdateQuantity(index, quantity) })
}

func (s *Service) RemoveItem(ctx context.Context, sid string, index int) (Outcome, error) {
	return s.mutate(ctx, sid, func(c *Cart) Outcome { return c.Remove(index) })
}

func (s *Service) Clear(ctx context.Context, sid string) (Outcome, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()
	if err := s.store.Delete(ctx, sid, StateKey); err != nil {
		return Ignored, fmt.Errorf("clear cart: %w", err)
	}
	return Applied, nil
}

func (s *Service) mutate(ctx context.Context, sid string, fn func(*Cart) Outcome) (Outcome, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	c, err := s.Load(ctx, sid)
	if err != nil {
		return Ignored, err
	}

	outcome := fn(c)
	if outcome != Applied {
		return outcome, nil
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return Ignored, fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Set(ctx, sid, StateKey, raw); err != nil {
		return Ignored, fmt.Errorf("save cart: %w", err)
	}
	return Applied, nil
}
