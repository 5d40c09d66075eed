package checkout

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/BaanBox/internal/pkg/cart"
)

// CartClearer empties a session's cart once its order is placed.
type CartClearer interface {
	Clear(ctx context.Context, sid string) (cart.Outcome, error)
}

// OrderListener is told about every committed order. Listener errors are
// logged and never undo the order.
type OrderListener interface {
	OrderPlaced(ctx context.Context, userID uint, draft *Draft, res *Result) error
}

type OrderListenerFunc func(ctx context.Context, userID uint, draft *Draft, res *Result) error

func (f OrderListenerFunc) OrderPlaced(ctx context.Context, userID uint, draft *Draft, res *Result) error {
	return f(ctx, userID, draft, res)
}

// Placement is what the web layer needs after a submit.
type Placement struct {
	*Result
	// SubscriptionID is set for a fresh commit and for a replayed token.
	SubscriptionID string
	Duplicate      bool
	Draft          *Draft
}

type Service struct {
	state     *SessionState
	workflow  *Workflow
	guard     SubmissionGuard
	carts     CartClearer
	listeners []OrderListener
}

func NewService(state *SessionState, workflow *Workflow, guard SubmissionGuard, carts CartClearer, listeners ...OrderListener) *Service {
	return &Service{
		state:     state,
		workflow:  workflow,
		guard:     guard,
		carts:     carts,
		listeners: listeners,
	}
}

func (s *Service) State() *SessionState {
	return s.state
}

// PlaceOrder commits the session's draft for userID. Errors are precondition
// failures (ErrMissingPrerequisite, ErrStaleSubmission, ErrDuplicateSubmission)
// or infrastructure errors; validation and rollback outcomes come back in the
// Placement with a nil error.
func (s *Service) PlaceOrder(ctx context.Context, sid string, userID uint, in Input) (*Placement, error) {
	in.Normalize()

	if in.SubmitToken != "" {
		subID, done, err := s.guard.Lookup(ctx, userID, in.SubmitToken)
		if err != nil {
			return nil, err
		}
		if done {
			return &Placement{SubscriptionID: subID, Duplicate: true}, nil
		}
	}

	draft, err := s.state.LoadDraft(ctx, sid)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, &PrerequisiteError{Step: StepDraft}
	}
	if in.SubmitToken == "" || in.SubmitToken != draft.SubmitToken {
		return &Placement{Draft: draft}, ErrStaleSubmission
	}

	claimed, err := s.guard.Claim(ctx, userID, in.SubmitToken)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return &Placement{Draft: draft}, ErrDuplicateSubmission
	}

	res := s.workflow.Commit(ctx, userID, draft, in)
	if !res.Committed() {
		// A rejected or rolled back attempt may be resubmitted with the same token.
		if rerr := s.guard.Release(context.WithoutCancel(ctx), userID, in.SubmitToken); rerr != nil {
			log.Warnf("[Checkout] release submission token: %v", rerr)
		}
		return &Placement{Result: res, Draft: draft}, nil
	}

	s.afterCommit(ctx, sid, userID, in.SubmitToken, draft, res)
	return &Placement{Result: res, SubscriptionID: res.Subscription.ID, Draft: draft}, nil
}

// Abandon drops the draft and frees its token.
func (s *Service) Abandon(ctx context.Context, sid string, userID uint) error {
	draft, err := s.state.LoadDraft(ctx, sid)
	if err != nil {
		return err
	}
	if draft != nil && draft.SubmitToken != "" {
		if err := s.guard.Release(ctx, userID, draft.SubmitToken); err != nil {
			return err
		}
	}
	return s.state.Abandon(ctx, sid)
}

// afterCommit runs once the transaction is durable. None of it can fail the order.
func (s *Service) afterCommit(ctx context.Context, sid string, userID uint, token string, draft *Draft, res *Result) {
	ctx = context.WithoutCancel(ctx)

	if err := s.guard.Complete(ctx, userID, token, res.Subscription.ID); err != nil {
		log.Warnf("[Checkout] mark submission %s complete: %v", res.Subscription.ID, err)
	}
	if err := s.state.Clear(ctx, sid); err != nil {
		log.Warnf("[Checkout] clear checkout state: %v", err)
	}
	if s.carts != nil {
		if _, err := s.carts.Clear(ctx, sid); err != nil {
			log.Warnf("[Checkout] clear cart: %v", err)
		}
	}
	for _, l := range s.listeners {
		if err := l.OrderPlaced(ctx, userID, draft, res); err != nil {
			log.Errorf("[Checkout] order %s listener: %v", res.Subscription.ID, err)
		}
	}
}

// IsPrerequisite reports whether err sends the customer back to an earlier step,
// and which one.
func IsPrerequisite(err error) (string, bool) {
	var pe *PrerequisiteError
	if errors.As(err, &pe) {
		return pe.Step, true
	}
	return "", errors.Is(err, ErrMissingPrerequisite)
}
