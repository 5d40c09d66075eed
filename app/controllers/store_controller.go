package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/billing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cart"
	"github.com/ManuelReschke/BaanBox/internal/pkg/checkout"
	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/session"
)

// StoreConfig wires the storefront controller. Everything stateful is
// injected so tests can run on in-memory stores.
type StoreConfig struct {
	Repos      *repository.Repositories
	State      session.StateStore
	Guard      checkout.SubmissionGuard
	UnitOfWork checkout.UnitOfWork
	Billing    *billing.Service
	// Pricing is read on every request so admin changes apply immediately.
	Pricing      func() pricing.Config
	UserSettings func(userID uint) (*models.UserSettings, error)
	// OrderingOpen false closes checkout; browsing and the cart keep working.
	OrderingOpen func() bool
	Workflow     []checkout.Option
	Listeners    []checkout.OrderListener
	Now          func() time.Time
}

// StoreController serves the menu, cart, plan selection, checkout and the
// customer's orders.
type StoreController struct {
	repos     *repository.Repositories
	carts     *cart.Service
	state     *checkout.SessionState
	assembler *checkout.Assembler
	checkout  *checkout.Service
	billing   *billing.Service
	pricing   func() pricing.Config
	settings  func(userID uint) (*models.UserSettings, error)
	open      func() bool
	now       func() time.Time
}

func NewStoreController(cfg StoreConfig) *StoreController {
	carts := cart.NewService(cfg.State)
	state := checkout.NewSessionState(cfg.State)
	workflow := checkout.NewWorkflow(cfg.UnitOfWork, cfg.Workflow...)

	sc := &StoreController{
		repos:     cfg.Repos,
		carts:     carts,
		state:     state,
		assembler: checkout.NewAssembler(cfg.Repos.Menu),
		checkout:  checkout.NewService(state, workflow, cfg.Guard, carts, cfg.Listeners...),
		billing:   cfg.Billing,
		pricing:   cfg.Pricing,
		settings:  cfg.UserSettings,
		open:      cfg.OrderingOpen,
		now:       cfg.Now,
	}
	if sc.open == nil {
		sc.open = func() bool { return true }
	}
	if sc.pricing == nil {
		sc.pricing = pricing.DefaultConfig
	}
	if sc.now == nil {
		sc.now = time.Now
	}
	return sc
}

func (sc *StoreController) engine() *pricing.Engine {
	return pricing.NewEngine(sc.pricing())
}

// sessionID returns the visitor's session id, creating the session if needed.
func (sc *StoreController) sessionID(c *fiber.Ctx) (string, error) {
	return session.ID(c)
}

// cartCount is the badge in the navigation. Errors only hide the badge.
func (sc *StoreController) cartCount(c *fiber.Ctx) int {
	store := session.GetSessionStore()
	if store == nil {
		return 0
	}
	sess, err := store.Get(c)
	if err != nil || sess.Fresh() {
		return 0
	}
	crt, err := sc.carts.Load(c.UserContext(), sess.ID())
	if err != nil {
		log.Debugf("[Cart] badge: %v", err)
		return 0
	}
	return crt.ItemCount()
}

func (sc *StoreController) userSettings(userID uint) *models.UserSettings {
	if sc.settings == nil || userID == 0 {
		return nil
	}
	us, err := sc.settings(userID)
	if err != nil {
		log.Warnf("[Store] settings of user %d: %v", userID, err)
		return nil
	}
	return us
}
