package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/BaanBox/app/controllers"
	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/billing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cache"
	"github.com/ManuelReschke/BaanBox/internal/pkg/checkout"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database"
	"github.com/ManuelReschke/BaanBox/internal/pkg/env"
	"github.com/ManuelReschke/BaanBox/internal/pkg/middleware"
	"github.com/ManuelReschke/BaanBox/internal/pkg/oauth"
	"github.com/ManuelReschke/BaanBox/internal/pkg/orderevents"
	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/session"
)

type HttpRouter struct {
	store *controllers.StoreConfig
	oauth bool
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	if session.GetSessionStore() == nil {
		session.NewSessionStore()
	}

	// init oauth providers
	if h.oauth {
		oauth.Setup()
	}

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	repos := repository.GetGlobalRepositories()
	controllers.InitializeControllers(repos)

	cfg := h.store
	if cfg == nil {
		cfg = defaultStoreConfig(repos)
	}
	controllers.InitializeStoreController(controllers.NewStoreController(*cfg))

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{oauth: true}
}

// NewHttpRouterWith installs the storefront on cfg instead of the Redis and
// MySQL backed defaults. OAuth providers are not registered.
func NewHttpRouterWith(cfg controllers.StoreConfig) *HttpRouter {
	return &HttpRouter{store: &cfg}
}

// defaultStoreConfig wires the storefront to Redis state, the Redis
// submission guard and a gorm transaction per order.
func defaultStoreConfig(repos *repository.Repositories) *controllers.StoreConfig {
	db := database.GetDB()
	rdb := cache.GetClient()

	settings := func(userID uint) (*models.UserSettings, error) {
		return models.GetOrCreateUserSettings(db, userID)
	}

	return &controllers.StoreConfig{
		Repos:      repos,
		State:      session.NewRedisStateStore(rdb, session.SessionTTL),
		Guard:      checkout.NewRedisSubmissionGuard(rdb),
		UnitOfWork: checkout.NewGormUnitOfWork(db),
		Billing:    billing.NewServiceFromDB(db),
		Pricing: func() pricing.Config {
			return models.GetAppSettings().PricingConfig()
		},
		UserSettings: settings,
		OrderingOpen: func() bool {
			return models.GetAppSettings().OrderingEnabled
		},
		Workflow: []checkout.Option{
			checkout.WithMissingMenuPolicy(checkout.ParseMissingMenuPolicy(env.GetEnv("CHECKOUT_MISSING_MENU_POLICY", "skip"))),
			checkout.WithCurrency(env.GetEnv("CHECKOUT_CURRENCY", "USD")),
		},
		Listeners: []checkout.OrderListener{
			orderevents.NewNotifier(repos.Notification),
			orderevents.NewMailer(repos.User, settings),
			orderevents.NewPopularity(),
			orderevents.RefreshStatistics,
		},
		Now: time.Now,
	}
}
