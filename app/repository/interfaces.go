package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	TouchLastLogin(id uint, at time.Time) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// MenuRepository is the read side of the menu plus the admin writes.
type MenuRepository interface {
	List(ctx context.Context, category string) ([]models.MenuItem, error)
	GetByID(ctx context.Context, id uint) (*models.MenuItem, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.MenuItem, error)
	Categories(ctx context.Context) ([]string, error)
	// ListAll includes unavailable dishes; only the admin area uses it.
	ListAll(ctx context.Context) ([]models.MenuItem, error)
	Create(item *models.MenuItem) error
	Update(item *models.MenuItem) error
	Delete(id uint) error
	Count() (int64, error)
	AddPopularity(id uint, delta int64) error
}

// PlanRepository defines the interface for subscription plans
type PlanRepository interface {
	GetActive() ([]models.SubscriptionPlan, error)
	GetByID(id uint) (*models.SubscriptionPlan, error)
	GetAll() ([]models.SubscriptionPlan, error)
	Create(plan *models.SubscriptionPlan) error
	Update(plan *models.SubscriptionPlan) error
}

// OrderRepository is the customer's order history. Every method that takes
// a userID only ever returns rows owned by that user.
type OrderRepository interface {
	ListByUser(userID uint, offset, limit int) ([]OrderSummary, error)
	CountByUser(userID uint) (int64, error)
	GetDetail(userID uint, subscriptionID string) (*OrderDetail, error)
	CountByStatus(status string) (int64, error)
	CountMeals(status string) (int64, error)
	CountCustomers() (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(n *models.Notification) error
	ListRecent(userID uint, limit int) ([]models.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkAllRead(userID uint) error
	PruneToLatest(userID uint, keep int) (int64, error)
}

// SettingRepository defines the interface for application settings
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// PageRepository defines the interface for page-related operations
type PageRepository interface {
	Create(page *models.Page) error
	GetByID(id uint) (*models.Page, error)
	GetBySlug(slug string) (*models.Page, error)
	GetAll() ([]models.Page, error)
	GetActive() ([]models.Page, error)
	GetFooter() ([]models.Page, error)
	Update(page *models.Page) error
	Delete(id uint) error
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// OrderSummary is one row of the order history page.
type OrderSummary struct {
	Subscription models.Subscription
	PlanName     string
	MealCount    int64
}

// OrderDetail is a single order with its plan, payment and scheduled meals.
type OrderDetail struct {
	Subscription models.Subscription
	Payment      *models.Payment
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Menu         MenuRepository
	Plan         PlanRepository
	Order        OrderRepository
	Notification NotificationRepository
	Setting      SettingRepository
	Page         PageRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Menu:         NewCachedMenuRepository(NewMenuRepository(db), MenuCacheTTL),
		Plan:         NewPlanRepository(db),
		Order:        NewOrderRepository(db),
		Notification: NewNotificationRepository(db),
		Setting:      NewSettingRepository(db),
		Page:         NewPageRepository(db),
	}
}
