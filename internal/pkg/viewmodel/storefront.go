package viewmodel

import (
	"time"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cart"
	"github.com/ManuelReschke/BaanBox/internal/pkg/checkout"
	"github.com/ManuelReschke/BaanBox/internal/pkg/nutrition"
	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/statistics"
	"github.com/ManuelReschke/BaanBox/internal/pkg/tracking"
)

type Home struct {
	Stats   statistics.StatisticsData
	Plans   []models.SubscriptionPlan
	Popular []models.MenuItem
}

type Menu struct {
	Category   string
	Categories []string
	Items      []models.MenuItem
}

type MenuDetail struct {
	Item        models.MenuItem
	SpiceLevels []Option
	NoCoriander bool
	MaxQuantity int
	Pricing     pricing.Config
}

// CartLine pairs a stored line with its priced values.
type CartLine struct {
	Line   cart.Line
	Priced pricing.LineBreakdown
}

type Cart struct {
	Lines   []CartLine
	Pricing pricing.Breakdown
	Config  pricing.Config
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

type Plans struct {
	Plans      []models.SubscriptionPlan
	SelectedID uint
}

type Meals struct {
	Plan     models.SubscriptionPlan
	Items    []models.MenuItem
	Selected map[uint]bool
}

type Checkout struct {
	Draft          *checkout.Draft
	Meals          []checkout.MealDetail
	Input          checkout.Input
	Errors         []string
	Days           []Option
	Times          []Option
	PaymentMethods []Option
	WeekendDates   []time.Time
	Nutrition      nutrition.Summary
}

type Orders struct {
	Orders []repository.OrderSummary
	Page   int
	Pages  []int
}

// OrderMeal is one scheduled meal with what the kitchen knows about it.
type OrderMeal struct {
	Meal models.ScheduledMeal
	Name string
}

type OrderDetail struct {
	Subscription models.Subscription
	Payment      *models.Payment
	Meals        []OrderMeal
	Nutrition    nutrition.Summary
	MacroSplit   [3]int
	Timeline     []tracking.Step
	CanPause     bool
	CanResume    bool
	CanCancel    bool
}

type OrderStatus struct {
	Subscription models.Subscription
	Payment      *models.Payment
	Timeline     []tracking.Step
	Current      string
	MealCount    int
}

type Notifications struct {
	Items []models.Notification
}

type Auth struct {
	Next            string
	Email           string
	Name            string
	HCaptchaSiteKey string
	Providers       []string
}

type StaticPage struct {
	Page *models.Page
}

type Settings struct {
	Settings *models.UserSettings
	Spice    []Option
	Times    []Option
}

type AdminDashboard struct {
	Users       int64
	MenuItems   int64
	Active      int64
	Paused      int64
	Cancelled   int64
	Delivered   int64
	DailyStats  []models.DailyStats
	RecentUsers []models.User
}

type AdminSettings struct {
	Settings *models.AppSettings
}

type AdminMenu struct {
	Items []models.MenuItem
}

type AdminMenuForm struct {
	Item       models.MenuItem
	Categories []string
	Errors     []string
	IsNew      bool
}
