package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/controllers"
	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/billing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cart"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cache"
	"github.com/ManuelReschke/BaanBox/internal/pkg/checkout"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database/dbtest"
	"github.com/ManuelReschke/BaanBox/internal/pkg/orderevents"
	"github.com/ManuelReschke/BaanBox/internal/pkg/session"
)

const testPassword = "s3cret-pass"

type fixture struct {
	app   *fiber.App
	db    *gorm.DB
	user  models.User
	admin models.User
	plan  models.SubscriptionPlan
	curry models.MenuItem
	salad models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	cache.UseClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	db := dbtest.Open(t)
	database.UseDB(db)
	repository.SetGlobalFactory(repository.NewFactory(db))
	session.UseStore(fibersession.New(fibersession.Config{KeyLookup: "cookie:session_id"}))

	f := &fixture{db: db}
	hash, err := models.HashPassword(testPassword)
	require.NoError(t, err)

	f.user = models.User{Name: "Somchai", Email: "somchai@example.com", Password: hash, Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	require.NoError(t, db.Create(&f.user).Error)
	f.admin = models.User{Name: "Admin", Email: "admin@example.com", Password: hash, Role: models.ROLE_ADMIN, Status: models.STATUS_ACTIVE}
	require.NoError(t, db.Create(&f.admin).Error)

	f.plan = models.SubscriptionPlan{Name: "Family Table", MealsPerWeek: 5, Price: decimal.RequireFromString("59.99"),
		BillingCycle: models.BILLING_CYCLE_WEEKLY, IsActive: true}
	require.NoError(t, db.Create(&f.plan).Error)
	f.curry = models.MenuItem{Name: "Green Curry", Category: "curry", Price: decimal.RequireFromString("13.50"), IsAvailable: true}
	require.NoError(t, db.Create(&f.curry).Error)
	f.salad = models.MenuItem{Name: "Som Tam", Category: "salad", Price: decimal.RequireFromString("9.50"), IsAvailable: true}
	require.NoError(t, db.Create(&f.salad).Error)
	require.NoError(t, db.Create(&models.Page{Title: "About us", Slug: "about", Content: "<p>Hello</p>", ShowInFooter: true, IsActive: true}).Error)

	repos := repository.GetGlobalRepositories()
	f.app = fiber.New()
	InstallRouterWith(f.app, controllers.StoreConfig{
		Repos:      repos,
		State:      session.NewMemoryStateStore(),
		Guard:      checkout.NewMemorySubmissionGuard(),
		UnitOfWork: checkout.NewGormUnitOfWork(db),
		Billing:    billing.NewServiceFromDB(db),
		Listeners:  []checkout.OrderListener{orderevents.NewNotifier(repos.Notification)},
		Now:        func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) },
	})
	return f
}

// browser keeps cookies between requests and fills in the csrf field.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (f *fixture) browser(t *testing.T) *browser {
	return &browser{t: t, app: f.app, cookies: make(map[string]string)}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	if form == nil {
		form = url.Values{}
	}
	if _, ok := form["_csrf"]; !ok {
		form.Set("_csrf", b.cookies["csrf_"])
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	return b.do(req)
}

func (b *browser) login(email string) {
	b.t.Helper()
	b.get("/login")
	resp, _ := b.post("/login", url.Values{"email": {email}, "password": {testPassword}})
	require.Equal(b.t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(b.t, "/menu", resp.Header.Get("Location"))
}

func id(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

var submissionTokenRe = regexp.MustCompile(`name="submission_token" value="([^"]+)"`)

func TestMenuIsPublic(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	resp, body := b.get("/menu")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Green Curry")
	assert.Contains(t, body, "Som Tam")
	assert.Contains(t, body, `href="/page/about"`)
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	for _, path := range []string{"/checkout", "/orders", "/notifications", "/user/settings"} {
		resp, _ := b.get(path)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), resp.Header.Get("Location"), path)
	}
}

func TestAdminNeedsAdminRole(t *testing.T) {
	f := newFixture(t)

	customer := f.browser(t)
	customer.login(f.user.Email)
	resp, _ := customer.get("/admin")
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	admin := f.browser(t)
	admin.login(f.admin.Email)
	resp, body := admin.get("/admin/menu")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Green Curry")
}

func TestAdminMenuRejectsSVGImage(t *testing.T) {
	f := newFixture(t)
	admin := f.browser(t)
	admin.login(f.admin.Email)
	admin.get("/admin/menu/new")

	form := url.Values{
		"name":                {"Khao Soi"},
		"category":            {"noodles"},
		"price":               {"13.50"},
		"default_spice_level": {"medium"},
		"is_available":        {"on"},
		"image_url":           {"https://cdn.example.com/khao-soi.svg"},
	}
	resp, body := admin.post("/admin/menu", form)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "SVG images are not supported.")

	var count int64
	require.NoError(t, f.db.Model(&models.MenuItem{}).Where("name = ?", "Khao Soi").Count(&count).Error)
	assert.Zero(t, count)

	form.Set("image_url", "https://cdn.example.com/khao-soi.png")
	resp, _ = admin.post("/admin/menu", form)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var item models.MenuItem
	require.NoError(t, f.db.Where("name = ?", "Khao Soi").First(&item).Error)
	assert.Equal(t, "https://cdn.example.com/khao-soi.png", item.ImageURL)
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.get("/menu")

	resp, _ := b.post("/menu/"+id(f.curry.ID), url.Values{"_csrf": {"forged"}, "quantity": {"1"}})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.get("/login")

	resp, _ := b.post("/login", url.Values{"email": {f.user.Email}, "password": {"wrong"}})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login"))

	resp, _ = b.get("/orders")
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
}

func TestUnknownPageIsNotFound(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	resp, _ := b.get("/page/missing")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := b.get("/page/about")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello")
}

func TestAPIPingAndMenu(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	resp, body := b.get("/api/v1/ping")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "pong")

	resp, body = b.get("/api/v1/menu?category=salad")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Som Tam")
	assert.NotContains(t, body, "Green Curry")
}

func TestCartSurvivesLogin(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.get("/menu")

	resp, _ := b.post("/menu/"+id(f.curry.ID), url.Values{"quantity": {"2"}, "spice_level": {"hot"}, "extra_protein": {"true"}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/cart", resp.Header.Get("Location"))

	b.login(f.user.Email)

	resp, body := b.get("/cart")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Green Curry")

	resp, body = b.get("/api/v1/cart")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"quantity":2`)
}

// cartLines reads the visitor's cart through the JSON API.
func (b *browser) cartLines() []cart.Line {
	b.t.Helper()
	resp, body := b.get("/api/v1/cart")
	require.Equal(b.t, fiber.StatusOK, resp.StatusCode)
	var out struct {
		Lines []cart.Line `json:"lines"`
	}
	require.NoError(b.t, json.Unmarshal([]byte(body), &out))
	return out.Lines
}

func (b *browser) cartAction(form url.Values) {
	b.t.Helper()
	resp, _ := b.post("/cart", form)
	require.Equal(b.t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(b.t, "/cart", resp.Header.Get("Location"))
}

func TestAPIRateLimit(t *testing.T) {
	t.Setenv("API_RATE_LIMIT", "2")
	f := newFixture(t)
	b := f.browser(t)

	for i := 0; i < 2; i++ {
		resp, _ := b.get("/api/v1/ping")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, _ := b.get("/api/v1/ping")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestGuestCartBelongsToItsVisitor(t *testing.T) {
	f := newFixture(t)

	nok := f.browser(t)
	nok.get("/menu")
	resp, _ := nok.post("/menu/"+id(f.curry.ID), url.Values{"quantity": {"3"}, "note": {"no peanuts, allergy"}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.NotEmpty(t, nok.cookies["session_id"])

	lines := nok.cartLines()
	require.Len(t, lines, 1)
	assert.Equal(t, f.curry.ID, lines[0].MenuID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, "no peanuts, allergy", lines[0].Note)

	// a second add lands in the same cart
	resp, _ = nok.post("/menu/"+id(f.salad.ID), url.Values{"quantity": {"1"}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Len(t, nok.cartLines(), 2)

	malee := f.browser(t)
	assert.Empty(t, malee.cartLines())
	_, body := malee.get("/api/v1/cart")
	assert.NotContains(t, body, "no peanuts")

	malee.get("/menu")
	resp, _ = malee.post("/menu/"+id(f.salad.ID), url.Values{"quantity": {"2"}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	mine := malee.cartLines()
	require.Len(t, mine, 1)
	assert.Equal(t, f.salad.ID, mine[0].MenuID)
	assert.Len(t, nok.cartLines(), 2)
}

func TestCartActions(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.get("/menu")

	for _, add := range []struct {
		menu uint
		qty  string
	}{{f.curry.ID, "1"}, {f.salad.ID, "2"}, {f.curry.ID, "3"}} {
		resp, _ := b.post("/menu/"+id(add.menu), url.Values{"quantity": {add.qty}})
		require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	}
	require.Len(t, b.cartLines(), 3)

	b.cartAction(url.Values{"action": {"update_quantity"}, "item_index": {"0"}, "quantity": {"15"}})
	lines := b.cartLines()
	require.Len(t, lines, 3)
	assert.Equal(t, 10, lines[0].Quantity)

	b.cartAction(url.Values{"action": {"update_quantity"}, "item_index": {"7"}, "quantity": {"4"}})
	assert.Equal(t, lines, b.cartLines())

	b.cartAction(url.Values{"action": {"remove_item"}, "item_index": {"99"}})
	assert.Equal(t, lines, b.cartLines())

	b.cartAction(url.Values{"action": {"remove_item"}})
	assert.Equal(t, lines, b.cartLines())

	b.cartAction(url.Values{"action": {"remove_item"}, "item_index": {"0"}})
	lines = b.cartLines()
	require.Len(t, lines, 2)
	assert.Equal(t, f.salad.ID, lines[0].MenuID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, f.curry.ID, lines[1].MenuID)
	assert.Equal(t, 3, lines[1].Quantity)

	// index 1 is now the last line after re-packing
	b.cartAction(url.Values{"action": {"update_quantity"}, "item_index": {"1"}, "quantity": {"0"}})
	assert.Equal(t, 1, b.cartLines()[1].Quantity)

	b.cartAction(url.Values{"action": {"clear_cart"}})
	assert.Empty(t, b.cartLines())

	resp, _ := b.get("/cart")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCheckoutPlacesOneOrder(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.login(f.user.Email)

	resp, _ := b.post("/menu/"+id(f.curry.ID), url.Values{"quantity": {"1"}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	resp, _ = b.post("/subscribe/plans", url.Values{"plan_id": {id(f.plan.ID)}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/subscribe/meals", resp.Header.Get("Location"))

	resp, _ = b.post("/subscribe/meals", url.Values{"meal_ids": {id(f.curry.ID), id(f.salad.ID)}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/checkout/start", resp.Header.Get("Location"))

	resp, _ = b.get("/checkout/start")
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/checkout", resp.Header.Get("Location"))

	resp, body := b.get("/checkout")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	m := submissionTokenRe.FindStringSubmatch(body)
	require.Len(t, m, 2)
	token := m[1]

	form := url.Values{
		"submit_order":     {"1"},
		"submission_token": {token},
		"delivery_address": {"12 Sukhumvit Road"},
		"city":             {"Bangkok"},
		"zip_code":         {"10110"},
		"payment_method":   {"paypal"},
		"delivery_days":    {"monday", "thursday"},
		"preferred_time":   {"evening"},
	}

	// invalid input keeps the draft and writes nothing
	bad := url.Values{}
	for k, v := range form {
		bad[k] = v
	}
	bad.Del("delivery_days")
	resp, body = b.post("/checkout", bad)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Please select at least one delivery day.")
	var count int64
	require.NoError(t, f.db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)

	resp, _ = b.post("/checkout", form)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	assert.Regexp(t, `^/orders/[0-9a-f-]{36}/status$`, location)

	var sub models.Subscription
	require.NoError(t, f.db.Preload("ScheduledMeals").First(&sub).Error)
	assert.Equal(t, f.user.ID, sub.UserID)
	assert.Equal(t, f.plan.ID, sub.PlanID)
	assert.Equal(t, []string{"monday", "thursday"}, sub.Days())
	assert.Len(t, sub.ScheduledMeals, 2)

	var user models.User
	require.NoError(t, f.db.First(&user, f.user.ID).Error)
	assert.Equal(t, "12 Sukhumvit Road", user.DeliveryAddress)

	// replaying the form lands on the same order
	resp, _ = b.post("/checkout", form)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get("Location"))
	require.NoError(t, f.db.Model(&models.Subscription{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	resp, body = b.get(location)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Family Table")

	resp, body = b.get("/cart")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "Green Curry")

	resp, body = b.get("/notifications")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, sub.ShortID())
}

func TestUnavailableDishesAreNotScheduled(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.login(f.user.Email)

	resp, _ := b.post("/subscribe/plans", url.Values{"plan_id": {id(f.plan.ID)}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	resp, _ = b.post("/subscribe/meals", url.Values{"meal_ids": {id(f.curry.ID), id(f.salad.ID), id(f.curry.ID)}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/checkout/start", resp.Header.Get("Location"))
	resp, _ = b.get("/checkout/start")
	require.Equal(t, "/checkout", resp.Header.Get("Location"))
	_, body := b.get("/checkout")
	m := submissionTokenRe.FindStringSubmatch(body)
	require.Len(t, m, 2)

	// taken off the menu between draft and submit
	require.NoError(t, f.db.Model(&models.MenuItem{}).Where("id = ?", f.salad.ID).Update("is_available", false).Error)

	resp, _ = b.post("/checkout", url.Values{
		"submit_order":     {"1"},
		"submission_token": {m[1]},
		"delivery_address": {"12 Sukhumvit Road"},
		"city":             {"Bangkok"},
		"zip_code":         {"10110"},
		"payment_method":   {"paypal"},
		"delivery_days":    {"friday"},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var meals []models.ScheduledMeal
	require.NoError(t, f.db.Find(&meals).Error)
	require.Len(t, meals, 1)
	assert.Equal(t, f.curry.ID, meals[0].MenuID)

	// a hand-posted unavailable dish is refused up front
	resp, _ = b.post("/subscribe/meals", url.Values{"meal_ids": {id(f.salad.ID)}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/subscribe/meals", resp.Header.Get("Location"))
}

func TestOrderActionsFollowLifecycle(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	b.login(f.user.Email)

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sub := models.Subscription{ID: "7c1e5a3e-9b8d-4f0a-8a35-6d2b1f0e4c21", UserID: f.user.ID, PlanID: f.plan.ID,
		Status: models.SUBSCRIPTION_ACTIVE, StartDate: now, NextBillingDate: now.AddDate(0, 0, 7),
		BillingCycle: models.BILLING_CYCLE_WEEKLY, TotalAmount: f.plan.Price, AutoRenew: true}
	require.NoError(t, f.db.Omit("Plan", "ScheduledMeals").Create(&sub).Error)

	base := "/orders/" + sub.ID
	resp, body := b.get(base)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, base+"/pause")

	resp, _ = b.post(base+"/pause", nil)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, base, resp.Header.Get("Location"))
	require.NoError(t, f.db.First(&sub, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SUBSCRIPTION_PAUSED, sub.Status)

	resp, _ = b.post(base+"/cancel", nil)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.NoError(t, f.db.First(&sub, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SUBSCRIPTION_CANCELLED, sub.Status)

	// cancelled orders cannot be resumed
	resp, _ = b.post(base+"/resume", nil)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.NoError(t, f.db.First(&sub, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SUBSCRIPTION_CANCELLED, sub.Status)

	// other customers never see the order
	other := f.browser(t)
	other.login(f.admin.Email)
	resp, _ = other.get(base)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
