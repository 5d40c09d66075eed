// Package statistics caches the storefront counters shown on the home page
// and the admin dashboard.
package statistics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cache"
)

const (
	CacheKeyActiveSubscriptions = "statistics:subscriptions:active"
	CacheKeyMealsDelivered      = "statistics:meals:delivered"
	CacheKeyCustomers           = "statistics:customers:total"
	CacheExpiration             = 30 * time.Minute
)

// StatisticsData holds the counters of the home page.
type StatisticsData struct {
	ActiveSubscriptions int
	MealsDelivered      int
	Customers           int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached counters are older than the update interval.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()
	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

func UpdateCacheIfNeeded(orders repository.OrderRepository) {
	if !ShouldUpdateCache() {
		return
	}
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	if err := UpdateStatisticsCache(orders); err != nil {
		log.Warnf("[Statistics] cache update failed: %v", err)
		return
	}
	lastCacheUpdate = time.Now()
}

// ResetCacheUpdateTimer forces the next read to refresh the counters.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()
	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recounts everything and stores it in the cache.
func UpdateStatisticsCache(orders repository.OrderRepository) error {
	active, err := orders.CountByStatus(models.SUBSCRIPTION_ACTIVE)
	if err != nil {
		return err
	}
	delivered, err := orders.CountMeals(models.MEAL_DELIVERED)
	if err != nil {
		return err
	}
	customers, err := orders.CountCustomers()
	if err != nil {
		return err
	}

	for key, val := range map[string]int64{
		CacheKeyActiveSubscriptions: active,
		CacheKeyMealsDelivered:      delivered,
		CacheKeyCustomers:           customers,
	} {
		if err := cache.Set(key, strconv.FormatInt(val, 10), CacheExpiration); err != nil {
			return err
		}
	}

	log.Debugf("[Statistics] active subscriptions: %d, meals delivered: %d, customers: %d", active, delivered, customers)
	return nil
}

// cachedCount reads key from the cache and falls back to count on a miss.
func cachedCount(key string, count func() (int64, error)) int {
	if n, err := cache.GetInt(key); err == nil {
		return n
	}
	n, err := count()
	if err != nil {
		log.Warnf("[Statistics] count for %s failed: %v", key, err)
		return 0
	}
	if err := cache.Set(key, strconv.FormatInt(n, 10), CacheExpiration); err != nil {
		log.Warnf("[Statistics] caching %s failed: %v", key, err)
	}
	return int(n)
}

func GetStatisticsData(orders repository.OrderRepository) StatisticsData {
	UpdateCacheIfNeeded(orders)

	return StatisticsData{
		ActiveSubscriptions: cachedCount(CacheKeyActiveSubscriptions, func() (int64, error) {
			return orders.CountByStatus(models.SUBSCRIPTION_ACTIVE)
		}),
		MealsDelivered: cachedCount(CacheKeyMealsDelivered, func() (int64, error) {
			return orders.CountMeals(models.MEAL_DELIVERED)
		}),
		Customers: cachedCount(CacheKeyCustomers, orders.CountCustomers),
	}
}
