package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cache"
)

const (
	MenuCacheTTL = 5 * time.Minute
	menuCacheKey = "menu:available"
)

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

// List returns the available dishes, optionally of one category.
func (r *menuRepository) List(ctx context.Context, category string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	q := r.db.WithContext(ctx).Where("is_available = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("category ASC").Order("popularity DESC").Order("name ASC").Find(&items).Error
	return items, err
}

func (r *menuRepository) ListAll(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).Order("category ASC").Order("name ASC").Find(&items).Error
	return items, err
}

func (r *menuRepository) GetByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIDs loads exactly the given ids. Unknown ids are left out, the
// result order is not defined.
func (r *menuRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.MenuItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *menuRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("is_available = ?", true).
		Distinct().Order("category ASC").Pluck("category", &cats).Error
	return cats, err
}

func (r *menuRepository) Create(item *models.MenuItem) error {
	return r.db.Create(item).Error
}

func (r *menuRepository) Update(item *models.MenuItem) error {
	return r.db.Save(item).Error
}

func (r *menuRepository) Delete(id uint) error {
	return r.db.Delete(&models.MenuItem{}, id).Error
}

func (r *menuRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.MenuItem{}).Count(&count).Error
	return count, err
}

func (r *menuRepository) AddPopularity(id uint, delta int64) error {
	return r.db.Model(&models.MenuItem{}).Where("id = ?", id).
		UpdateColumn("popularity", gorm.Expr("popularity + ?", delta)).Error
}

// cachedMenuRepository keeps the available menu in Redis. Writes drop the
// cached copy; the cache is never the source of truth.
type cachedMenuRepository struct {
	MenuRepository
	ttl time.Duration
}

func NewCachedMenuRepository(inner MenuRepository, ttl time.Duration) MenuRepository {
	return &cachedMenuRepository{MenuRepository: inner, ttl: ttl}
}

func (r *cachedMenuRepository) available(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := cache.GetJSON(ctx, menuCacheKey, &items)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warnf("[Cache] menu read failed, falling back to database: %v", err)
	}

	items, err = r.MenuRepository.List(ctx, "")
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, menuCacheKey, items, r.ttl); err != nil {
		log.Warnf("[Cache] menu write failed: %v", err)
	}
	return items, nil
}

func (r *cachedMenuRepository) List(ctx context.Context, category string) ([]models.MenuItem, error) {
	items, err := r.available(ctx)
	if err != nil || category == "" {
		return items, err
	}
	out := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *cachedMenuRepository) Categories(ctx context.Context) ([]string, error) {
	items, err := r.available(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var cats []string
	for _, it := range items {
		if !seen[it.Category] {
			seen[it.Category] = true
			cats = append(cats, it.Category)
		}
	}
	sort.Strings(cats)
	return cats, nil
}

func (r *cachedMenuRepository) invalidate(err error) error {
	if err != nil {
		return err
	}
	if derr := cache.Delete(menuCacheKey); derr != nil {
		log.Warnf("[Cache] menu invalidation failed: %v", derr)
	}
	return nil
}

func (r *cachedMenuRepository) Create(item *models.MenuItem) error {
	return r.invalidate(r.MenuRepository.Create(item))
}

func (r *cachedMenuRepository) Update(item *models.MenuItem) error {
	return r.invalidate(r.MenuRepository.Update(item))
}

func (r *cachedMenuRepository) Delete(id uint) error {
	return r.invalidate(r.MenuRepository.Delete(id))
}
