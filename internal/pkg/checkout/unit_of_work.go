package checkout

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/BaanBox/app/models"
)

var ErrUserNotFound = errors.New("user not found")

// Tx is the set of writes an order commit performs. All of them run inside
// one transaction opened by a UnitOfWork.
type Tx interface {
	CreateSubscription(sub *models.Subscription) error
	CreatePayment(p *models.Payment) error
	AvailableMenuIDs(ids []uint) (map[uint]bool, error)
	CreateScheduledMeals(meals []models.ScheduledMeal) error
	UpdateUserAddress(userID uint, addr models.DeliveryAddress) error
}

// UnitOfWork runs fn in a transaction. A returned error or a cancelled ctx
// rolls back every write fn made.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}

type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(tx Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) CreateSubscription(sub *models.Subscription) error {
	return t.db.Omit(clause.Associations).Create(sub).Error
}

func (t *gormTx) CreatePayment(p *models.Payment) error {
	return t.db.Create(p).Error
}

// AvailableMenuIDs reports which of ids are still on the menu. Deleted and
// unavailable dishes count as missing.
func (t *gormTx) AvailableMenuIDs(ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var existing []uint
	if err := t.db.Model(&models.MenuItem{}).Where("id IN ? AND is_available = ?", ids, true).Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

func (t *gormTx) CreateScheduledMeals(meals []models.ScheduledMeal) error {
	if len(meals) == 0 {
		return nil
	}
	return t.db.Omit(clause.Associations).Create(&meals).Error
}

func (t *gormTx) UpdateUserAddress(userID uint, addr models.DeliveryAddress) error {
	var user models.User
	err := t.db.Select("id").Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	return t.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"delivery_address":      addr.Street,
		"city":                  addr.City,
		"zip_code":              addr.ZipCode,
		"delivery_instructions": addr.Instructions,
	}).Error
}
