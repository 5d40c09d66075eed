package models

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BILLING_CYCLE_WEEKLY  = "weekly"
	BILLING_CYCLE_MONTHLY = "monthly"
)

var ErrInvalidPrice = errors.New("price must be greater than zero")

var hundred = decimal.NewFromInt(100)

// SubscriptionPlan is a purchasable meal plan (e.g. 5 meals per week).
type SubscriptionPlan struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Description     string          `gorm:"type:text" json:"description"`
	MealsPerWeek    int             `gorm:"not null" json:"meals_per_week" validate:"min=1,max=21"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount_percent"`
	BillingCycle    string          `gorm:"type:varchar(20);default:'weekly'" json:"billing_cycle" validate:"oneof=weekly monthly"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	SortOrder       int             `gorm:"default:0" json:"sort_order"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *SubscriptionPlan) Validate() error {
	v := validator.New()
	if err := v.Struct(p); err != nil {
		return err
	}
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(hundred) {
		return errors.New("discount percent must be between 0 and 100")
	}
	return nil
}

// FinalPrice is the discounted price per billing cycle, rounded to cents.
func (p *SubscriptionPlan) FinalPrice() decimal.Decimal {
	factor := hundred.Sub(p.DiscountPercent).Div(hundred)
	return p.Price.Mul(factor).Round(2)
}

// Savings is what the discount takes off the list price.
func (p *SubscriptionPlan) Savings() decimal.Decimal {
	return p.Price.Sub(p.FinalPrice())
}

// PricePerMeal spreads the weekly price over the meals of one week.
func (p *SubscriptionPlan) PricePerMeal() decimal.Decimal {
	if p.MealsPerWeek <= 0 {
		return decimal.Zero
	}
	weekly := p.FinalPrice()
	if p.BillingCycle == BILLING_CYCLE_MONTHLY {
		weekly = weekly.Div(decimal.NewFromInt(4))
	}
	return weekly.Div(decimal.NewFromInt(int64(p.MealsPerWeek))).Round(2)
}
