package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MenuCategoryCurry    = "curry"
	MenuCategoryNoodles  = "noodles"
	MenuCategoryRice     = "rice"
	MenuCategorySalad    = "salad"
	MenuCategorySoup     = "soup"
	MenuCategoryStarter  = "starter"
	MenuCategoryDessert  = "dessert"
	MenuCategoryBeverage = "beverage"
)

// MenuItem is a dish on the menu. Nutrition values are per portion.
type MenuItem struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Name              string          `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	ThaiName          string          `gorm:"type:varchar(150);default:null" json:"thai_name" validate:"max=150"`
	Description       string          `gorm:"type:text" json:"description" validate:"max=2000"`
	Category          string          `gorm:"type:varchar(50);index" json:"category" validate:"required,oneof=curry noodles rice salad soup starter dessert beverage"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DefaultSpiceLevel string          `gorm:"type:varchar(20);default:'medium'" json:"default_spice_level"`
	IsVegetarian      bool            `gorm:"default:false" json:"is_vegetarian"`
	Calories          int             `gorm:"default:0" json:"calories"`
	ProteinGrams      int             `gorm:"default:0" json:"protein_grams"`
	CarbsGrams        int             `gorm:"default:0" json:"carbs_grams"`
	FatGrams          int             `gorm:"default:0" json:"fat_grams"`
	ImageURL          string          `gorm:"type:varchar(255);default:null" json:"image_url"`
	IsAvailable       bool            `gorm:"default:true;index" json:"is_available"`
	Popularity        int64           `gorm:"default:0" json:"popularity"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (m *MenuItem) Validate() error {
	v := validator.New()
	if err := v.Struct(m); err != nil {
		return err
	}
	if !m.Price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}
