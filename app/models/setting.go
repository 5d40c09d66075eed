package models

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
)

// Setting is one key/value row in the settings table
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key" validate:"required,min=1,max=255"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:50;not null" json:"type" validate:"required"` // string, boolean, decimal
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppSettings are the store-wide settings editable in the admin area. The
// pricing values feed the pricing engine on every cart view.
type AppSettings struct {
	SiteTitle                string          `json:"site_title" validate:"required,min=1,max=255"`
	SiteDescription          string          `json:"site_description" validate:"max=500"`
	OrderingEnabled          bool            `json:"ordering_enabled"`
	ExtraProteinSurcharge    decimal.Decimal `json:"extra_protein_surcharge"`
	ExtraVegetablesSurcharge decimal.Decimal `json:"extra_vegetables_surcharge"`
	FreeDeliveryThreshold    decimal.Decimal `json:"free_delivery_threshold"`
	FlatDeliveryFee          decimal.Decimal `json:"flat_delivery_fee"`
	TaxRate                  decimal.Decimal `json:"tax_rate"`
}

var (
	appSettings *AppSettings
	settingsMu  sync.RWMutex
)

// DefaultAppSettings applies until an admin saves the settings page. Pricing
// starts from the PRICING_* environment.
func DefaultAppSettings() *AppSettings {
	cfg := pricing.ConfigFromEnv()
	return &AppSettings{
		SiteTitle:                "BaanBox",
		SiteDescription:          "Thai home cooking, delivered weekly",
		OrderingEnabled:          true,
		ExtraProteinSurcharge:    cfg.ExtraProteinSurcharge,
		ExtraVegetablesSurcharge: cfg.ExtraVegetablesSurcharge,
		FreeDeliveryThreshold:    cfg.FreeDeliveryThreshold,
		FlatDeliveryFee:          cfg.FlatDeliveryFee,
		TaxRate:                  cfg.TaxRate,
	}
}

// PricingConfig is the pricing engine configuration these settings describe.
func (s *AppSettings) PricingConfig() pricing.Config {
	return pricing.Config{
		ExtraProteinSurcharge:    s.ExtraProteinSurcharge,
		ExtraVegetablesSurcharge: s.ExtraVegetablesSurcharge,
		FreeDeliveryThreshold:    s.FreeDeliveryThreshold,
		FlatDeliveryFee:          s.FlatDeliveryFee,
		TaxRate:                  s.TaxRate,
	}
}

// GetAppSettings returns the loaded settings, or the defaults before LoadSettings ran.
func GetAppSettings() *AppSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if appSettings == nil {
		return DefaultAppSettings()
	}
	copied := *appSettings
	return &copied
}

// LoadSettings loads settings from database into memory
func LoadSettings(db *gorm.DB) error {
	loaded := DefaultAppSettings()

	var settings []Setting
	if err := db.Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	for _, setting := range settings {
		applySetting(loaded, setting.Key, setting.Value)
	}

	settingsMu.Lock()
	appSettings = loaded
	settingsMu.Unlock()
	return nil
}

func applySetting(s *AppSettings, key, value string) {
	parseDecimal := func(dst *decimal.Decimal) {
		if d, err := decimal.NewFromString(value); err == nil && !d.IsNegative() {
			*dst = d
		}
	}

	switch key {
	case "site_title":
		s.SiteTitle = value
	case "site_description":
		s.SiteDescription = value
	case "ordering_enabled":
		s.OrderingEnabled = value == "true"
	case "extra_protein_surcharge":
		parseDecimal(&s.ExtraProteinSurcharge)
	case "extra_vegetables_surcharge":
		parseDecimal(&s.ExtraVegetablesSurcharge)
	case "free_delivery_threshold":
		parseDecimal(&s.FreeDeliveryThreshold)
	case "flat_delivery_fee":
		parseDecimal(&s.FlatDeliveryFee)
	case "tax_rate":
		parseDecimal(&s.TaxRate)
	}
}

// SaveSettings saves current settings to database
func SaveSettings(db *gorm.DB, settings *AppSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	settingsMap := map[string]string{
		"site_title":                 settings.SiteTitle,
		"site_description":           settings.SiteDescription,
		"ordering_enabled":           fmt.Sprintf("%t", settings.OrderingEnabled),
		"extra_protein_surcharge":    settings.ExtraProteinSurcharge.String(),
		"extra_vegetables_surcharge": settings.ExtraVegetablesSurcharge.String(),
		"free_delivery_threshold":    settings.FreeDeliveryThreshold.String(),
		"flat_delivery_fee":          settings.FlatDeliveryFee.String(),
		"tax_rate":                   settings.TaxRate.String(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for key, value := range settingsMap {
			var setting Setting
			result := tx.Where("setting_key = ?", key).First(&setting)
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				setting = Setting{Key: key, Value: value, Type: SettingType(key)}
				if err := tx.Create(&setting).Error; err != nil {
					return fmt.Errorf("failed to create setting %s: %w", key, err)
				}
				continue
			}
			if result.Error != nil {
				return fmt.Errorf("failed to query setting %s: %w", key, result.Error)
			}
			setting.Value = value
			if err := tx.Save(&setting).Error; err != nil {
				return fmt.Errorf("failed to update setting %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	settingsMu.Lock()
	copied := *settings
	appSettings = &copied
	settingsMu.Unlock()
	return nil
}

// SettingType is the type column stored next to a setting key.
func SettingType(key string) string {
	switch key {
	case "ordering_enabled":
		return "boolean"
	case "extra_protein_surcharge", "extra_vegetables_surcharge", "free_delivery_threshold", "flat_delivery_fee", "tax_rate":
		return "decimal"
	default:
		return "string"
	}
}

// Validate validates the settings
func (s *AppSettings) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return err
	}
	for _, d := range []decimal.Decimal{s.ExtraProteinSurcharge, s.ExtraVegetablesSurcharge, s.FreeDeliveryThreshold, s.FlatDeliveryFee, s.TaxRate} {
		if d.IsNegative() {
			return errors.New("pricing values must not be negative")
		}
	}
	if s.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.New("tax rate must be a fraction below 1")
	}
	return nil
}
