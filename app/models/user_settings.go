package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	SPICE_MILD     = "mild"
	SPICE_MEDIUM   = "medium"
	SPICE_HOT      = "hot"
	SPICE_THAI_HOT = "thai_hot"
)

// UserSettings stores per-user taste and delivery preferences. They prefill
// the dish customization form and the checkout form.
type UserSettings struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	UserID                uint           `gorm:"uniqueIndex" json:"user_id"`
	DefaultSpiceLevel     string         `gorm:"type:varchar(20);default:'medium'" json:"default_spice_level"`
	NoCoriander           bool           `gorm:"default:false" json:"no_coriander"`
	Vegetarian            bool           `gorm:"default:false" json:"vegetarian"`
	PreferredDeliveryTime string         `gorm:"type:varchar(30);default:null" json:"preferred_delivery_time"`
	OrderEmails           bool           `gorm:"default:true" json:"order_emails"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

// GetOrCreateUserSettings returns existing settings or creates defaults
func GetOrCreateUserSettings(db *gorm.DB, userID uint) (*UserSettings, error) {
	var us UserSettings
	err := db.Where("user_id = ?", userID).First(&us).Error
	if err == nil {
		return &us, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	us = UserSettings{UserID: userID, DefaultSpiceLevel: SPICE_MEDIUM, OrderEmails: true}
	if err := db.Create(&us).Error; err != nil {
		return nil, err
	}
	return &us, nil
}

// SetSpiceLevel stores level when it is one of the known levels.
func (us *UserSettings) SetSpiceLevel(level string) bool {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case SPICE_MILD, SPICE_MEDIUM, SPICE_HOT, SPICE_THAI_HOT:
		us.DefaultSpiceLevel = l
		return true
	default:
		return false
	}
}

// SetPreferredDeliveryTime accepts morning, afternoon, evening or empty.
func (us *UserSettings) SetPreferredDeliveryTime(slot string) bool {
	switch s := strings.ToLower(strings.TrimSpace(slot)); s {
	case "", "morning", "afternoon", "evening":
		us.PreferredDeliveryTime = s
		return true
	default:
		return false
	}
}
