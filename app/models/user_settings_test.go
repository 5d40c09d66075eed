package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserSettingsSetSpiceLevel(t *testing.T) {
	us := &UserSettings{UserID: 1, DefaultSpiceLevel: SPICE_MEDIUM}

	assert.True(t, us.SetSpiceLevel(" Thai_Hot "))
	assert.Equal(t, SPICE_THAI_HOT, us.DefaultSpiceLevel)

	assert.False(t, us.SetSpiceLevel("volcanic"))
	assert.Equal(t, SPICE_THAI_HOT, us.DefaultSpiceLevel)
}

func TestUserSettingsSetPreferredDeliveryTime(t *testing.T) {
	us := &UserSettings{UserID: 99}

	assert.True(t, us.SetPreferredDeliveryTime("Evening"))
	assert.Equal(t, "evening", us.PreferredDeliveryTime)
	assert.True(t, us.SetPreferredDeliveryTime(""))
	assert.Equal(t, "", us.PreferredDeliveryTime)
	assert.False(t, us.SetPreferredDeliveryTime("midnight"))
}
