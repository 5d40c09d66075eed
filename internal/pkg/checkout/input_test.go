package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsCompleteForm(t *testing.T) {
	in := validInput()
	in.Normalize()
	assert.Empty(t, in.Validate())
}

func TestValidateMissingDeliveryDaysGivesOneMessage(t *testing.T) {
	in := validInput()
	in.DeliveryDays = nil
	in.Normalize()

	assert.Equal(t, []string{"Please select at least one delivery day."}, in.Validate())
}

func TestValidateEmptyFormListsEveryMissingField(t *testing.T) {
	in := Input{}
	in.Normalize()

	assert.Equal(t, []string{
		"Delivery address is required.",
		"City is required.",
		"ZIP code is required.",
		"Please choose a payment method.",
		"Please select at least one delivery day.",
	}, in.Validate())
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	in := validInput()
	in.PaymentMethod = "bitcoin"
	in.DeliveryDays = []string{"monday", "funday", "someday"}
	in.PreferredTime = "midnight"
	in.Normalize()

	assert.Equal(t, []string{
		"Please choose a valid payment method.",
		"Please select valid delivery days.",
		"Please choose a valid delivery time.",
	}, in.Validate())
}

func TestNormalizeTrimsAndLowercases(t *testing.T) {
	in := Input{
		DeliveryAddress: "  12 Soi Sukhumvit ",
		PaymentMethod:   " PayPal",
		DeliveryDays:    []string{" Monday", "", "  "},
		PreferredTime:   "Morning ",
	}
	in.Normalize()

	assert.Equal(t, "12 Soi Sukhumvit", in.DeliveryAddress)
	assert.Equal(t, "paypal", in.PaymentMethod)
	assert.Equal(t, []string{"monday"}, in.DeliveryDays)
	assert.Equal(t, "morning", in.PreferredTime)
	assert.True(t, in.HasDay("monday"))
	assert.False(t, in.HasDay("friday"))
}

func TestValidateWhitespaceOnlyFieldsAreMissing(t *testing.T) {
	in := validInput()
	in.City = "   "
	in.Normalize()

	assert.Equal(t, []string{"City is required."}, in.Validate())
}
