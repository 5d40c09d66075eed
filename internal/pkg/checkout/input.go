package checkout

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/BaanBox/app/models"
)

// Input is the posted checkout form.
type Input struct {
	DeliveryAddress      string   `form:"delivery_address" validate:"required,max=255"`
	City                 string   `form:"city" validate:"required,max=100"`
	ZipCode              string   `form:"zip_code" validate:"required,max=20"`
	PaymentMethod        string   `form:"payment_method" validate:"required,oneof=credit_card paypal bank_transfer cash_on_delivery"`
	DeliveryDays         []string `form:"delivery_days" validate:"min=1,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	PreferredTime        string   `form:"preferred_time" validate:"omitempty,oneof=morning afternoon evening"`
	DeliveryInstructions string   `form:"delivery_instructions" validate:"max=500"`
	SubmitToken          string   `form:"submission_token"`
}

var validate = validator.New()

// fieldMessages maps a field and failed tag to the message shown next to the form.
var fieldMessages = map[string]map[string]string{
	"DeliveryAddress":      {"required": "Delivery address is required.", "max": "Delivery address is too long."},
	"City":                 {"required": "City is required.", "max": "City is too long."},
	"ZipCode":              {"required": "ZIP code is required.", "max": "ZIP code is too long."},
	"PaymentMethod":        {"required": "Please choose a payment method.", "oneof": "Please choose a valid payment method."},
	"DeliveryDays":         {"min": "Please select at least one delivery day.", "oneof": "Please select valid delivery days."},
	"PreferredTime":        {"oneof": "Please choose a valid delivery time."},
	"DeliveryInstructions": {"max": "Delivery instructions must be 500 characters or fewer."},
}

// Normalize trims text fields and lower-cases the token fields.
func (in *Input) Normalize() {
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	in.City = strings.TrimSpace(in.City)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	in.PreferredTime = strings.ToLower(strings.TrimSpace(in.PreferredTime))
	in.DeliveryInstructions = strings.TrimSpace(in.DeliveryInstructions)
	in.SubmitToken = strings.TrimSpace(in.SubmitToken)

	days := make([]string, 0, len(in.DeliveryDays))
	for _, d := range in.DeliveryDays {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			days = append(days, d)
		}
	}
	in.DeliveryDays = days
}

// Validate returns one message per invalid field, in form order.
func (in Input) Validate() []string {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"The checkout form could not be read."}
	}

	seen := make(map[string]bool, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.StructField()
		// dive errors are reported as DeliveryDays[2]
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		msg, ok := fieldMessages[field][fe.Tag()]
		if !ok {
			msg = "Please check " + strings.ToLower(fe.Field()) + "."
		}
		messages = append(messages, msg)
	}
	return messages
}

// Address is the delivery address that gets written back to the user.
func (in Input) Address() models.DeliveryAddress {
	return models.DeliveryAddress{
		Street:       in.DeliveryAddress,
		City:         in.City,
		ZipCode:      in.ZipCode,
		Instructions: in.DeliveryInstructions,
	}
}

// HasDay is used by the form to keep checkboxes ticked after a rejected submit.
func (in Input) HasDay(day string) bool {
	for _, d := range in.DeliveryDays {
		if d == day {
			return true
		}
	}
	return false
}
