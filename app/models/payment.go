package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PAYMENT_COMPLETED = "completed"
	PAYMENT_PENDING   = "pending"
	PAYMENT_FAILED    = "failed"
	PAYMENT_REFUNDED  = "refunded"
)

// Payment methods offered at checkout. No gateway is called, the payment is
// recorded as completed when the order commits.
const (
	PAYMENT_METHOD_CARD          = "credit_card"
	PAYMENT_METHOD_PAYPAL        = "paypal"
	PAYMENT_METHOD_BANK_TRANSFER = "bank_transfer"
	PAYMENT_METHOD_CASH          = "cash_on_delivery"
)

// Payment belongs to exactly one subscription.
type Payment struct {
	ID                 string          `gorm:"type:char(36);primaryKey" json:"id"`
	SubscriptionID     string          `gorm:"type:char(36);uniqueIndex;not null" json:"subscription_id"`
	UserID             uint            `gorm:"index;not null" json:"user_id"`
	PaymentMethod      string          `gorm:"type:varchar(30);not null" json:"payment_method"`
	TransactionID      string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"`
	Amount             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency           string          `gorm:"type:varchar(3);not null" json:"currency"`
	NetAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"net_amount"`
	Status             string          `gorm:"type:varchar(20);not null" json:"status"`
	PaymentDate        time.Time       `json:"payment_date"`
	BillingPeriodStart time.Time       `json:"billing_period_start"`
	BillingPeriodEnd   time.Time       `json:"billing_period_end"`
	Description        string          `gorm:"type:varchar(255)" json:"description"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// PaymentMethodLabel is the human label shown on the order pages.
func PaymentMethodLabel(method string) string {
	switch method {
	case PAYMENT_METHOD_CARD:
		return "Credit card"
	case PAYMENT_METHOD_PAYPAL:
		return "PayPal"
	case PAYMENT_METHOD_BANK_TRANSFER:
		return "Bank transfer"
	case PAYMENT_METHOD_CASH:
		return "Cash on delivery"
	default:
		return method
	}
}
