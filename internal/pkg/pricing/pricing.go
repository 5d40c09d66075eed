// Package pricing turns a cart into a price breakdown. It is pure: the same
// lines and config always give the same result and nothing is rounded until
// a value is formatted.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/BaanBox/internal/pkg/cart"
	"github.com/ManuelReschke/BaanBox/internal/pkg/env"
)

// Config holds the surcharges, delivery rule and tax rate.
type Config struct {
	ExtraProteinSurcharge    decimal.Decimal
	ExtraVegetablesSurcharge decimal.Decimal
	FreeDeliveryThreshold    decimal.Decimal
	FlatDeliveryFee          decimal.Decimal
	TaxRate                  decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		ExtraProteinSurcharge:    decimal.RequireFromString("2.99"),
		ExtraVegetablesSurcharge: decimal.RequireFromString("1.99"),
		FreeDeliveryThreshold:    decimal.RequireFromString("25.00"),
		FlatDeliveryFee:          decimal.RequireFromString("3.99"),
		TaxRate:                  decimal.RequireFromString("0.0825"),
	}
}

// ConfigFromEnv starts from the defaults and applies PRICING_* overrides.
func ConfigFromEnv() Config {
	d := DefaultConfig()
	return Config{
		ExtraProteinSurcharge:    env.GetEnvDecimal("PRICING_EXTRA_PROTEIN", d.ExtraProteinSurcharge),
		ExtraVegetablesSurcharge: env.GetEnvDecimal("PRICING_EXTRA_VEGETABLES", d.ExtraVegetablesSurcharge),
		FreeDeliveryThreshold:    env.GetEnvDecimal("PRICING_FREE_DELIVERY_THRESHOLD", d.FreeDeliveryThreshold),
		FlatDeliveryFee:          env.GetEnvDecimal("PRICING_DELIVERY_FEE", d.FlatDeliveryFee),
		TaxRate:                  env.GetEnvDecimal("PRICING_TAX_RATE", d.TaxRate),
	}
}

type LineBreakdown struct {
	Index       int             `json:"index"`
	MenuID      uint            `json:"menu_id"`
	DisplayName string          `json:"display_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineBase    decimal.Decimal `json:"line_base"`
	Extras      decimal.Decimal `json:"extras"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Breakdown is derived on every cart view and never stored on its own.
// Subtotal already contains the extras; ExtrasTotal is shown separately.
type Breakdown struct {
	Lines       []LineBreakdown `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ExtrasTotal decimal.Decimal `json:"extras_total"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	// AmountToFreeDelivery is zero once the threshold is reached.
	AmountToFreeDelivery decimal.Decimal `json:"amount_to_free_delivery"`
}

func (b Breakdown) FreeDelivery() bool {
	return b.ItemCount > 0 && b.DeliveryFee.IsZero()
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Price computes the breakdown for lines. An empty cart costs nothing,
// including delivery.
func (e *Engine) Price(lines []cart.Line) Breakdown {
	b := Breakdown{
		Lines:                make([]LineBreakdown, 0, len(lines)),
		Subtotal:             decimal.Zero,
		ExtrasTotal:          decimal.Zero,
		DeliveryFee:          decimal.Zero,
		TaxAmount:            decimal.Zero,
		Total:                decimal.Zero,
		AmountToFreeDelivery: decimal.Zero,
	}

	for i, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		base := l.UnitPrice.Mul(qty)
		extras := e.surcharge(l.Customizations).Mul(qty)
		lineTotal := base.Add(extras)

		b.Lines = append(b.Lines, LineBreakdown{
			Index:       i,
			MenuID:      l.MenuID,
			DisplayName: l.DisplayName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineBase:    base,
			Extras:      extras,
			LineTotal:   lineTotal,
		})
		b.Subtotal = b.Subtotal.Add(lineTotal)
		b.ExtrasTotal = b.ExtrasTotal.Add(extras)
		b.ItemCount += l.Quantity
	}

	if len(lines) == 0 {
		return b
	}

	if b.Subtotal.LessThan(e.cfg.FreeDeliveryThreshold) {
		b.DeliveryFee = e.cfg.FlatDeliveryFee
		b.AmountToFreeDelivery = e.cfg.FreeDeliveryThreshold.Sub(b.Subtotal)
	}
	b.TaxAmount = b.Subtotal.Mul(e.cfg.TaxRate)
	b.Total = b.Subtotal.Add(b.DeliveryFee).Add(b.TaxAmount)

	return b
}

func (e *Engine) surcharge(c cart.Customizations) decimal.Decimal {
	s := decimal.Zero
	if c.ExtraProtein {
		s = s.Add(e.cfg.ExtraProteinSurcharge)
	}
	if c.ExtraVegetables {
		s = s.Add(e.cfg.ExtraVegetablesSurcharge)
	}
	return s
}

// Format rounds half away from zero to two places, which is half-up for
// the non-negative amounts used here.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Round returns the two-place value that gets displayed and persisted.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
