// Package cart holds the per-session shopping cart: an ordered list of line
// items that is never merged and always re-packed after removal.
package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

const (
	SpiceMild    = "mild"
	SpiceMedium  = "medium"
	SpiceHot     = "hot"
	SpiceThaiHot = "thai_hot"
)

// Outcome tells the caller whether a mutation changed the cart.
type Outcome int

const (
	Applied Outcome = iota
	Ignored
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "ignored"
}

type Customizations struct {
	ExtraProtein    bool   `json:"extra_protein"`
	ExtraVegetables bool   `json:"extra_vegetables"`
	SpiceLevel      string `json:"spice_level"`
	NoCoriander     bool   `json:"no_coriander"`
}

// HasExtras reports whether any surcharged option is selected.
func (c Customizations) HasExtras() bool {
	return c.ExtraProtein || c.ExtraVegetables
}

type Line struct {
	MenuID         uint            `json:"menu_id"`
	DisplayName    string          `json:"display_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Customizations Customizations  `json:"customizations"`
	Note           string          `json:"note"`
}

type Cart struct {
	Lines []Line `json:"lines"`
}

// ClampQuantity forces q into [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// NormalizeSpiceLevel maps free-form input onto a known level, defaulting to medium.
func NormalizeSpiceLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case SpiceMild:
		return SpiceMild
	case SpiceHot:
		return SpiceHot
	case SpiceThaiHot, "thai hot", "thai-hot":
		return SpiceThaiHot
	default:
		return SpiceMedium
	}
}

// Add appends a new line. Identical menu items are kept as separate lines.
func (c *Cart) Add(line Line) Outcome {
	line.Quantity = ClampQuantity(line.Quantity)
	line.Customizations.SpiceLevel = NormalizeSpiceLevel(line.Customizations.SpiceLevel)
	line.Note = strings.TrimSpace(line.Note)
	c.Lines = append(c.Lines, line)
	return Applied
}

func (c *Cart) UpdateQuantity(index, quantity int) Outcome {
	if !c.validIndex(index) {
		return Ignored
	}
	c.Lines[index].Quantity = ClampQuantity(quantity)
	return Applied
}

func (c *Cart) Remove(index int) Outcome {
	if !c.validIndex(index) {
		return Ignored
	}
	lines := make([]Line, 0, len(c.Lines)-1)
	lines = append(lines, c.Lines[:index]...)
	lines = append(lines, c.Lines[index+1:]...)
	c.Lines = lines
	return Applied
}

func (c *Cart) Clear() Outcome {
	c.Lines = nil
	return Applied
}

// List returns a copy so callers cannot mutate the stored lines.
func (c *Cart) List() []Line {
	out := make([]Line, len(c.Lines))
	copy(out, c.Lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.Lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount sums quantities across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// MenuIDs returns the distinct menu ids in first-seen order.
func (c *Cart) MenuIDs() []uint {
	seen := make(map[uint]struct{}, len(c.Lines))
	ids := make([]uint, 0, len(c.Lines))
	for _, l := range c.Lines {
		if _, ok := seen[l.MenuID]; ok {
			continue
		}
		seen[l.MenuID] = struct{}{}
		ids = append(ids, l.MenuID)
	}
	return ids
}

func (c *Cart) validIndex(index int) bool {
	return index >= 0 && index < len(c.Lines)
}
