package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidDiscount = errors.New("pricing: invalid discount")

type DiscountKind uint8

const (
	DiscountNone DiscountKind = iota
	DiscountFraction
	DiscountAbsolute
)

func (k DiscountKind) String() string {
	switch k {
	case DiscountFraction:
		return "fraction"
	case DiscountAbsolute:
		return "absolute"
	default:
		return "none"
	}
}

// Discount is either a share of the night price (0..1) or a flat amount.
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

func FractionDiscount(v decimal.Decimal) (Discount, error) {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return Discount{}, fmt.Errorf("%w: fraction %s outside [0, 1]", ErrInvalidDiscount, v)
	}
	return Discount{Kind: DiscountFraction, Value: v}, nil
}

func AbsoluteDiscount(v decimal.Decimal) (Discount, error) {
	if v.IsNegative() {
		return Discount{}, fmt.Errorf("%w: negative amount %s", ErrInvalidDiscount, v)
	}
	return Discount{Kind: DiscountAbsolute, Value: v}, nil
}

// LegacyDiscount reads a single stored amount the old way: values up to 1 are a
// fraction, anything above is a currency amount. An amount of exactly 1 is read
// as a 100% discount.
func LegacyDiscount(amount decimal.Decimal) (Discount, error) {
	if amount.LessThanOrEqual(decimal.NewFromInt(1)) {
		return FractionDiscount(amount)
	}
	return AbsoluteDiscount(amount)
}

// ParseLegacyDiscount parses the legacy discount_amount column. Blank means no discount.
func ParseLegacyDiscount(raw string) (Discount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Discount{}, nil
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return Discount{}, fmt.Errorf("%w: %q", ErrInvalidDiscount, raw)
	}
	return LegacyDiscount(amount)
}

func (d Discount) IsZero() bool {
	return d.Kind == DiscountNone || d.Value.IsZero()
}

// Apply returns the discounted price, never below zero.
func (d Discount) Apply(price decimal.Decimal) decimal.Decimal {
	var out decimal.Decimal
	switch d.Kind {
	case DiscountFraction:
		out = price.Mul(decimal.NewFromInt(1).Sub(d.Value))
	case DiscountAbsolute:
		out = price.Sub(d.Value)
	default:
		return price
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out.Round(2)
}

// ApplyDiscount is the single-field entry point kept for stored legacy data.
// Malformed amounts leave the price unchanged.
func ApplyDiscount(nightPrice decimal.Decimal, flagged bool, amount *decimal.Decimal) decimal.Decimal {
	if !flagged || amount == nil {
		return nightPrice
	}
	d, err := LegacyDiscount(*amount)
	if err != nil {
		return nightPrice
	}
	return d.Apply(nightPrice)
}
