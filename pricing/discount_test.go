package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func amount(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestApplyDiscountBranches(t *testing.T) {
	cases := []struct {
		name    string
		price   string
		flagged bool
		amount  *decimal.Decimal
		want    string
	}{
		{"fraction", "1000", true, amount("0.2"), "800"},
		{"absolute", "1000", true, amount("200"), "800"},
		{"absolute above price floors at zero", "1000", true, amount("1200"), "0"},
		{"exactly one is a full fraction", "1000", true, amount("1"), "0"},
		{"zero amount", "1000", true, amount("0"), "1000"},
		{"not flagged", "1000", false, amount("0.2"), "1000"},
		{"nil amount", "1000", true, nil, "1000"},
		{"negative amount fails closed", "1000", true, amount("-5"), "1000"},
		{"fraction rounds to cents", "99.99", true, amount("0.333"), "66.69"},
	}
	for _, tc := range cases {
		got := ApplyDiscount(dec(tc.price), tc.flagged, tc.amount)
		if !got.Equal(dec(tc.want)) {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestTypedDiscountConstructors(t *testing.T) {
	if _, err := FractionDiscount(dec("1.5")); !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount for fraction 1.5, got %v", err)
	}
	if _, err := AbsoluteDiscount(dec("-1")); !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount for negative absolute, got %v", err)
	}
	d, err := AbsoluteDiscount(dec("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a typed one-unit discount is not mistaken for 100%
	if got := d.Apply(dec("1000")); !got.Equal(dec("999")) {
		t.Fatalf("expected 999, got %s", got)
	}
}

func TestParseLegacyDiscount(t *testing.T) {
	cases := []struct {
		raw  string
		kind DiscountKind
		val  string
	}{
		{"", DiscountNone, "0"},
		{"0.15", DiscountFraction, "0.15"},
		{"0,5", DiscountFraction, "0.5"},
		{" 250 ", DiscountAbsolute, "250"},
	}
	for _, tc := range cases {
		d, err := ParseLegacyDiscount(tc.raw)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.raw, err)
		}
		if d.Kind != tc.kind || !d.Value.Equal(dec(tc.val)) {
			t.Fatalf("%q: got %s %s", tc.raw, d.Kind, d.Value)
		}
	}
	if _, err := ParseLegacyDiscount("ten percent"); !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount, got %v", err)
	}
}
