package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is a board/catering tier a room can be sold with.
type Category string

const (
	NoMeals           Category = "no_meals"
	UltraAllInclusive Category = "ultra_all_inclusive"
	AllInclusive      Category = "all_inclusive"
	FullBoard         Category = "full_board"
	HalfBoard         Category = "half_board"
	BreakfastOnly     Category = "breakfast_only"
)

// Categories lists every tier in response order.
var Categories = []Category{NoMeals, UltraAllInclusive, AllInclusive, FullBoard, HalfBoard, BreakfastOnly}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts the canonical names plus a few spellings used by operators.
// Empty input means NoMeals.
func ParseCategory(raw string) (Category, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "":
		return NoMeals, true
	case "ro", "room_only", "none":
		return NoMeals, true
	case "uai":
		return UltraAllInclusive, true
	case "ai":
		return AllInclusive, true
	case "fb":
		return FullBoard, true
	case "hb":
		return HalfBoard, true
	case "bb", "breakfast":
		return BreakfastOnly, true
	}
	c := Category(s)
	return c, c.Valid()
}

// MealPlan is a tier with a per-person surcharge on top of the room price.
type MealPlan struct {
	Name           string
	Category       Category
	PricePerPerson decimal.Decimal
}

// MealPriceSet holds one nightly price per tier. Tiers the room does not offer are zero.
type MealPriceSet struct {
	NoMeals           decimal.Decimal `json:"no_meals"`
	UltraAllInclusive decimal.Decimal `json:"ultra_all_inclusive"`
	AllInclusive      decimal.Decimal `json:"all_inclusive"`
	FullBoard         decimal.Decimal `json:"full_board"`
	HalfBoard         decimal.Decimal `json:"half_board"`
	BreakfastOnly     decimal.Decimal `json:"breakfast_only"`

	offered map[Category]bool
}

// ComposeMealPrices derives the nightly price of every tier from the room base
// price. no_meals always equals base; an attached tier costs
// base + surcharge*capacity; every other tier is zero.
func ComposeMealPrices(base decimal.Decimal, capacity int, plans []MealPlan) MealPriceSet {
	if base.IsNegative() {
		base = decimal.Zero
	}
	if capacity < 1 {
		capacity = 1
	}
	set := MealPriceSet{
		NoMeals:           base,
		UltraAllInclusive: decimal.Zero,
		AllInclusive:      decimal.Zero,
		FullBoard:         decimal.Zero,
		HalfBoard:         decimal.Zero,
		BreakfastOnly:     decimal.Zero,
		offered:           map[Category]bool{NoMeals: true},
	}
	occupancy := decimal.NewFromInt(int64(capacity))
	for _, plan := range plans {
		if !plan.Category.Valid() || plan.Category == NoMeals {
			continue
		}
		price := base.Add(plan.PricePerPerson.Mul(occupancy))
		if price.IsNegative() {
			price = decimal.Zero
		}
		*set.field(plan.Category) = price
		set.offered[plan.Category] = true
	}
	return set
}

// Price returns the tier price and whether the room offers that tier.
func (s MealPriceSet) Price(c Category) (decimal.Decimal, bool) {
	f := s.field(c)
	if f == nil {
		return decimal.Zero, false
	}
	if c == NoMeals {
		return *f, true
	}
	return *f, s.offered[c]
}

// Equal compares prices only, so a set read back from storage can be checked
// against a freshly composed one.
func (s MealPriceSet) Equal(o MealPriceSet) bool {
	for _, c := range Categories {
		if !s.field(c).Equal(*o.field(c)) {
			return false
		}
	}
	return true
}

func (s *MealPriceSet) field(c Category) *decimal.Decimal {
	switch c {
	case NoMeals:
		return &s.NoMeals
	case UltraAllInclusive:
		return &s.UltraAllInclusive
	case AllInclusive:
		return &s.AllInclusive
	case FullBoard:
		return &s.FullBoard
	case HalfBoard:
		return &s.HalfBoard
	case BreakfastOnly:
		return &s.BreakfastOnly
	}
	return nil
}
