package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrRoomNotFound       = errors.New("pricing: room not found")
	ErrMealPlanNotOffered = errors.New("pricing: meal plan not offered for this room")
	ErrOverCapacity       = errors.New("pricing: guests exceed room capacity")
)

// FallbackPolicy decides what an uncovered night costs.
type FallbackPolicy uint8

const (
	// FallbackNone leaves uncovered nights unpriced.
	FallbackNone FallbackPolicy = iota
	// FallbackBasePrice prices uncovered nights at the room base price, when the room has one.
	FallbackBasePrice
)

func ParseFallbackPolicy(raw string) (FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "base", "base_price":
		return FallbackBasePrice, nil
	case "none", "off":
		return FallbackNone, nil
	}
	return FallbackNone, fmt.Errorf("unknown fallback policy %q", raw)
}

func (p FallbackPolicy) String() string {
	if p == FallbackBasePrice {
		return "base"
	}
	return "none"
}

// NightSource tells where a night's price came from.
type NightSource string

const (
	SourceCalendar NightSource = "calendar"
	SourceFallback NightSource = "fallback"
	SourceClosed   NightSource = "closed"
	SourceMissing  NightSource = "missing"
)

// RoomRates is the part of a room the aggregator needs.
type RoomRates struct {
	RoomID    uint
	BasePrice decimal.NullDecimal
	Capacity  int
	MealPlans []MealPlan
}

// Store feeds the aggregator. Room returns ErrRoomNotFound for unknown rooms.
type Store interface {
	Room(ctx context.Context, roomID uint) (RoomRates, error)
	Calendar(ctx context.Context, roomID uint, stay Stay) (*Calendar, error)
}

type StayRequest struct {
	RoomID   uint
	CheckIn  time.Time
	CheckOut time.Time
	Category Category
	Guests   int
}

type NightPrice struct {
	Date          time.Time       `json:"date"`
	Source        NightSource     `json:"source"`
	PeriodID      uint            `json:"period_id,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PriceDiscount decimal.Decimal `json:"price_with_discount"`
	Discounted    bool            `json:"discounted"`
}

// PricingGap is the non-fatal warning for a night that could not be priced.
type PricingGap struct {
	Date   time.Time   `json:"date"`
	Reason NightSource `json:"reason"`
}

type StayPriceResult struct {
	RoomID               uint            `json:"room_id"`
	CheckIn              time.Time       `json:"check_in"`
	CheckOut             time.Time       `json:"check_out"`
	Category             Category        `json:"meal_plan"`
	Guests               int             `json:"guests"`
	Nights               int             `json:"nights"`
	TotalWithoutDiscount decimal.Decimal `json:"total_price_without_discount"`
	TotalWithDiscount    decimal.Decimal `json:"total_price_with_discount"`
	FullyAvailable       bool            `json:"fully_available"`
	Breakdown            []NightPrice    `json:"breakdown"`
	Gaps                 []PricingGap    `json:"gaps,omitempty"`
}

type Aggregator struct {
	Store    Store
	Fallback FallbackPolicy
	Logger   *slog.Logger
}

func NewAggregator(store Store, fallback FallbackPolicy, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{Store: store, Fallback: fallback, Logger: logger}
}

// WithStore returns a copy of the aggregator reading from store, e.g. a store
// bound to an open transaction.
func (a *Aggregator) WithStore(store Store) *Aggregator {
	cp := *a
	cp.Store = store
	return &cp
}

// PriceStay prices every night in [CheckIn, CheckOut). A stay with gaps is
// returned with FullyAvailable=false and totals over the priced nights only.
func (a *Aggregator) PriceStay(ctx context.Context, req StayRequest) (StayPriceResult, error) {
	stay, err := NewStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return StayPriceResult{}, err
	}
	category := req.Category
	if category == "" {
		category = NoMeals
	}
	if !category.Valid() {
		return StayPriceResult{}, fmt.Errorf("%w: %q", ErrMealPlanNotOffered, category)
	}

	res := StayPriceResult{
		RoomID:               req.RoomID,
		CheckIn:              stay.CheckIn,
		CheckOut:             stay.CheckOut,
		Category:             category,
		Guests:               req.Guests,
		Nights:               stay.Nights(),
		TotalWithoutDiscount: decimal.Zero,
		TotalWithDiscount:    decimal.Zero,
		FullyAvailable:       true,
		Breakdown:            []NightPrice{},
	}

	rates, err := a.Store.Room(ctx, req.RoomID)
	if err != nil {
		return StayPriceResult{}, err
	}
	occupancy, err := occupancyFor(req.Guests, rates.Capacity)
	if err != nil {
		return StayPriceResult{}, err
	}
	res.Guests = occupancy
	if category != NoMeals && !offers(rates.MealPlans, category) {
		return StayPriceResult{}, fmt.Errorf("%w: %s", ErrMealPlanNotOffered, category)
	}
	if res.Nights == 0 {
		return res, nil
	}

	cal, err := a.Store.Calendar(ctx, req.RoomID, stay)
	if err != nil {
		return StayPriceResult{}, fmt.Errorf("load calendar for room %d: %w", req.RoomID, err)
	}
	lookups, _ := cal.Nights(stay)

	for _, night := range lookups {
		np := NightPrice{Date: night.Date}
		var base decimal.Decimal
		switch {
		case night.Covered && night.Available:
			np.Source = SourceCalendar
			np.PeriodID = night.PeriodID
			base = night.Price
		case night.Covered:
			np.Source = SourceClosed
			np.PeriodID = night.PeriodID
		case a.Fallback == FallbackBasePrice && rates.BasePrice.Valid:
			np.Source = SourceFallback
			base = rates.BasePrice.Decimal
		default:
			np.Source = SourceMissing
		}

		if np.Source == SourceClosed || np.Source == SourceMissing {
			res.FullyAvailable = false
			res.Gaps = append(res.Gaps, PricingGap{Date: night.Date, Reason: np.Source})
			res.Breakdown = append(res.Breakdown, np)
			continue
		}

		price, _ := ComposeMealPrices(base, occupancy, rates.MealPlans).Price(category)
		np.Price = price
		np.PriceDiscount = price
		if np.Source == SourceCalendar && night.Promotional && !night.Discount.IsZero() {
			np.PriceDiscount = night.Discount.Apply(price)
			np.Discounted = true
		}
		res.TotalWithoutDiscount = res.TotalWithoutDiscount.Add(np.Price)
		res.TotalWithDiscount = res.TotalWithDiscount.Add(np.PriceDiscount)
		res.Breakdown = append(res.Breakdown, np)
	}

	if len(res.Gaps) > 0 {
		a.Logger.DebugContext(ctx, "stay not fully priced",
			"room_id", req.RoomID,
			"check_in", stay.CheckIn.Format(time.DateOnly),
			"check_out", stay.CheckOut.Format(time.DateOnly),
			"gaps", len(res.Gaps))
	}
	return res, nil
}

// occupancyFor defaults an unspecified party to the room capacity.
func occupancyFor(guests, capacity int) (int, error) {
	if capacity < 1 {
		capacity = 1
	}
	switch {
	case guests <= 0:
		return capacity, nil
	case guests > capacity:
		return 0, fmt.Errorf("%w: %d guests, capacity %d", ErrOverCapacity, guests, capacity)
	}
	return guests, nil
}

func offers(plans []MealPlan, c Category) bool {
	for _, p := range plans {
		if p.Category == c {
			return true
		}
	}
	return false
}
