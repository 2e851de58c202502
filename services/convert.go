package services

import (
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"travel-backend/models"
	"travel-backend/pricing"
)

func mealPlansFromModels(plans []models.MealPlan) []pricing.MealPlan {
	out := make([]pricing.MealPlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, pricing.MealPlan{
			Name:           p.Name,
			Category:       pricing.Category(p.Category),
			PricePerPerson: p.PricePerPerson,
		})
	}
	return out
}

func mealPricesToModel(set pricing.MealPriceSet) models.MealPrices {
	return models.MealPrices{
		NoMeals:           set.NoMeals,
		UltraAllInclusive: set.UltraAllInclusive,
		AllInclusive:      set.AllInclusive,
		FullBoard:         set.FullBoard,
		HalfBoard:         set.HalfBoard,
		BreakfastOnly:     set.BreakfastOnly,
	}
}

func mealPricesFromModel(p models.MealPrices) pricing.MealPriceSet {
	return pricing.MealPriceSet{
		NoMeals:           p.NoMeals,
		UltraAllInclusive: p.UltraAllInclusive,
		AllInclusive:      p.AllInclusive,
		FullBoard:         p.FullBoard,
		HalfBoard:         p.HalfBoard,
		BreakfastOnly:     p.BreakfastOnly,
	}
}

func roomRatesFromModel(room models.Room) pricing.RoomRates {
	return pricing.RoomRates{
		RoomID:    room.ID,
		BasePrice: room.BasePrice,
		Capacity:  room.Capacity,
		MealPlans: mealPlansFromModels(room.MealPlans),
	}
}

// discountFromModel prefers the typed columns and falls back to the legacy amount.
func discountFromModel(d models.CalendarDate) (pricing.Discount, error) {
	switch {
	case d.DiscountFraction.Valid && d.DiscountAbsolute.Valid:
		return pricing.Discount{}, pricing.ErrInvalidDiscount
	case d.DiscountFraction.Valid:
		return pricing.FractionDiscount(d.DiscountFraction.Decimal)
	case d.DiscountAbsolute.Valid:
		return pricing.AbsoluteDiscount(d.DiscountAbsolute.Decimal)
	case d.DiscountAmount != nil:
		return pricing.ParseLegacyDiscount(*d.DiscountAmount)
	}
	return pricing.Discount{}, nil
}

// periodFromModel never fails: a malformed discount is logged and dropped so a
// single bad row cannot break pricing for the room.
func periodFromModel(cp models.CalendarPrice, log *slog.Logger) pricing.Period {
	d := cp.CalendarDate
	discount, err := discountFromModel(d)
	if err != nil {
		log.Warn("ignoring malformed calendar discount",
			"calendar_date_id", d.ID, "room_id", cp.RoomID, "error", err)
		discount = pricing.Discount{}
	}
	return pricing.Period{
		ID:                  cp.ID,
		Interval:            pricing.Interval{Start: pricing.Day(time.Time(d.StartDate)), End: pricing.Day(time.Time(d.EndDate))},
		Price:               cp.Price,
		AvailableForBooking: d.AvailableForBooking,
		Promotional:         d.Stock,
		Discount:            discount,
	}
}

func toDate(t time.Time) datatypes.Date {
	return datatypes.Date(pricing.Day(t))
}
