package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MealPrices keeps the composed nightly price per meal plan category.
// Recomputed by RoomService after every room or meal plan change, never by a hook.
type MealPrices struct {
	NoMeals           decimal.Decimal `json:"no_meals" gorm:"column:price_no_meals;type:decimal(12,2);not null;default:0"`
	UltraAllInclusive decimal.Decimal `json:"ultra_all_inclusive" gorm:"column:price_ultra_all_inclusive;type:decimal(12,2);not null;default:0"`
	AllInclusive      decimal.Decimal `json:"all_inclusive" gorm:"column:price_all_inclusive;type:decimal(12,2);not null;default:0"`
	FullBoard         decimal.Decimal `json:"full_board" gorm:"column:price_full_board;type:decimal(12,2);not null;default:0"`
	HalfBoard         decimal.Decimal `json:"half_board" gorm:"column:price_half_board;type:decimal(12,2);not null;default:0"`
	BreakfastOnly     decimal.Decimal `json:"breakfast_only" gorm:"column:price_breakfast_only;type:decimal(12,2);not null;default:0"`
}

type Room struct {
	gorm.Model

	// Nullable so a room outlives its hotel.
	HotelID *uint  `json:"hotel_id" gorm:"column:hotel_id;index"`
	Name    string `json:"name" gorm:"type:varchar(150)"`
	// Free-form room type label ("Deluxe", "Family suite"), unrelated to pricing.
	Category    string              `json:"category" gorm:"type:varchar(100)"`
	Capacity    int                 `json:"capacity" gorm:"not null;default:1"`
	BasePrice   decimal.NullDecimal `json:"base_price" gorm:"column:base_price;type:decimal(12,2)"`
	Description string              `json:"description" gorm:"type:text"`

	MealPrices MealPrices `json:"meal_prices" gorm:"embedded"`

	MealPlans      []MealPlan      `json:"meal_plans" gorm:"many2many:room_meal_plans;"`
	CalendarPrices []CalendarPrice `json:"-" gorm:"foreignKey:RoomID"`
}
