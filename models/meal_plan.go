package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MealPlan is defined once per name; rooms share it through room_meal_plans.
type MealPlan struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:100;uniqueIndex" json:"name"`
	Category       string          `gorm:"size:32;index" json:"category"`
	PricePerPerson decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price_per_person"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
