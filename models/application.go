package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ApplicationStatusConfirmed = "Confirmed"
	ApplicationStatusCancelled = "Cancelled"
)

// Application is a booking of one room for a stay at the price quoted when it was made.
type Application struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RoomID        uint   `gorm:"column:room_id;index;not null" json:"room_id"`
	ReferenceCode string `gorm:"column:reference_code;size:64;uniqueIndex" json:"reference_code"`
	Status        string `gorm:"column:status;size:64" json:"status"`

	CheckInDate  datatypes.Date `gorm:"column:check_in_date;not null" json:"check_in_date"`
	CheckOutDate datatypes.Date `gorm:"column:check_out_date;not null" json:"check_out_date"`
	Nights       int            `gorm:"column:nights" json:"nights"`
	MealPlan     string         `gorm:"column:meal_plan;size:32" json:"meal_plan"`
	Guests       int            `gorm:"column:guests;default:1" json:"guests"`

	ContactName  string `gorm:"column:contact_name;size:255" json:"contact_name"`
	ContactEmail string `gorm:"column:contact_email;size:150" json:"contact_email"`

	TotalWithoutDiscount decimal.Decimal `gorm:"column:total_without_discount;type:decimal(12,2)" json:"total_price_without_discount"`
	TotalPrice           decimal.Decimal `gorm:"column:total_price;type:decimal(12,2)" json:"total_price"`

	// Nightly breakdown as quoted, kept for audits.
	Details datatypes.JSON `gorm:"column:details" json:"details,omitempty"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}
