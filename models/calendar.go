package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CalendarDate is a closed date interval with booking and discount flags.
// One interval may be priced for several rooms through CalendarPrice.
type CalendarDate struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	StartDate           datatypes.Date `gorm:"column:start_date;not null;index" json:"start_date"`
	EndDate             datatypes.Date `gorm:"column:end_date;not null;index" json:"end_date"`
	AvailableForBooking bool           `gorm:"column:available_for_booking;default:true" json:"available_for_booking"`
	// Promotional period; discounts only apply when set.
	Stock bool `gorm:"column:stock;default:false" json:"stock"`

	DiscountFraction decimal.NullDecimal `gorm:"column:discount_fraction;type:decimal(5,4)" json:"discount_fraction"`
	DiscountAbsolute decimal.NullDecimal `gorm:"column:discount_absolute;type:decimal(12,2)" json:"discount_absolute"`
	// Legacy single-field discount: <= 1 is a fraction, > 1 an amount. Read only
	// when both typed columns are empty.
	DiscountAmount *string `gorm:"column:discount_amount;size:32" json:"discount_amount,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CalendarPrice is the room pricing entity: the nightly price of one room over one CalendarDate.
type CalendarPrice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	RoomID         uint            `gorm:"not null;index:idx_room_calendar_date,unique" json:"room_id"`
	CalendarDateID uint            `gorm:"not null;index:idx_room_calendar_date,unique" json:"calendar_date_id"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	CreatedAt time.Time `json:"created_at"`

	CalendarDate CalendarDate `gorm:"foreignKey:CalendarDateID" json:"calendar_date"`
}
