package models

import "time"

type Hotel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	City      string    `gorm:"size:150;index" json:"city"`
	Address   string    `gorm:"type:text" json:"address"`
	Stars     int       `gorm:"default:0" json:"stars"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Email     string    `gorm:"size:150" json:"email"`
	Website   string    `gorm:"size:255" json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Rooms []Room `gorm:"foreignKey:HotelID;constraint:OnDelete:SET NULL;" json:"rooms,omitempty"`
}
