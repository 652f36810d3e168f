package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID  uuid.UUID `gorm:"not null;unique" json:"booking_id"`
	CustomerID uuid.UUID `gorm:"not null" json:"customer_id"`
	GuideID    uuid.UUID `gorm:"not null" json:"guide_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`

	Booking  Booking `gorm:"foreignkey:BookingID" json:"-"`
	Customer User    `gorm:"foreignkey:CustomerID" json:"customer,omitempty"`
	Guide    User    `gorm:"foreignkey:GuideID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
