package models

import (
	"time"

	"github.com/google/uuid"
)

type TripDate struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TripID    uuid.UUID `gorm:"not null" json:"trip_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Status    string    `gorm:"size:20;not null;default:'available'" json:"status"`

	MaxGuests     int `gorm:"not null;default:1" json:"max_guests"`
	CurrentGuests int `gorm:"not null;default:0" json:"current_guests"`

	Trip Trip `gorm:"foreignkey:TripID" json:"trip,omitempty"`
}
