package models

import (
	"time"

	"github.com/google/uuid"
)

type Trip struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	GuideID     uuid.UUID `gorm:"not null" json:"guide_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Description *string   `gorm:"type:text" json:"description"`
	Difficulty  string    `gorm:"size:20;not null;default:'moderate'" json:"difficulty"`

	// PricePerSeat is in currency minor units.
	PricePerSeat int64  `gorm:"not null" json:"price_per_seat"`
	Currency     string `gorm:"size:3;not null;default:'USD'" json:"currency"`

	DurationDays int     `gorm:"not null;default:1" json:"duration_days"`
	PhotoURL     *string `gorm:"size:255" json:"photo_url"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`

	Guide User `gorm:"foreignkey:GuideID" json:"guide,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
