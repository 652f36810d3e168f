package models

import (
	"time"

	"github.com/google/uuid"
)

type Guide struct {
	UserID   uuid.UUID `gorm:"primary_key" json:"user_id"`
	Headline *string   `gorm:"size:255" json:"headline"`
	Bio      *string   `gorm:"type:text" json:"bio"`
	Status   string    `gorm:"size:20;not null;default:'pending'" json:"status"`

	AvgRating float32 `gorm:"default:0" json:"avg_rating"`

	// CurrentBalance is the guide's withdrawable balance in currency minor
	// units. Only the booking-completion transaction credits it.
	CurrentBalance int64 `gorm:"not null;default:0" json:"-"`

	Trips []*Trip `gorm:"foreignkey:GuideID" json:"trips,omitempty"`
	User  User    `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
