package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/toofuturetechnologies/SummitSite-sub001/database"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
	"github.com/toofuturetechnologies/SummitSite-sub001/notifications"
)

// NudgeUnmarkedCompletions emails guides about confirmed bookings whose trip
// ended more than a day ago. Completion itself stays a guide action so the
// payout credit is never applied without the guide attesting the trip ran.
func NudgeUnmarkedCompletions() {
	log.Println("Running job: NudgeUnmarkedCompletions...")

	cutoff := time.Now().Add(-24 * time.Hour)

	var staleBookings []models.Booking

	err := database.DB.
		Preload("Guide").
		Preload("Trip").
		Preload("TripDate").
		Joins("JOIN trip_dates on bookings.trip_date_id = trip_dates.id").
		Where("bookings.status = ? AND trip_dates.end_time < ?", "confirmed", cutoff).
		Find(&staleBookings).Error

	if err != nil {
		log.Printf("Error checking for unmarked completions: %v", err)
		return
	}

	if len(staleBookings) == 0 {
		return
	}

	for _, booking := range staleBookings {
		emailSubject := "Action Needed: Mark Your Trip as Completed"
		emailBody := fmt.Sprintf(
			"<h1>Trip Wrap-Up</h1><p>Hi %s,</p><p>Your trip <b>%s</b> ended on %s but the booking has not been marked as completed yet. Marking it completed releases your payout to your balance.</p>",
			booking.Guide.FullName,
			booking.Trip.Title,
			booking.TripDate.EndTime.Format("January 2, 2006"),
		)

		go notifications.SendEmail(booking.Guide.FullName, booking.Guide.Email, emailSubject, emailBody)
	}

	log.Printf("Nudged guides on %d unmarked booking(s).", len(staleBookings))
}
