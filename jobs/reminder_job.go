package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/toofuturetechnologies/SummitSite-sub001/database"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
	"github.com/toofuturetechnologies/SummitSite-sub001/notifications"
)

func SendTripReminders() {
	log.Println("Running job: SendTripReminders...")

	now := time.Now()
	lowerBound := now.Add(48 * time.Hour)
	upperBound := now.Add(49 * time.Hour)

	var upcomingBookings []models.Booking

	err := database.DB.
		Preload("Customer").
		Preload("Guide").
		Preload("Trip").
		Preload("TripDate").
		Joins("JOIN trip_dates on bookings.trip_date_id = trip_dates.id").
		Where("bookings.status = ? AND trip_dates.start_time BETWEEN ? AND ?", "confirmed", lowerBound, upperBound).
		Find(&upcomingBookings).Error

	if err != nil {
		log.Printf("Error checking for upcoming trips: %v", err)
		return
	}

	if len(upcomingBookings) == 0 {
		return
	}

	for _, booking := range upcomingBookings {
		log.Printf("Sending reminder for booking ID: %s", booking.ID)

		emailSubject := "Reminder: Your Trip Departs in 2 Days!"
		emailBody := fmt.Sprintf(
			"<h1>Trip Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that <b>%s</b> departs on %s from %s.</p><p>Check your gear list and get some rest!</p>",
			booking.Trip.Title,
			booking.TripDate.StartTime.Format("Monday, January 2 at 3:04 PM"),
			booking.Trip.Location,
		)

		go notifications.SendEmail(booking.Customer.FullName, booking.Customer.Email, emailSubject, emailBody)
		go notifications.SendEmail(booking.Guide.FullName, booking.Guide.Email, emailSubject, emailBody)
	}
}
