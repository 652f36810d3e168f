package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/toofuturetechnologies/SummitSite-sub001/database"
	"github.com/toofuturetechnologies/SummitSite-sub001/ledger"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
	"github.com/toofuturetechnologies/SummitSite-sub001/notifications"
)

// Ledger is the booking orchestrator every status-mutating handler goes
// through. Wired up in main with the gorm-backed store.
var Ledger *ledger.Orchestrator

// ledgerErrorResponse maps the ledger's typed errors onto HTTP statuses:
// policy violations are 400, state conflicts 409, unknown bookings 404 and
// persistence failures 500. Internal detail never reaches the client.
func ledgerErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	case errors.Is(err, ledger.ErrAlreadyCancelled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This booking has already been cancelled"})
	case errors.Is(err, ledger.ErrTerminalState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This booking can no longer be changed"})
	case errors.Is(err, ledger.ErrTripAlreadyOccurred):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "The trip has already started; cancellation is not possible"})
	case errors.Is(err, ledger.ErrInvalidCancellation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This cancellation is not allowed"})
	case errors.Is(err, ledger.ErrInvalidTransition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This action is not allowed in the booking's current state"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update booking"})
	}
}

// dispatchLedgerNotifications sends the emails a successful event owes. The
// orchestrator only reports what is owed; all external calls happen here,
// outside its transaction.
func dispatchLedgerNotifications(bookingID string, res *ledger.Result) {
	var booking models.Booking
	if err := database.DB.
		Preload("Customer").
		Preload("Guide").
		Preload("Trip").
		First(&booking, "id = ?", bookingID).Error; err != nil {
		return
	}

	for _, n := range res.Notifications {
		switch n.Kind {
		case ledger.NotifyBookingConfirmed:
			go notifications.SendEmail(booking.Customer.FullName, booking.Customer.Email, "Your Booking is Confirmed!",
				fmt.Sprintf("<h1>Booking Confirmed</h1><p>Your payment was successful and your spot on <b>%s</b> is secured.</p>", booking.Trip.Title))
			go notifications.SendEmail(booking.Guide.FullName, booking.Guide.Email, "You Have a New Booking!",
				fmt.Sprintf("<h1>New Booking</h1><p>A customer has booked and paid for <b>%s</b>.</p>", booking.Trip.Title))

		case ledger.NotifyBookingCompleted:
			go notifications.SendEmail(booking.Customer.FullName, booking.Customer.Email, "How Was Your Trip?",
				fmt.Sprintf("<h1>Trip Completed</h1><p>Your guide marked <b>%s</b> as completed. We'd love to hear how it went - leave a review!</p>", booking.Trip.Title))

		case ledger.NotifyBookingCancelled:
			go notifications.SendEmail(booking.Customer.FullName, booking.Customer.Email, "Your Booking Has Been Cancelled",
				fmt.Sprintf("<h1>Booking Cancelled</h1><p>Your booking for <b>%s</b> has been cancelled.</p>", booking.Trip.Title))
			go notifications.SendEmail(booking.Guide.FullName, booking.Guide.Email, "A Booking Was Cancelled",
				fmt.Sprintf("<h1>Booking Cancelled</h1><p>A booking for <b>%s</b> has been cancelled and the seat released.</p>", booking.Trip.Title))

		case ledger.NotifyRefundOwed:
			go notifications.SendEmail(booking.Customer.FullName, booking.Customer.Email, "Your Refund is On Its Way",
				fmt.Sprintf("<h1>Refund Initiated</h1><p>A refund of %s %s is being processed. It may take a few business days to appear.</p>", formatAmount(n.Amount), n.Currency))

		case ledger.NotifyRefundProcessed:
			go notifications.SendEmail(booking.Customer.FullName, booking.Customer.Email, "Your Refund Has Been Processed",
				fmt.Sprintf("<h1>Refund Processed</h1><p>Your refund of %s %s for <b>%s</b> has been completed.</p>", formatAmount(n.Amount), n.Currency, booking.Trip.Title))

		case ledger.NotifyReferralPaid:
			if booking.ReferrerID == nil {
				continue
			}
			var referrer models.User
			if err := database.DB.First(&referrer, "id = ?", booking.ReferrerID).Error; err != nil {
				continue
			}
			go notifications.SendEmail(referrer.FullName, referrer.Email, "You've Earned a Referral Payout!",
				fmt.Sprintf("<h1>Congratulations!</h1><p>A trip you referred has been completed. Your referral payout of %s %s is now payable.</p>", formatAmount(n.Amount), n.Currency))
		}
	}
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
