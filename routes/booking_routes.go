package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/toofuturetechnologies/SummitSite-sub001/handlers"
	"github.com/toofuturetechnologies/SummitSite-sub001/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("", handlers.CreateBooking)
	booking.Post("/:bookingId/cancel", handlers.CancelBooking)
	booking.Post("/:bookingId/review", handlers.CreateReview)

	guideBooking := api.Group("/guide/bookings", middleware.Protected(), middleware.GuideRequired())
	guideBooking.Post("/:bookingId/complete", handlers.MarkBookingAsComplete)
}
