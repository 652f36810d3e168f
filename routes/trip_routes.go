package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/toofuturetechnologies/SummitSite-sub001/handlers"
	"github.com/toofuturetechnologies/SummitSite-sub001/middleware"
)

func TripRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/trips", handlers.ListTrips)
	api.Get("/trips/:tripId", handlers.GetTrip)
	api.Get("/trips/:tripId/dates", handlers.GetTripDates)

	trips := api.Group("/guide/trips", middleware.Protected(), middleware.GuideRequired())
	trips.Post("", handlers.CreateTrip)
	trips.Get("/me", handlers.GetMyTrips)
	trips.Put("/:tripId", handlers.UpdateTrip)
	trips.Delete("/:tripId", handlers.DeactivateTrip)

	dates := api.Group("/guide/trip-dates", middleware.Protected(), middleware.GuideRequired())
	dates.Post("", handlers.CreateTripDate)
	dates.Delete("/:dateId", handlers.DeleteTripDate)
}
