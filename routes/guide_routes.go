package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/toofuturetechnologies/SummitSite-sub001/handlers"
	"github.com/toofuturetechnologies/SummitSite-sub001/middleware"
)

func GuideRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/guides", handlers.ListActiveGuides)
	api.Get("/guides/:guideId", handlers.GetGuideProfile)

	guide := api.Group("/guide", middleware.Protected())
	guide.Post("/apply", handlers.ApplyToBeAGuide)
	guide.Get("/bookings", handlers.GetMyGuideBookings)
	guide.Get("/earnings", handlers.GetGuideEarnings)

	profile := guide.Group("/profile")
	profile.Get("/me", handlers.GetMyGuideProfile)
	profile.Put("/me", handlers.UpdateMyGuideProfile)

	payouts := guide.Group("/payouts", middleware.GuideRequired())
	payouts.Post("/request", handlers.RequestPayout)
	payouts.Get("/requests", handlers.GetMyPayoutRequests)
}
