package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/toofuturetechnologies/SummitSite-sub001/handlers"
	"github.com/toofuturetechnologies/SummitSite-sub001/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/applications/pending", handlers.ListPendingApplications)
	admin.Put("/applications/:guideId", handlers.ManageApplication)
	admin.Get("/dashboard-analytics", handlers.GetDashboardAnalytics)

	admin.Get("/cancellations", handlers.ListCancellationRecords)
	admin.Get("/referral-earnings", handlers.AdminGetReferralEarnings)

	reports := admin.Group("/reports")
	reports.Get("/transactions", handlers.GenerateTransactionReport)

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Put("/:userId/status", handlers.ToggleUserStatus)

	admin.Get("/payout-requests", handlers.ListPayoutRequests)
	admin.Post("/payout-requests/:requestId/process", handlers.ProcessPayoutRequest)

	admin.Get("/bookings", handlers.AdminGetAllBookings)

	reviews := admin.Group("/reviews")
	reviews.Get("", handlers.AdminGetReviews)
	reviews.Delete("/:reviewId", handlers.AdminDeleteReview)
}
