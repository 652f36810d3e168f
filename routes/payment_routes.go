package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/toofuturetechnologies/SummitSite-sub001/handlers"
	"github.com/toofuturetechnologies/SummitSite-sub001/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/payments/webhook", handlers.HandlePaymentWebhook)

	paypal := api.Group("/payments/paypal", middleware.Protected())
	paypal.Post("/create-order/:paymentId", handlers.CreateOrderHandler)
	paypal.Post("/capture-order", handlers.CaptureOrderHandler)
}
