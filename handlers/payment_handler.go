package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toofuturetechnologies/SummitSite-sub001/database"
	"github.com/toofuturetechnologies/SummitSite-sub001/ledger"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
	"github.com/toofuturetechnologies/SummitSite-sub001/payments"
	"github.com/toofuturetechnologies/SummitSite-sub001/services"
)

func CreateOrderHandler(c *fiber.Ctx) error {
	paymentID := c.Params("paymentId")
	if _, err := uuid.Parse(paymentID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var payment models.Payment
	if err := database.DB.Where("id = ? AND status = ?", paymentID, "pending").First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pending payment not found for this ID"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	order, err := payments.CreateOrder(payment.Amount, payment.Currency)
	if err != nil {
		log.Printf("🔥 Processor CreateOrder API call failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment order"})
	}

	payment.ProviderOrderID = &order.ID
	if err := database.DB.Save(&payment).Error; err != nil {
		log.Printf("🔥 Failed to save ProviderOrderID: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payment record"})
	}

	return c.JSON(fiber.Map{"orderID": order.ID})
}

func CaptureOrderHandler(c *fiber.Ctx) error {
	type CaptureRequest struct {
		OrderID string `json:"orderID" validate:"required"`
	}
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var payment models.Payment
	if err := database.DB.Where("provider_order_id = ?", req.OrderID).First(&payment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment record not found for this order"})
	}

	capturedOrder, err := payments.CaptureOrder(req.OrderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to capture payment"})
	}

	if capturedOrder.Status != "COMPLETED" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order not completed on the processor's end"})
	}

	payment.Status = "succeeded"
	payment.ProviderTxnID = &capturedOrder.ID
	if err := database.DB.Save(&payment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payment record"})
	}

	if payment.BookingID == nil {
		return c.JSON(fiber.Map{"message": "Payment captured."})
	}

	res, err := Ledger.ApplyEvent(*payment.BookingID, ledger.PaymentSucceeded{ProcessorTxnID: capturedOrder.ID})
	if err != nil {
		log.Printf("🔥 CRITICAL: payment captured but booking confirmation failed for %s: %v", payment.BookingID, err)
		return ledgerErrorResponse(c, err)
	}

	if res.Changed {
		go dispatchLedgerNotifications(payment.BookingID.String(), res)
		go generateReceipt(*payment.BookingID)
	}

	return c.JSON(fiber.Map{
		"message": "Payment captured and booking confirmed.",
		"status":  res.Status,
	})
}

type webhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		InvoiceID     string `json:"invoice_id"`
		Supplementary struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

// HandlePaymentWebhook receives the processor's capture and refund events.
// Signature verification happens before anything is applied; each verified
// event maps to exactly one ledger event.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	raw := c.Body()

	headers := map[string]string{
		"Paypal-Auth-Algo":         c.Get("Paypal-Auth-Algo"),
		"Paypal-Cert-Url":          c.Get("Paypal-Cert-Url"),
		"Paypal-Transmission-Id":   c.Get("Paypal-Transmission-Id"),
		"Paypal-Transmission-Sig":  c.Get("Paypal-Transmission-Sig"),
		"Paypal-Transmission-Time": c.Get("Paypal-Transmission-Time"),
	}
	verified, err := payments.VerifyWebhookSignature(headers, raw)
	if err != nil {
		log.Printf("🔥 Webhook signature verification errored: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not verify webhook"})
	}
	if !verified {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Webhook signature verification failed"})
	}

	var event webhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		return handleCaptureCompleted(c, event)
	case "PAYMENT.CAPTURE.REFUNDED":
		return handleCaptureRefunded(c, event)
	default:
		// Unsubscribed event types are acknowledged so the processor
		// stops retrying them.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Event ignored"})
	}
}

func handleCaptureCompleted(c *fiber.Ctx, event webhookEvent) error {
	orderID := event.Resource.Supplementary.RelatedIDs.OrderID

	var payment models.Payment
	if err := database.DB.Where("provider_order_id = ? OR provider_txn_id = ?", orderID, event.Resource.ID).First(&payment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment record not found"})
	}

	if payment.Status != "succeeded" {
		payment.Status = "succeeded"
		payment.ProviderTxnID = &event.Resource.ID
		if err := database.DB.Save(&payment).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payment record"})
		}
	}

	if payment.BookingID == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook processed"})
	}

	res, err := Ledger.ApplyEvent(*payment.BookingID, ledger.PaymentSucceeded{ProcessorTxnID: event.Resource.ID})
	if err != nil {
		log.Printf("🔥 CRITICAL: error processing capture webhook for payment %s: %v", payment.ID, err)
		return ledgerErrorResponse(c, err)
	}

	if res.Changed {
		go dispatchLedgerNotifications(payment.BookingID.String(), res)
		go generateReceipt(*payment.BookingID)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook processed successfully"})
}

func handleCaptureRefunded(c *fiber.Ctx, event webhookEvent) error {
	var payment models.Payment
	if err := database.DB.Where("provider_refund_id = ? OR provider_txn_id = ?", event.Resource.ID, event.Resource.ID).First(&payment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment record not found"})
	}

	if payment.Status != "refunded" {
		payment.Status = "refunded"
		if err := database.DB.Save(&payment).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payment record"})
		}
	}

	if payment.BookingID == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook processed"})
	}

	res, err := Ledger.ApplyEvent(*payment.BookingID, ledger.RefundIssued{ProcessorRefundID: event.Resource.ID})
	if err != nil {
		log.Printf("🔥 CRITICAL: error processing refund webhook for payment %s: %v", payment.ID, err)
		return ledgerErrorResponse(c, err)
	}

	if res.Changed {
		go dispatchLedgerNotifications(payment.BookingID.String(), res)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook processed successfully"})
}

func generateReceipt(bookingID uuid.UUID) {
	var booking models.Booking
	if err := database.DB.
		Preload("Customer").Preload("Guide").Preload("Trip").Preload("TripDate").
		First(&booking, "id = ?", bookingID).Error; err != nil {
		log.Printf("🔥 Failed to load booking %s for receipt generation: %v", bookingID, err)
		return
	}
	services.GenerateBookingReceipt(booking)
}
