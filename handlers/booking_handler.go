package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	config "github.com/toofuturetechnologies/SummitSite-sub001/configs"
	"github.com/toofuturetechnologies/SummitSite-sub001/database"
	"github.com/toofuturetechnologies/SummitSite-sub001/ledger"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
	"github.com/toofuturetechnologies/SummitSite-sub001/payments"
)

type CreateBookingRequest struct {
	TripDateID string `json:"trip_date_id" validate:"required,uuid"`
}

// platformRates assembles the split parameters for one checkout. The referral
// rate only applies when the customer actually has a referrer attached.
func platformRates(hasReferrer bool) ledger.Rates {
	rates := ledger.Rates{
		CommissionRate: config.Float("PLATFORM_COMMISSION_RATE", 0.12),
		HostingFee:     config.Int64("HOSTING_FEE_CENTS", 100),
	}
	if hasReferrer {
		rates.ReferralRate = config.Float("REFERRAL_RATE", 0.015)
	}
	return rates
}

func CreateBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	customerID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	tripDateID, _ := uuid.Parse(req.TripDateID)

	var tripDate models.TripDate
	if err := database.DB.Preload("Trip").First(&tripDate, "id = ?", tripDateID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trip date not found"})
	}
	if !tripDate.Trip.IsActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This trip is no longer offered"})
	}
	if !tripDate.StartTime.After(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This departure date has already passed"})
	}

	var customer models.User
	if err := database.DB.First(&customer, "id = ?", customerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}

	// Resolve the customer's referrer, if any. Earnings accrue per booking.
	var referrer *models.User
	if customer.ReferredByCode != nil && *customer.ReferredByCode != "" {
		var u models.User
		if err := database.DB.Where("referral_code = ?", *customer.ReferredByCode).First(&u).Error; err == nil && u.ID != customerID {
			referrer = &u
		}
	}

	split, err := ledger.SplitPrice(tripDate.Trip.PricePerSeat, platformRates(referrer != nil))
	if err != nil {
		log.Printf("🔥 Price split failed for trip %s: %v", tripDate.TripID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not price this booking"})
	}

	var booking models.Booking
	var payment models.Payment
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tripDate, "id = ?", tripDateID).Error; err != nil {
			return err
		}

		if tripDate.Status == "full" || tripDate.Status == "booked" || tripDate.CurrentGuests >= tripDate.MaxGuests {
			return errors.New("this departure is full or no longer available")
		}
		tripDate.CurrentGuests++
		if tripDate.CurrentGuests >= tripDate.MaxGuests {
			if tripDate.MaxGuests > 1 {
				tripDate.Status = "full"
			} else {
				tripDate.Status = "booked"
			}
		}
		if err := tx.Omit("Trip").Save(&tripDate).Error; err != nil {
			return err
		}

		booking = models.Booking{
			TripID:           tripDate.TripID,
			TripDateID:       tripDate.ID,
			CustomerID:       customerID,
			GuideID:          tripDate.Trip.GuideID,
			GrossPrice:       tripDate.Trip.PricePerSeat,
			CommissionAmount: split.Commission,
			HostingFee:       split.HostingFee,
			GuidePayout:      split.GuidePayout,
			ReferralAmount:   split.Referral,
			Currency:         tripDate.Trip.Currency,
			Status:           string(ledger.StatusPending),
			PaymentStatus:    string(ledger.PaymentUnpaid),
		}
		if referrer != nil {
			booking.ReferrerID = &referrer.ID
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return err
		}

		payment = models.Payment{
			BookingID: &booking.ID,
			Amount:    booking.GrossPrice,
			Currency:  booking.Currency,
			Provider:  "paypal",
			Status:    "pending",
		}
		if err := tx.Omit(clause.Associations).Create(&payment).Error; err != nil {
			return err
		}

		if referrer != nil {
			earning := models.ReferralEarning{
				ReferrerID: referrer.ID,
				BookingID:  booking.ID,
				Amount:     split.Referral,
				Status:     ledger.ReferralPending,
			}
			if err := tx.Omit(clause.Associations).Create(&earning).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"booking":    booking,
		"payment_id": payment.ID,
	})
}

func MarkBookingAsComplete(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var booking models.Booking
	if err := database.DB.Preload("TripDate").First(&booking, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.GuideID != guideID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the guide for this booking"})
	}

	tripEnded := !booking.TripDate.EndTime.After(time.Now())
	res, err := Ledger.ApplyEvent(id, ledger.GuideMarksCompleted{TripEnded: tripEnded})
	if err != nil {
		return ledgerErrorResponse(c, err)
	}

	if res.Changed {
		go dispatchLedgerNotifications(bookingID, res)
	}

	return c.JSON(fiber.Map{"message": "Booking marked as complete and earnings have been credited."})
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func CancelBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var req CancelBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	var initiator ledger.Initiator
	switch userID {
	case booking.CustomerID:
		initiator = ledger.InitiatorCustomer
	case booking.GuideID:
		initiator = ledger.InitiatorGuide
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
	}

	res, err := Ledger.ApplyEvent(id, ledger.CancellationRequested{
		Initiator: initiator,
		Reason:    req.Reason,
	})
	if err != nil {
		return ledgerErrorResponse(c, err)
	}

	// The refund itself runs against the processor outside the ledger
	// transaction; the refund webhook finalizes the payment status.
	if res.RefundAmount > 0 {
		initiateProcessorRefund(id, req.Reason, res)
	}

	go dispatchLedgerNotifications(bookingID, res)

	return c.JSON(fiber.Map{
		"message":        "Booking cancelled.",
		"refund_percent": res.RefundPercent,
		"refund_amount":  res.RefundAmount,
	})
}

func initiateProcessorRefund(bookingID uuid.UUID, reason string, res *ledger.Result) {
	var payment models.Payment
	if err := database.DB.First(&payment, "booking_id = ?", bookingID).Error; err != nil {
		log.Printf("🔥 CRITICAL: refund owed but no payment row for booking %s", bookingID)
		return
	}
	if payment.ProviderTxnID == nil {
		log.Printf("🔥 CRITICAL: refund owed but no captured transaction for booking %s", bookingID)
		return
	}

	refund, err := payments.RefundCapture(*payment.ProviderTxnID, res.RefundAmount, payment.Currency)
	if err != nil {
		// Leaves the booking in refund_pending; the admin console can
		// re-drive it from the cancellation record.
		log.Printf("🔥 CRITICAL: processor refund failed for booking %s: %v", bookingID, err)
		return
	}

	payment.ProviderRefundID = &refund.ID
	payment.RefundReason = &reason
	if err := database.DB.Save(&payment).Error; err != nil {
		log.Printf("🔥 Failed to record refund id for booking %s: %v", bookingID, err)
	}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func CreateReview(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	customerID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var newReview models.Review
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			return errors.New("booking not found")
		}
		if booking.CustomerID != customerID {
			return errors.New("you are not the customer for this booking")
		}
		if booking.Status != string(ledger.StatusCompleted) {
			return errors.New("reviews can only be submitted for completed bookings")
		}

		var existingReview models.Review
		if err := tx.Where("booking_id = ?", bookingID).First(&existingReview).Error; err == nil {
			return errors.New("a review for this booking has already been submitted")
		}

		newReview = models.Review{
			BookingID:  booking.ID,
			CustomerID: customerID,
			GuideID:    booking.GuideID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		}
		if err := tx.Omit(clause.Associations).Create(&newReview).Error; err != nil {
			return err
		}

		var result struct {
			Avg float64
		}
		tx.Model(&models.Review{}).Where("guide_id = ?", booking.GuideID).Select("avg(rating) as avg").Scan(&result)

		if err := tx.Model(&models.Guide{}).Where("user_id = ?", booking.GuideID).Update("avg_rating", result.Avg).Error; err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(newReview)
}

func GetMyBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	customerID, _ := uuid.Parse(claims["user_id"].(string))

	var bookings []models.Booking
	database.DB.
		Preload("Guide").
		Preload("Trip").
		Preload("TripDate").
		Where("customer_id = ?", customerID).
		Order("trip_dates.start_time desc").
		Joins("JOIN trip_dates on bookings.trip_date_id = trip_dates.id").
		Find(&bookings)

	return c.JSON(bookings)
}

func GetMyGuideBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))

	var bookings []models.Booking
	database.DB.
		Preload("Customer").
		Preload("Trip").
		Preload("TripDate").
		Where("guide_id = ?", guideID).
		Order("trip_dates.start_time desc").
		Joins("JOIN trip_dates on bookings.trip_date_id = trip_dates.id").
		Find(&bookings)

	return c.JSON(bookings)
}
