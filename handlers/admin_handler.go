package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/toofuturetechnologies/SummitSite-sub001/database"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
	"github.com/toofuturetechnologies/SummitSite-sub001/notifications"
)

func ListPendingApplications(c *fiber.Ctx) error {
	var pendingGuides []models.Guide
	if err := database.DB.Preload("User").Where("status = ?", "pending").Find(&pendingGuides).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(pendingGuides)
}

func ManageApplication(c *fiber.Ctx) error {
	type MgtRequest struct {
		Status string `json:"status" validate:"required,oneof=active rejected"`
	}

	var req MgtRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	guideUserID := c.Params("guideId")

	var guideApp models.Guide
	if err := database.DB.Where("user_id = ?", guideUserID).First(&guideApp).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
	}

	var user models.User
	if err := database.DB.Where("id = ?", guideUserID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Associated user not found"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		guideApp.Status = req.Status
		if err := tx.Save(&guideApp).Error; err != nil {
			return err
		}
		if req.Status == "active" {
			user.Role = "guide"
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update application status"})
	}

	switch req.Status {
	case "active":
		go notifications.SendEmail(
			user.FullName,
			user.Email,
			"Your Guide Application has been Approved!",
			"<h1>Welcome to Summit!</h1><p>Your application to become a guide has been approved. You can now list trips and open departure dates.</p>",
		)
	case "rejected":
		go notifications.SendEmail(
			user.FullName,
			user.Email,
			"Update on Your Guide Application",
			"<h1>Application Update</h1><p>We regret to inform you that after careful review, your guide application was not approved at this time.</p>",
		)
	}

	return c.JSON(fiber.Map{"message": "Application status updated successfully"})
}

type DashboardAnalyticsResponse struct {
	TotalCustomers     int64            `json:"total_customers"`
	TotalActiveGuides  int64            `json:"total_active_guides"`
	TotalRevenue       int64            `json:"total_revenue"`
	BookingsLast30Days int64            `json:"bookings_last_30_days"`
	RecentBookings     []models.Booking `json:"recent_bookings"`
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var response DashboardAnalyticsResponse
	var totalRevenue int64

	database.DB.Model(&models.User{}).Where("role = ?", "customer").Count(&response.TotalCustomers)

	database.DB.Model(&models.Guide{}).Where("status = ?", "active").Count(&response.TotalActiveGuides)

	database.DB.Model(&models.Payment{}).Where("status = ?", "succeeded").Select("COALESCE(SUM(amount), 0)").Row().Scan(&totalRevenue)
	response.TotalRevenue = totalRevenue

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	database.DB.Model(&models.Booking{}).Where("created_at > ?", thirtyDaysAgo).Count(&response.BookingsLast30Days)

	database.DB.Order("created_at desc").Limit(5).Preload("Customer").Preload("Guide").Preload("Trip").Find(&response.RecentBookings)

	return c.JSON(response)
}

func ListCancellationRecords(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	query := database.DB.Model(&models.CancellationRecord{})
	countQuery := database.DB.Model(&models.CancellationRecord{})

	if initiator := c.Query("initiator"); initiator != "" {
		query = query.Where("initiator = ?", initiator)
		countQuery = countQuery.Where("initiator = ?", initiator)
	}

	var total int64
	var records []models.CancellationRecord
	countQuery.Count(&total)
	query.Order("created_at desc").Offset(offset).Limit(limit).Preload("Booking.Customer").Preload("Booking.Guide").Find(&records)

	return c.JSON(fiber.Map{
		"data": records,
		"meta": fiber.Map{"total": total, "page": page, "last_page": int(math.Ceil(float64(total) / float64(limit)))},
	})
}

func ListPayoutRequests(c *fiber.Ctx) error {
	var requests []models.PayoutRequest
	database.DB.Preload("Guide").Where("status = ?", "pending").Find(&requests)
	return c.JSON(requests)
}

func ProcessPayoutRequest(c *fiber.Ctx) error {
	requestID := c.Params("requestId")

	type ProcessRequest struct {
		Decision   string `json:"decision" validate:"required,oneof=complete reject"`
		AdminNotes string `json:"admin_notes"`
	}
	var req ProcessRequest
	if err := c.BodyParser(&req); err != nil { return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"}) }
	if err := validate.Struct(req); err != nil { return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()}) }

	var payoutRequest models.PayoutRequest
	if err := database.DB.Preload("Guide").First(&payoutRequest, "id = ?", requestID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payout request not found"})
	}
	if payoutRequest.Status != "pending" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Payout request has already been processed"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		payoutRequest.Status = req.Decision
		payoutRequest.AdminNotes = &req.AdminNotes
		payoutRequest.ProcessedAt = &now

		if err := tx.Omit("Guide").Save(&payoutRequest).Error; err != nil { return err }

		if req.Decision == "reject" {
			if err := tx.Model(&models.Guide{}).Where("user_id = ?", payoutRequest.GuideID).Update("current_balance", gorm.Expr("current_balance + ?", payoutRequest.Amount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil { return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payout request"}) }

	guide := payoutRequest.Guide
	if req.Decision == "complete" {
		go notifications.SendEmail(
			guide.FullName,
			guide.Email,
			"Your Payout Has Been Processed",
			fmt.Sprintf("<h1>Payout Processed</h1><p>Hello %s,</p><p>Your payout request for the amount of $%s has been processed and sent by our team.</p>", guide.FullName, formatAmount(payoutRequest.Amount)),
		)
	} else {
		go notifications.SendEmail(
			guide.FullName,
			guide.Email,
			"Update on Your Payout Request",
			fmt.Sprintf("<h1>Payout Request Update</h1><p>Hello %s,</p><p>Your payout request for the amount of $%s was rejected. The funds have been returned to your account balance.</p><p><b>Admin Notes:</b> %s</p>", guide.FullName, formatAmount(payoutRequest.Amount), req.AdminNotes),
		)
	}

	return c.JSON(fiber.Map{"message": "Payout request processed."})
}

func GenerateTransactionReport(c *fiber.Ctx) error {
	startDateStr := c.Query("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDateStr := c.Query("end_date", time.Now().Format("2006-01-02"))

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date format. Use YYYY-MM-DD."})
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date format. Use YYYY-MM-DD."})
	}
	endDate = endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	var payments []models.Payment
	database.DB.
		Preload("Booking.Customer").
		Preload("Booking.Trip").
		Where("status IN ? AND created_at BETWEEN ? AND ?", []string{"succeeded", "refunded"}, startDate, endDate).
		Order("created_at desc").
		Find(&payments)

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Transaction ID", "Date", "Customer Name", "Trip", "Amount", "Status", "Provider", "Booking ID"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}

	for _, p := range payments {
		txnID := ""
		if p.ProviderTxnID != nil {
			txnID = *p.ProviderTxnID
		}

		row := []string{
			txnID,
			p.CreatedAt.Format("2006-01-02 15:04"),
			p.Booking.Customer.FullName,
			p.Booking.Trip.Title,
			formatAmount(p.Amount),
			p.Status,
			p.Provider,
			p.BookingID.String(),
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s_to_%s.csv\"", startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	return c.Send(b.Bytes())
}

func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := strings.TrimSpace(c.Query("search"))
	offset := (page - 1) * limit

	var users []models.User
	var totalUsers int64

	query := database.DB.Model(&models.User{})
	countQuery := database.DB.Model(&models.User{})

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
		countQuery = countQuery.Where("full_name ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}

	countQuery.Count(&totalUsers)
	query.Offset(offset).Limit(limit).Find(&users)

	return c.JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{
			"total_users":  totalUsers,
			"total_pages":  int(math.Ceil(float64(totalUsers) / float64(limit))),
			"current_page": page,
		},
	})
}

func ToggleUserStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")
	type Request struct {
		IsActive bool `json:"is_active"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil { return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"}) }

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_active", req.IsActive).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"message": "User status updated successfully."})
}

func AdminGetAllBookings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	status := c.Query("status")
	offset := (page - 1) * limit

	var bookings []models.Booking
	var totalBookings int64

	query := database.DB.Model(&models.Booking{})
	countQuery := database.DB.Model(&models.Booking{})

	if status != "" {
		query = query.Where("status = ?", status)
		countQuery = countQuery.Where("status = ?", status)
	}

	countQuery.Count(&totalBookings)
	query.Order("created_at desc").Offset(offset).Limit(limit).Preload("Customer").Preload("Guide").Preload("Trip").Find(&bookings)

	return c.JSON(fiber.Map{
		"data": bookings,
		"meta": fiber.Map{
			"total":     totalBookings,
			"page":      page,
			"last_page": int(math.Ceil(float64(totalBookings) / float64(limit))),
		},
	})
}

func AdminGetReferralEarnings(c *fiber.Ctx) error {
	query := database.DB.Order("created_at desc").Preload("Referrer").Preload("Booking")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var earnings []models.ReferralEarning
	query.Find(&earnings)
	return c.JSON(earnings)
}

func AdminGetReviews(c *fiber.Ctx) error {
	var reviews []models.Review
	database.DB.Order("created_at desc").Preload("Customer").Find(&reviews)
	return c.JSON(reviews)
}

func AdminDeleteReview(c *fiber.Ctx) error {
	reviewID := c.Params("reviewId")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			return errors.New("review not found")
		}

		guideID := review.GuideID

		if err := tx.Delete(&review).Error; err != nil {
			return err
		}

		var result struct{ Avg float64 }
		tx.Model(&models.Review{}).Where("guide_id = ?", guideID).Select("COALESCE(AVG(rating), 0) as avg").Scan(&result)

		if err := tx.Model(&models.Guide{}).Where("user_id = ?", guideID).Update("avg_rating", result.Avg).Error; err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
