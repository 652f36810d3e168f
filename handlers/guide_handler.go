package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/toofuturetechnologies/SummitSite-sub001/database"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
)

type GuideApplicationRequest struct {
	Headline string `json:"headline" validate:"required"`
	Bio      string `json:"bio" validate:"required"`
}

func ApplyToBeAGuide(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req GuideApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var existingGuide models.Guide
	err := database.DB.Where("user_id = ?", userID).First(&existingGuide).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You have already submitted an application."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	newApplication := models.Guide{
		UserID:   userID,
		Headline: &req.Headline,
		Bio:      &req.Bio,
	}

	if err := database.DB.Omit("Trips", "User").Create(&newApplication).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create application"})
	}

	return c.Status(fiber.StatusCreated).JSON(newApplication)
}

func GetGuideProfile(c *fiber.Ctx) error {
	guideID := c.Params("guideId")

	var guide models.Guide
	if err := database.DB.Preload("User").Preload("Trips").First(&guide, "user_id = ? AND status = ?", guideID, "active").Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Active guide not found"})
	}

	return c.JSON(guide)
}

func ListActiveGuides(c *fiber.Ctx) error {
	var activeGuides []models.Guide
	query := database.DB.Preload("User").Preload("Trips").Where("status = ?", "active")

	if location := c.Query("location"); location != "" {
		query = query.Joins("JOIN trips ON trips.guide_id = guides.user_id").Where("trips.location ILIKE ?", "%"+location+"%")
	}
	if minRating := c.Query("min_rating"); minRating != "" {
		query = query.Where("avg_rating >= ?", minRating)
	}

	if err := query.Find(&activeGuides).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve guides"})
	}

	return c.JSON(activeGuides)
}

func GetMyGuideProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))

	var guide models.Guide
	if err := database.DB.Preload("User").First(&guide, "user_id = ?", guideID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Guide profile not found"})
	}
	return c.JSON(guide)
}

type UpdateGuideProfileRequest struct {
	Headline *string `json:"headline,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

func UpdateMyGuideProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))

	var req UpdateGuideProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var guide models.Guide
	if err := database.DB.First(&guide, "user_id = ?", guideID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Guide profile not found"})
	}

	if req.Headline != nil {
		guide.Headline = req.Headline
	}
	if req.Bio != nil {
		guide.Bio = req.Bio
	}

	if err := database.DB.Omit("Trips", "User").Save(&guide).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(guide)
}

func GetGuideEarnings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))

	var guide models.Guide
	if err := database.DB.First(&guide, "user_id = ?", guideID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Guide profile not found"})
	}

	return c.JSON(fiber.Map{"current_balance": guide.CurrentBalance})
}

type PayoutRequestBody struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func RequestPayout(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))

	var req PayoutRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var guide models.Guide
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&guide, "user_id = ?", guideID).Error; err != nil {
			return errors.New("guide profile not found")
		}
		if guide.CurrentBalance < req.Amount {
			return errors.New("insufficient balance for this payout request")
		}

		guide.CurrentBalance -= req.Amount
		if err := tx.Omit("Trips", "User").Save(&guide).Error; err != nil {
			return err
		}

		payoutRequest := models.PayoutRequest{
			GuideID:     guideID,
			Amount:      req.Amount,
			Status:      "pending",
			RequestedAt: time.Now(),
		}
		if err := tx.Omit("Guide").Create(&payoutRequest).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Payout request submitted successfully."})
}

func GetMyPayoutRequests(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))

	var requests []models.PayoutRequest
	database.DB.Where("guide_id = ?", guideID).Order("requested_at desc").Find(&requests)

	return c.JSON(requests)
}
