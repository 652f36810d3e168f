package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/toofuturetechnologies/SummitSite-sub001/database"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
)

type TripRequest struct {
	Title        string  `json:"title" validate:"required,min=3"`
	Location     string  `json:"location" validate:"required"`
	Description  *string `json:"description,omitempty"`
	Difficulty   string  `json:"difficulty" validate:"required,oneof=easy moderate hard extreme"`
	PricePerSeat int64   `json:"price_per_seat" validate:"required,gt=0"`
	Currency     string  `json:"currency" validate:"required,iso4217"`
	DurationDays int     `json:"duration_days" validate:"required,gt=0"`
}

func CreateTrip(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))

	var req TripRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var guide models.Guide
	if err := database.DB.First(&guide, "user_id = ? AND status = ?", guideID, "active").Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only approved guides can create trips"})
	}

	trip := models.Trip{
		GuideID:      guideID,
		Title:        req.Title,
		Location:     req.Location,
		Description:  req.Description,
		Difficulty:   req.Difficulty,
		PricePerSeat: req.PricePerSeat,
		Currency:     req.Currency,
		DurationDays: req.DurationDays,
	}
	if err := database.DB.Omit("Guide").Create(&trip).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create trip"})
	}

	return c.Status(fiber.StatusCreated).JSON(trip)
}

func UpdateTrip(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))
	tripID := c.Params("tripId")

	var trip models.Trip
	if err := database.DB.First(&trip, "id = ? AND guide_id = ?", tripID, guideID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trip not found or you do not have permission to edit it"})
	}

	var req TripRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	trip.Title = req.Title
	trip.Location = req.Location
	trip.Description = req.Description
	trip.Difficulty = req.Difficulty
	trip.PricePerSeat = req.PricePerSeat
	trip.Currency = req.Currency
	trip.DurationDays = req.DurationDays

	if err := database.DB.Omit("Guide").Save(&trip).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update trip"})
	}

	return c.JSON(trip)
}

func DeactivateTrip(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))
	tripID := c.Params("tripId")

	var trip models.Trip
	if err := database.DB.First(&trip, "id = ? AND guide_id = ?", tripID, guideID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trip not found or you do not have permission to edit it"})
	}

	trip.IsActive = false
	if err := database.DB.Omit("Guide").Save(&trip).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate trip"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func ListTrips(c *fiber.Ctx) error {
	var trips []models.Trip
	query := database.DB.Preload("Guide").Where("is_active = ?", true)

	if location := c.Query("location"); location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	if err := query.Find(&trips).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve trips"})
	}

	return c.JSON(trips)
}

func GetTrip(c *fiber.Ctx) error {
	tripID := c.Params("tripId")

	var trip models.Trip
	if err := database.DB.Preload("Guide").First(&trip, "id = ? AND is_active = ?", tripID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trip not found"})
	}

	return c.JSON(trip)
}

func GetMyTrips(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))

	var trips []models.Trip
	database.DB.Where("guide_id = ?", guideID).Find(&trips)

	return c.JSON(trips)
}

type CreateTripDateRequest struct {
	TripID    string `json:"trip_id" validate:"required,uuid"`
	StartTime string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime   string `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	MaxGuests int    `json:"max_guests,omitempty"`
}

func CreateTripDate(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateTripDateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var trip models.Trip
	if err := database.DB.First(&trip, "id = ? AND guide_id = ?", req.TripID, guideID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trip not found or you do not have permission to schedule it"})
	}

	startTime, _ := time.Parse(time.RFC3339, req.StartTime)
	endTime, _ := time.Parse(time.RFC3339, req.EndTime)

	if startTime.After(endTime) || startTime.Equal(endTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Start time must be before end time"})
	}
	if startTime.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Departure date cannot be in the past"})
	}

	maxGuests := 1
	if req.MaxGuests > 1 {
		maxGuests = req.MaxGuests
	}

	newDate := models.TripDate{
		TripID:    trip.ID,
		StartTime: startTime,
		EndTime:   endTime,
		MaxGuests: maxGuests,
	}

	if err := database.DB.Omit("Trip").Create(&newDate).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create trip date"})
	}

	return c.Status(fiber.StatusCreated).JSON(newDate)
}

func GetTripDates(c *fiber.Ctx) error {
	tripID := c.Params("tripId")

	var dates []models.TripDate
	database.DB.Where("trip_id = ? AND status = ? AND start_time > ?", tripID, "available", time.Now()).
		Order("start_time asc").
		Find(&dates)

	return c.JSON(dates)
}

func DeleteTripDate(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	guideID, _ := uuid.Parse(claims["user_id"].(string))
	dateID := c.Params("dateId")

	var date models.TripDate
	if err := database.DB.
		Joins("JOIN trips ON trips.id = trip_dates.trip_id").
		Where("trip_dates.id = ? AND trips.guide_id = ?", dateID, guideID).
		First(&date).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trip date not found or you do not have permission to delete it."})
	}

	if date.Status != "available" || date.CurrentGuests > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot delete a departure that already has bookings."})
	}

	database.DB.Delete(&date)

	return c.SendStatus(fiber.StatusNoContent)
}
