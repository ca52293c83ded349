package handlers

import (
	"github.com/anjiri1684/therapy_booking/middleware"
	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SetPriceRequest struct {
	Currency    string  `json:"currency" validate:"required,iso4217"`
	SessionType string  `json:"session_type" validate:"required,oneof=individual couple"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Slug        *string `json:"slug,omitempty" validate:"omitempty,max=100"`
}

// SetMyPrice replaces the caller's current price for a currency and
// session type. Orders already placed keep the amount they were booked at.
func SetMyPrice(prices *services.PriceResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		therapistID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}

		var req SetPriceRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		price, err := prices.SetPrice(c.UserContext(), services.SetPriceRequest{
			TherapistID: therapistID,
			Currency:    req.Currency,
			SessionType: models.SessionType(req.SessionType),
			Amount:      req.Amount,
			Slug:        req.Slug,
		})
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(price)
	}
}

func ListMyPrices(prices *services.PriceResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		therapistID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}

		list, err := prices.List(c.UserContext(), therapistID)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(list)
	}
}

func GetTherapistPrice(prices *services.PriceResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		therapistID, ok := paramID(c, "therapistId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid therapist id"})
		}

		price, err := prices.Resolve(c.UserContext(), therapistID, c.Query("currency"), models.SessionType(c.Query("session_type", string(models.SessionIndividual))))
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(price)
	}
}
