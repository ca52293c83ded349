package handlers

import (
	"time"

	"github.com/anjiri1684/therapy_booking/middleware"
	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateBookingRequest struct {
	SlotID      string `json:"slot_id" validate:"required,uuid"`
	Currency    string `json:"currency" validate:"required,iso4217"`
	SessionType string `json:"session_type" validate:"required,oneof=individual couple"`
}

func CreateBooking(coordinator *services.BookingCoordinator, timeCapHours int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}

		var req CreateBookingRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		result, err := coordinator.Book(c.UserContext(), services.BookingRequest{
			SlotID:       uuid.MustParse(req.SlotID),
			ClientID:     clientID,
			Currency:     req.Currency,
			SessionType:  models.SessionType(req.SessionType),
			TimeCapHours: timeCapHours,
			Now:          time.Now().UTC(),
		})
		if err != nil {
			return respondError(c, logger, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"slot":  result.Slot,
			"order": result.Order,
		})
	}
}

func CancelBooking(coordinator *services.BookingCoordinator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}
		orderID, ok := paramID(c, "orderId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
		}

		result, err := coordinator.Cancel(c.UserContext(), services.CancelRequest{
			OrderID:  orderID,
			ClientID: clientID,
			Now:      time.Now().UTC(),
		})
		if err != nil {
			return respondError(c, logger, err)
		}

		return c.JSON(fiber.Map{
			"message": "Booking cancelled. The payment is eligible for a refund.",
			"order":   result.Order,
		})
	}
}

// GetBooking shows an order to its client or its therapist, together with
// the price it was placed against.
func GetBooking(coordinator *services.BookingCoordinator, prices *services.PriceResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}
		orderID, ok := paramID(c, "orderId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
		}

		order, err := coordinator.Order(c.UserContext(), orderID)
		if err != nil {
			return respondError(c, logger, err)
		}
		if order.ClientID != userID && order.TherapistID != userID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		}

		slot, err := coordinator.Slot(c.UserContext(), order.SlotID)
		if err != nil {
			return respondError(c, logger, err)
		}
		price, err := prices.Historical(c.UserContext(), order.PriceID)
		if err != nil {
			return respondError(c, logger, err)
		}

		return c.JSON(fiber.Map{
			"order":        order,
			"slot":         slot,
			"booked_price": price,
		})
	}
}

type CompleteBookingRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=done failed"`
}

func CompleteBooking(coordinator *services.BookingCoordinator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		therapistID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}
		orderID, ok := paramID(c, "orderId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
		}

		var req CompleteBookingRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		result, err := coordinator.Complete(c.UserContext(), services.CompleteRequest{
			OrderID:     orderID,
			TherapistID: therapistID,
			Outcome:     services.Outcome(req.Outcome),
			Now:         time.Now().UTC(),
		})
		if err != nil {
			return respondError(c, logger, err)
		}

		return c.JSON(fiber.Map{"slot": result.Slot, "order": result.Order})
	}
}
