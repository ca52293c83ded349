package handlers

import (
	"time"

	"github.com/anjiri1684/therapy_booking/middleware"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultAvailabilityWindow = 14 * 24 * time.Hour
	maxAvailabilityWindow     = 90 * 24 * time.Hour
)

// GetTherapistSlots lists a therapist's slots in [from, to), both RFC3339.
// Without a range it shows the next two weeks.
func GetTherapistSlots(coordinator *services.BookingCoordinator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		therapistID, ok := paramID(c, "therapistId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid therapist id"})
		}

		from := time.Now().UTC()
		if raw := c.Query("from"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be RFC3339"})
			}
			from = parsed
		}
		to := from.Add(defaultAvailabilityWindow)
		if raw := c.Query("to"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be RFC3339"})
			}
			to = parsed
		}
		if to.Sub(from) > maxAvailabilityWindow {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from and to may be at most 90 days apart"})
		}

		slots, err := coordinator.Slots(c.UserContext(), therapistID, from, to)
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(slots)
	}
}

type GenerateWeekRequest struct {
	WeekStart string `json:"week_start" validate:"required,datetime=2006-01-02"`
	Hours     []int  `json:"hours" validate:"required,min=1,dive,min=0,max=23"`
	TimeZone  string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}

func GenerateWeek(generator *services.ScheduleGenerator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		therapistID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}

		var req GenerateWeekRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		weekStart, _ := time.Parse(time.DateOnly, req.WeekStart)

		created, err := generator.GenerateWeek(c.UserContext(), services.WeekTemplate{
			TherapistID: therapistID,
			TimeZone:    req.TimeZone,
			WeekStart:   weekStart,
			Hours:       req.Hours,
		})
		if err != nil {
			return respondError(c, logger, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"created": len(created),
			"slots":   created,
		})
	}
}

// ToggleSlot switches one of the caller's own slots on or off.
func ToggleSlot(coordinator *services.BookingCoordinator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		therapistID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}
		slotID, ok := paramID(c, "slotId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid slot id"})
		}

		slot, err := coordinator.Slot(c.UserContext(), slotID)
		if err != nil {
			return respondError(c, logger, err)
		}
		if slot.TherapistID != therapistID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This slot is not yours"})
		}

		slot, err = coordinator.Toggle(c.UserContext(), slotID, time.Now().UTC())
		if err != nil {
			return respondError(c, logger, err)
		}
		return c.JSON(slot)
	}
}

type ToggleSlotAtRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Hour *int   `json:"hour" validate:"required,min=0,max=23"`
}

func ToggleSlotAt(coordinator *services.BookingCoordinator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		therapistID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}

		var req ToggleSlotAtRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		date, _ := time.Parse(time.DateOnly, req.Date)

		slot, created, err := coordinator.ToggleAt(c.UserContext(), services.ToggleAtRequest{
			TherapistID: therapistID,
			Date:        date,
			Hour:        *req.Hour,
			Now:         time.Now().UTC(),
		})
		if err != nil {
			return respondError(c, logger, err)
		}

		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(slot)
	}
}

func DeleteSlot(coordinator *services.BookingCoordinator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		therapistID, err := middleware.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}
		slotID, ok := paramID(c, "slotId")
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid slot id"})
		}

		slot, err := coordinator.Slot(c.UserContext(), slotID)
		if err != nil {
			return respondError(c, logger, err)
		}
		if slot.TherapistID != therapistID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This slot is not yours"})
		}

		if err := coordinator.Remove(c.UserContext(), slotID); err != nil {
			return respondError(c, logger, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
