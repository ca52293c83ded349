package handlers

import (
	"errors"

	"github.com/anjiri1684/therapy_booking/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// respondError maps engine outcomes onto HTTP. Conflicts are an expected
// result of racing for a slot; the client should refresh and pick again.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	if !services.IsClientError(err) {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	status := fiber.StatusBadRequest
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrPolicyViolation):
		status = fiber.StatusUnprocessableEntity
	}
	logger.Debug("request rejected", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}
