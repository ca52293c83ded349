package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Protected verifies the bearer token issued by the auth service.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func TherapistRequired() fiber.Handler {
	return roleRequired("therapist", "Forbidden: Therapist access required")
}

func roleRequired(role, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := tokenClaims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired JWT"})
		}
		if got, _ := claims["role"].(string); got != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": message})
		}
		return c.Next()
	}
}

// UserID returns the caller's id from the verified token.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := tokenClaims(c)
	if !ok {
		return uuid.Nil, errors.New("missing token")
	}
	raw, _ := claims["user_id"].(string)
	return uuid.Parse(raw)
}

func tokenClaims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}
