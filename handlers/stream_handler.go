package handlers

import (
	slotstream "github.com/anjiri1684/therapy_booking/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func UpgradeSlotStream(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, ok := paramID(c, "therapistId"); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid therapist id"})
	}
	return c.Next()
}

// StreamSlots pushes the therapist's slot events to the connected client.
func StreamSlots(hub *slotstream.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		therapistID, err := uuid.Parse(c.Params("therapistId"))
		if err != nil {
			c.Close()
			return
		}
		hub.Serve(therapistID, c)
	})
}
