package routes

import (
	"github.com/anjiri1684/therapy_booking/handlers"
	"github.com/anjiri1684/therapy_booking/middleware"
	"github.com/gofiber/fiber/v2"
)

func TherapistRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api/v1")

	api.Get("/therapists/:therapistId/slots", handlers.GetTherapistSlots(d.Coordinator, d.Logger))
	api.Get("/therapists/:therapistId/price", handlers.GetTherapistPrice(d.Prices, d.Logger))
	if d.Hub != nil {
		api.Get("/therapists/:therapistId/slots/stream", handlers.UpgradeSlotStream, handlers.StreamSlots(d.Hub))
	}

	therapist := api.Group("/therapist", middleware.Protected(d.JWTSecret), middleware.TherapistRequired())
	therapist.Post("/schedule/week", handlers.GenerateWeek(d.Generator, d.Logger))

	slots := therapist.Group("/slots")
	slots.Post("/toggle", handlers.ToggleSlotAt(d.Coordinator, d.Logger))
	slots.Post("/:slotId/toggle", handlers.ToggleSlot(d.Coordinator, d.Logger))
	slots.Delete("/:slotId", handlers.DeleteSlot(d.Coordinator, d.Logger))

	prices := therapist.Group("/prices")
	prices.Get("", handlers.ListMyPrices(d.Prices, d.Logger))
	prices.Put("", handlers.SetMyPrice(d.Prices, d.Logger))
}
