package routes

import (
	"github.com/anjiri1684/therapy_booking/handlers"
	"github.com/anjiri1684/therapy_booking/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected(d.JWTSecret))
	booking.Post("", handlers.CreateBooking(d.Coordinator, d.TimeCapHours, d.Logger))
	booking.Get("/:orderId", handlers.GetBooking(d.Coordinator, d.Prices, d.Logger))
	booking.Post("/:orderId/cancel", handlers.CancelBooking(d.Coordinator, d.Logger))

	therapistBooking := api.Group("/therapist/bookings", middleware.Protected(d.JWTSecret), middleware.TherapistRequired())
	therapistBooking.Post("/:orderId/complete", handlers.CompleteBooking(d.Coordinator, d.Logger))
}
