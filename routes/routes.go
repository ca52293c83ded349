package routes

import (
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/anjiri1684/therapy_booking/websocket"
	"go.uber.org/zap"
)

// Deps is everything the HTTP layer calls into.
type Deps struct {
	Coordinator  *services.BookingCoordinator
	Generator    *services.ScheduleGenerator
	Prices       *services.PriceResolver
	Hub          *websocket.Hub
	JWTSecret    string
	TimeCapHours int
	Logger       *zap.Logger
}
