// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cabswift/internal/http/handlers"
	"cabswift/internal/http/middleware"
	"cabswift/internal/modules/booking"
	"cabswift/internal/modules/vehicle"
)

func NewRouter(
	bookingService *booking.Service,
	vehicleService *vehicle.Service,
	jwtSecret string,
) http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logging())
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.Use(middleware.Auth(jwtSecret))

	bookingHandler := handlers.NewBookingHandler(bookingService)
	api.POST("/bookings", bookingHandler.Create)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	api.POST("/bookings/:id/assign", bookingHandler.Assign)
	api.POST("/bookings/:id/enroute", bookingHandler.EnRoute)
	api.POST("/bookings/:id/arrive", bookingHandler.Arrived)
	api.POST("/bookings/:id/start", bookingHandler.Start)
	api.POST("/bookings/:id/complete", bookingHandler.Complete)
	api.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	api.POST("/bookings/:id/rating", bookingHandler.Rate)
	api.GET("/bookings/:id/receipt", bookingHandler.Receipt)

	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	api.POST("/vehicles", vehicleHandler.Register)
	api.GET("/vehicles/:id", vehicleHandler.Get)

	return r
}
