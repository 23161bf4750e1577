package transport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gateon/ticketing/internal/transport/middleware"
)

func InitRoutes(
	promoHandler *PromoHandler,
	eventHandler *EventHandler,
	bookingHandler *BookingHandler,
	checkinHandler *CheckinHandler,
) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30 * time.Second))

	// API routes
	api := router.Group("/api/v1")
	{
		// Promo routes
		promos := api.Group("/promos")
		{
			promos.POST("", promoHandler.AddPromo)
			promos.GET("", promoHandler.GetAllPromos)
			promos.GET("/:code", promoHandler.GetPromo)
			promos.DELETE("/:code", promoHandler.DeactivatePromo)
		}

		// Pricing routes
		api.POST("/pricing/quote", bookingHandler.Quote)

		// Event routes
		events := api.Group("/events")
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("", eventHandler.GetAllEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.POST("/:id/tickets", eventHandler.CreateTicket)
			events.GET("/:id/stats", eventHandler.GetEventStats)
			events.GET("/:id/bookings", bookingHandler.GetEventBookings)
			events.GET("/:id/tickets/:ticket_id/sold", bookingHandler.GetSoldQuantity)
		}
		api.GET("/tickets/:id", eventHandler.GetTicket)

		// Booking routes
		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.GetAllBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.DELETE("/:id", bookingHandler.CancelBooking)
		}

		// Check-in routes
		checkin := api.Group("/checkin")
		{
			checkin.POST("", checkinHandler.CheckIn)
			checkin.GET("/:code", checkinHandler.Resolve)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	return router
}
