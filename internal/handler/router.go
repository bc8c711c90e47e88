package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/handler/api"
	"escrowbook/internal/handler/middleware"
	"escrowbook/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	bookingHandler *api.BookingHandler,
	availabilityHandler *api.AvailabilityHandler,
	offeringHandler *api.OfferingHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, bookingHandler, availabilityHandler, offeringHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	bookingHandler *api.BookingHandler,
	availabilityHandler *api.AvailabilityHandler,
	offeringHandler *api.OfferingHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		offerings := apiGroup.Group("/offerings")
		{
			// Availability is public: customers browse before authenticating.
			addRoutes(offerings, []route{
				{Method: http.MethodGet, Path: "/:id/availability", Handler: availabilityHandler.GetMonth},
				{Method: http.MethodGet, Path: "/:id/availability/:date", Handler: availabilityHandler.GetDay},
			})

			providerOnly := offerings.Group("")
			providerOnly.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(booking.RoleProvider))
			addRoutes(providerOnly, []route{
				{Method: http.MethodPost, Path: "", Handler: offeringHandler.CreateOffering},
				{Method: http.MethodGet, Path: "", Handler: offeringHandler.ListMyOfferings},
				{Method: http.MethodPut, Path: "/:id/schedule", Handler: offeringHandler.ReplaceSchedule},
			})
		}

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.CreateBooking,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRole(booking.RoleCustomer)}},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListMyBookings},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetBooking},
				{Method: http.MethodPost, Path: "/:id/transitions", Handler: bookingHandler.ApplyTransition},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: bookingHandler.CancelBooking},
				{Method: http.MethodPost, Path: "/:id/fund", Handler: bookingHandler.FundBooking,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRole(booking.RoleCustomer, booking.RolePlatform)}},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: bookingHandler.RequestCompletion},
			})
		}

		provider := apiGroup.Group("/provider")
		provider.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(booking.RoleProvider))
		{
			addRoutes(provider, []route{
				{Method: http.MethodGet, Path: "/bookings", Handler: bookingHandler.ListProviderBookings},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
