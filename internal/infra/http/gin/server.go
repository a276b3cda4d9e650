package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentdesk/internal/infra/config"
	"rentdesk/internal/infra/obs"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Cancel(c *gin.Context)
	Delete(c *gin.Context)
	List(c *gin.Context)
	Availability(c *gin.Context)
}

type LedgerHTTP interface {
	BookingLedger(c *gin.Context)
	RecordPayment(c *gin.Context)
	DeletePayment(c *gin.Context)
	RecordExpense(c *gin.Context)
}

type PricingHTTP interface {
	SaveConfig(c *gin.Context)
	Quote(c *gin.Context)
}

type ReportHTTP interface {
	Report(c *gin.Context)
	Export(c *gin.Context)
}

type RatesHTTP interface {
	Get(c *gin.Context)
	Put(c *gin.Context)
}

type Handlers struct {
	Booking BookingHTTP
	Ledger  LedgerHTTP
	Pricing PricingHTTP
	Report  ReportHTTP
	Rates   RatesHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine without touching the global gin mode.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", idempotencyHeader, obs.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", obs.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.PUT("/bookings/:id", h.Booking.Update)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.DELETE("/bookings/:id", h.Booking.Delete)
		api.GET("/properties/:id/bookings", h.Booking.List)
		api.GET("/properties/:id/availability", h.Booking.Availability)
	}
	if h.Ledger != nil {
		api.GET("/bookings/:id/ledger", h.Ledger.BookingLedger)
		api.POST("/bookings/:id/payments", h.Ledger.RecordPayment)
		api.DELETE("/payments/:id", h.Ledger.DeletePayment)
		api.POST("/expenses", h.Ledger.RecordExpense)
	}
	if h.Pricing != nil {
		api.PUT("/properties/:id/pricing", h.Pricing.SaveConfig)
		api.GET("/properties/:id/quote", h.Pricing.Quote)
	}
	if h.Report != nil {
		api.GET("/properties/:id/report", h.Report.Report)
		api.POST("/properties/:id/report/export", h.Report.Export)
	}
	if h.Rates != nil {
		api.GET("/rates/ars", h.Rates.Get)
		api.PUT("/rates/ars", h.Rates.Put)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
