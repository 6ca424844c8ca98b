package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"gearbook/internal/infra/config"
	"gearbook/internal/infra/obs"
)

type RentalHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
	Cancel(c *gin.Context)
	StartPayment(c *gin.Context)
	SubmitInspection(c *gin.Context)
	UploadInspectionPhoto(c *gin.Context)
	MyRentals(c *gin.Context)
	OwnerRentals(c *gin.Context)
}

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	Block(c *gin.Context)
	Unblock(c *gin.Context)
}

type EarningsHTTP interface {
	Owner(c *gin.Context)
}

type AdminHTTP interface {
	Refund(c *gin.Context)
	ReleasePayout(c *gin.Context)
}

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type WebhookHTTP interface {
	PaymentEvent(c *gin.Context)
}

type Handlers struct {
	Rental         RentalHTTP
	Availability   AvailabilityHTTP
	Earnings       EarningsHTTP
	Admin          AdminHTTP
	Auth           AuthHTTP
	Webhook        WebhookHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Rental != nil {
		api.POST("/rentals", h.Rental.Create)
		api.GET("/rentals/:id", h.Rental.Get)
		api.POST("/rentals/:id/approve", h.Rental.Approve)
		api.POST("/rentals/:id/reject", h.Rental.Reject)
		api.POST("/rentals/:id/cancel", h.Rental.Cancel)
		api.POST("/rentals/:id/payment-session", h.Rental.StartPayment)
		api.POST("/rentals/:id/inspections", h.Rental.SubmitInspection)
		api.POST("/rentals/:id/inspections/photos", h.Rental.UploadInspectionPhoto)
		api.GET("/me/rentals", h.Rental.MyRentals)
		api.GET("/owner/rentals", h.Rental.OwnerRentals)
	}
	if h.Availability != nil {
		api.GET("/items/:id/calendar", h.Availability.Calendar)
		api.POST("/items/:id/calendar/block", h.Availability.Block)
		api.POST("/items/:id/calendar/unblock", h.Availability.Unblock)
	}
	if h.Earnings != nil {
		api.GET("/owner/earnings", h.Earnings.Owner)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.POST("/rentals/:id/refund", h.Admin.Refund)
		adminGroup.POST("/rentals/:id/payout", h.Admin.ReleasePayout)
	}
	if h.Webhook != nil {
		api.POST("/payments/webhook", h.Webhook.PaymentEvent)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
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
