package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/courierpwa/courier-ops/docs" // Swagger docs
	"github.com/courierpwa/courier-ops/internal/api/handler"
	"github.com/courierpwa/courier-ops/internal/api/middleware"
	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// Deps carries everything the router needs. NATS is nil unless lifecycle
// events are published over NATS.
type Deps struct {
	DB    *mongo.Database
	Redis *redis.Client
	NATS  *nats.Conn

	JWTSecret string
	Logger    zerolog.Logger

	Auth          ports.AuthService
	Staff         ports.StaffService
	Parcels       ports.ParcelService
	Notifications ports.NotificationService
	Ledger        ports.LedgerService
	Destinations  ports.DestinationService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("courier"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	staffHandler := handler.NewStaffHandler(d.Staff)
	parcelHandler := handler.NewParcelHandler(d.Parcels, d.Notifications)
	ledgerHandler := handler.NewLedgerHandler(d.Ledger)
	destinationHandler := handler.NewDestinationHandler(d.Destinations)

	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Public routes ---
	e.POST("/auth/session", authHandler.Session)
	e.GET("/v1/track/:tracking_code", parcelHandler.Track)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret, d.Staff))

	v1.GET("/me", staffHandler.Me)
	v1.GET("/dashboard", parcelHandler.Dashboard)

	v1.POST("/parcels", parcelHandler.Create)
	v1.GET("/parcels", parcelHandler.List)
	v1.GET("/parcels/:id", parcelHandler.Get)
	v1.PATCH("/parcels/:id/status", parcelHandler.UpdateStatus)
	v1.POST("/parcels/:id/sms", parcelHandler.SendSMS)

	v1.GET("/wallet", ledgerHandler.MyWallet)
	v1.GET("/wallets/:staff_id", ledgerHandler.StaffWallet, adminOnly)
	v1.GET("/ledger", ledgerHandler.List)
	v1.POST("/ledger", ledgerHandler.Append, adminOnly)

	v1.GET("/destinations", destinationHandler.List)
	v1.POST("/destinations", destinationHandler.Create, adminOnly)
	v1.PUT("/destinations/:id", destinationHandler.Update, adminOnly)
	v1.DELETE("/destinations/:id", destinationHandler.Delete, adminOnly)

	staff := v1.Group("/staff", adminOnly)
	staff.GET("", staffHandler.List)
	staff.POST("", staffHandler.Create)
	staff.PUT("/:id", staffHandler.Update)
	staff.DELETE("/:id", staffHandler.Delete)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.DB, d.Redis, d.NATS)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
