package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/mikleaka/intonation-identity/docs"
	"github.com/mikleaka/intonation-identity/internal/api/handler"
	"github.com/mikleaka/intonation-identity/internal/api/middleware"
	"github.com/mikleaka/intonation-identity/internal/core/ports"
	"github.com/mikleaka/intonation-identity/internal/core/service"
	"github.com/mikleaka/intonation-identity/internal/infrastructure/config"
	"github.com/mikleaka/intonation-identity/internal/pkg/password"
	"github.com/mikleaka/intonation-identity/internal/pkg/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// Dependencies are constructed here once and handed to each component; no
// ambient global lookup.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, repo ports.AccountRepository, queue ports.DeliveryQueue, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	hasher := password.NewHasher()
	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenIssuer, cfg.TokenAudience, cfg.TokenTTL)
	registrationService := service.NewRegistrationService(repo, hasher, queue, log)
	authService := service.NewAuthService(repo, hasher, codec, log)
	passwordService := service.NewPasswordService(repo, hasher, log)
	authHandler := handler.NewAuthHandler(registrationService, authService)
	accountHandler := handler.NewAccountHandler(authService, passwordService)
	authMiddleware := middleware.Auth(codec, repo)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/verify", authHandler.Verify)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/account-status", authHandler.Status)

	// --- Authenticated routes ---
	e.GET("/user/profile", accountHandler.Profile, authMiddleware)
	e.POST("/change-password", accountHandler.ChangePassword, authMiddleware)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops surface ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
