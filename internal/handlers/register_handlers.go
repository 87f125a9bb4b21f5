package handlers

import (
	"fmt"
	"net/http"

	"github.com/SscSPs/gestion_caisse/cmd/docs"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/dto"
	"github.com/SscSPs/gestion_caisse/internal/middleware"
	"github.com/SscSPs/gestion_caisse/internal/platform/config"
	"github.com/SscSPs/gestion_caisse/internal/utils"
	pkgredis "github.com/SscSPs/gestion_caisse/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteOptions carries the optional infrastructure the routes are wrapped with.
// Nil fields disable the matching middleware.
type RouteOptions struct {
	LoginLimiter     *limiter.Limiter
	APILimiter       *limiter.Limiter
	IdempotencyStore pkgredis.IdempotencyStore
	MetricsHandler   http.Handler
	Posthog          *utils.PosthogClientWrapper
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) error {
	if err := registerValidators(); err != nil {
		return err
	}

	r.Use(cors.New(corsConfig(cfg)))

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	var loginLimit gin.HandlerFunc
	if opts.LoginLimiter != nil {
		loginLimit = middleware.RateLimit(opts.LoginLimiter, "login")
	}

	// Register public authentication routes
	registerAuthRoutes(r, services, loginLimit)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, opts)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	if opts.APILimiter != nil {
		v1.Use(middleware.RateLimit(opts.APILimiter, "api"))
	}
	v1.Use(middleware.PosthogMiddleware(opts.Posthog))

	idempotent := middleware.Idempotency(opts.IdempotencyStore, cfg.IdempotencyTTL)

	// Delegate route registration to specific handlers, passing required services
	registerMeRoutes(v1, services)
	registerOperationRoutes(v1, services.Operation, idempotent)
	registerBalanceRoutes(v1, services.Balance)
	registerHistoryRoutes(v1, services.History)
	registerReportingRoutes(v1, services.Reporting)
	registerAdminRoutes(v1, services.User)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = cfg.CORSAllowedOrigins
	if len(c.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", middleware.IdempotencyKeyHeader, "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", middleware.IdempotentReplayedHeader}
	return c
}

// registerValidators installs the custom binding tags on gin's validator.
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return dto.RegisterValidators(v)
}
