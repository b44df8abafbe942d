package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"quotaguard/internal/config"
	"quotaguard/internal/features/api_keys"
	"quotaguard/internal/features/auth"
	"quotaguard/internal/features/rate_limit"
	"quotaguard/internal/features/request_logs"
	"quotaguard/internal/features/security_events"
	system_healthcheck "quotaguard/internal/features/system/healthcheck"
	"quotaguard/internal/features/usage"
	counter_utils "quotaguard/internal/util/counter"
	env_utils "quotaguard/internal/util/env"
	"quotaguard/internal/util/logger"
	_ "quotaguard/swagger" // swagger docs

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title QuotaGuard API
// @version 1.0
// @description Quota and identity enforcement API
// @termsOfService http://swagger.io/terms/

// @host localhost:4010
// @BasePath /api/v1
// @schemes http
func main() {
	log := logger.GetLogger()
	config.StartListeningForShutdownSignal()

	runMigrations(log)

	counter_utils.TestCounterStoreConnection()

	go generateSwaggerDocs(log)

	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	ginApp.Use(gzip.Gzip(gzip.DefaultCompression))

	enableCors(ginApp)
	setUpRoutes(ginApp)
	runBackgroundTasks(log)

	startServerWithGracefulShutdown(log, ginApp)
}

func startServerWithGracefulShutdown(log *slog.Logger, app *gin.Engine) {
	host := ""
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// for dev we use localhost to avoid firewall
		// requests on each run for Windows
		host = "127.0.0.1"
	}

	srv := &http.Server{
		Addr:    host + ":4010",
		Handler: app,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen:", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	// The context is used to inform the server it has 10 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown:", "error", err)
	}

	log.Info("Server gracefully stopped")
}

func setUpRoutes(r *gin.Engine) {
	env := config.GetEnv()
	engine := rate_limit.GetEngine()
	eventService := security_events.GetSecurityEventService()
	bypassed := env.IsRateLimitBypassed()

	v1 := r.Group("/api/v1")

	v1.Use(auth.RequestIDMiddleware())

	// Mount Swagger UI
	v1.GET("/docs/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The IP tier runs before any credential check; the merchant and key
	// tiers are mounted after key auth because identity only exists there
	v1.Use(rate_limit.Middleware(engine, eventService, rate_limit.MiddlewareConfig{
		IPLimit:     env.RateLimitIpLimit,
		IPWindowSec: env.RateLimitIpWindowSec,
		SkipPaths:   env.RateLimitSkipPathList(),
		Bypass:      bypassed,
	}))

	// Public routes; validation is bcrypt-bound so it carries its own
	// endpoint budget on top of the IP tier
	system_healthcheck.GetHealthcheckController().RegisterRoutes(v1)

	publicKeyRoutes := v1.Group("")
	if !bypassed {
		publicKeyRoutes.Use(rate_limit.EndpointMiddleware(
			engine, eventService,
			"api-keys/validate",
			env.RateLimitValidateLimit, env.RateLimitValidateWinSec,
		))
	}
	api_keys.GetApiKeyController().RegisterRoutes(publicKeyRoutes)

	// Merchant routes authenticate with an API key; usage is metered on
	// response completion
	merchantRoutes := v1.Group("")
	merchantRoutes.Use(auth.ApiKeyAuthMiddleware(
		api_keys.GetApiKeyService(),
		eventService,
	))
	if !bypassed {
		merchantRoutes.Use(rate_limit.MerchantMiddleware(
			engine, eventService,
			env.RateLimitTenantLimit, env.RateLimitTenantWindowSec,
		))
		merchantRoutes.Use(rate_limit.ApiKeyMiddleware(
			engine, eventService,
			env.RateLimitKeyLimit, env.RateLimitKeyWindowSec,
		))
	}
	merchantRoutes.Use(usage.TrackingMiddleware(
		usage.GetUsageService(),
		request_logs.GetRequestLogService(),
	))
	merchantRoutes.Use(auth.RequireMerchantMatch())
	merchantRoutes.Use(auth.RequirePermission(eventService, "usage:read"))
	usage.GetUsageController().RegisterRoutes(merchantRoutes)

	// Administrative routes
	adminRoutes := v1.Group("/admin")
	adminRoutes.Use(auth.AdminAuthMiddleware(env.AdminJwtSecret))
	api_keys.GetApiKeyController().RegisterAdminRoutes(adminRoutes)
	usage.GetUsageController().RegisterAdminRoutes(adminRoutes)
	security_events.GetSecurityEventController().RegisterRoutes(adminRoutes)
}

func runBackgroundTasks(log *slog.Logger) {
	log.Info("Preparing to run background tasks...")

	api_keys.GetApiKeySweepService().StartWorkers()
	usage.GetUsageRollupService().StartWorkers()

	log.Info("Background tasks started successfully")
}

// Keep in mind: docs appear after second launch, because Swagger
// is generated into Go files. So if we changed files, we generate
// new docs, but still need to restart the server to see them.
func generateSwaggerDocs(log *slog.Logger) {
	if config.GetEnv().EnvMode == env_utils.EnvModeProduction {
		return
	}

	currentDir, err := os.Getwd()
	if err != nil {
		log.Error("Failed to get current directory", "error", err)
		return
	}

	cmd := exec.Command("swag", "init", "-d", currentDir, "-g", "cmd/main.go", "-o", "swagger")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to generate Swagger docs", "error", err, "output", string(output))
		return
	}

	log.Info("Swagger documentation generated successfully")
}

func runMigrations(log *slog.Logger) {
	log.Info("Running database migrations...")

	cmd := exec.Command("goose", "up")
	cmd.Env = append(
		os.Environ(),
		"GOOSE_DRIVER=postgres",
		"GOOSE_DBSTRING="+config.GetEnv().DatabaseDsn,
		"GOOSE_MIGRATION_DIR=migrations",
	)

	cmd.Dir = config.GetEnv().RootPath

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to run migrations", "error", err, "output", string(output))
		os.Exit(1)
	}

	log.Info("Database migrations completed successfully", "output", string(output))
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		ginApp.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Authorization",
				"Accept",
				"X-Request-Id",
			},
			AllowCredentials: true,
		}))
	}
}
