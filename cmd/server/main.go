package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/borrzu/verify-service/internal/config"
	"github.com/borrzu/verify-service/internal/handler"
	"github.com/borrzu/verify-service/internal/handler/middleware"
	"github.com/borrzu/verify-service/internal/ierr"
	"github.com/borrzu/verify-service/internal/service"
	"github.com/borrzu/verify-service/internal/storage/memstorage"
	"github.com/borrzu/verify-service/internal/storage/postgres"
	"github.com/borrzu/verify-service/internal/storage/redis"
	"github.com/borrzu/verify-service/internal/worker"
	"github.com/borrzu/verify-service/pkg/logger"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()

	sugarLogger.Info("Starting application...")
	sugarLogger.Infof("Log level set to: %s", cfg.Log.Level)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.NewPgxPool(appCtx, &cfg.Database, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbPool.Close()

	redisClient, err := redis.NewRedisClient(appCtx, &cfg.Redis, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	secretKeyRepo := postgres.NewSecretKeyRepository(dbPool, appLogger)
	apiLogRepo := postgres.NewAPILogRepository(dbPool, appLogger)
	userRepo := postgres.NewUserRepository(dbPool, appLogger)
	purchaseRepo := postgres.NewPurchaseRepository(dbPool, appLogger)
	adminRepo := memstorage.NewAdminRepository()

	keygenLimiter := redis.NewKeygenRateLimiter(redisClient, cfg.RateLimit.KeygenCooldown, appLogger)

	secretKeyService := service.NewSecretKeyService(secretKeyRepo, keygenLimiter, appLogger)
	apiLogService := service.NewAPILogService(asynqClient, apiLogRepo, appLogger)
	verificationService := service.NewVerificationService(userRepo, secretKeyRepo, purchaseRepo, cfg.Commerce, cfg.Site, appLogger)
	authService := service.NewAuthService(adminRepo, &cfg.Auth, appLogger)

	healthHandler := handler.NewHealthHandler(dbPool, redisClient, appLogger)
	verifyHandler := handler.NewVerifyHandler(verificationService, apiLogService, appLogger)
	secretKeyHandler := handler.NewSecretKeyHandler(secretKeyService, appLogger)
	apiLogHandler := handler.NewAPILogHandler(apiLogService, appLogger)
	authHandler := handler.NewAuthHandler(authService, appLogger)

	authMiddleware := middleware.AuthMiddleware(authService, appLogger)
	keyAuthMiddleware := middleware.KeyAuthMiddleware(secretKeyService, appLogger)
	errorMiddleware := middleware.ErrorHandlerMiddleware(appLogger)

	router := gin.New()
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logMsg := "Panic recovered"
		if err, ok := recovered.(string); ok {
			logMsg = fmt.Sprintf("%s: %s", logMsg, err)
		} else if err, ok := recovered.(error); ok {
			logMsg = fmt.Sprintf("%s: %v", logMsg, err)
		}
		appLogger.Error(logMsg, zap.Stack("stack"))

		_ = c.Error(ierr.ErrInternalServer)
		c.Abort()
	}))

	corsConfig := cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			middleware.SecretKeyHeader,
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))
	router.Use(errorMiddleware)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	verifyRoutes := router.Group("/borrzu/v1")
	{
		verifyRoutes.GET("/verify", verifyHandler.Status)
		verifyRoutes.POST("/verify-user", keyAuthMiddleware, verifyHandler.VerifyUser)
		verifyRoutes.POST("/verify-purchase", keyAuthMiddleware, verifyHandler.VerifyPurchase)
	}

	authRoutes := router.Group("/api/v1/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	apiV1 := router.Group("/api/v1")
	apiV1.Use(authMiddleware)
	{
		apiV1.POST("/users/:id/secret-key", secretKeyHandler.Generate)
		apiV1.GET("/users/:id/secret-key", secretKeyHandler.Get)
		apiV1.DELETE("/users/:id/secret-key", secretKeyHandler.Delete)

		apiV1.GET("/logs", apiLogHandler.List)
	}

	g, groupCtx := errgroup.WithContext(appCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		sugarLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugarLogger.Errorf("HTTP server ListenAndServe error: %v", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		sugarLogger.Info("HTTP server stopped listening.")
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		sugarLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			sugarLogger.Errorf("HTTP server graceful shutdown failed: %v", err)
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("HTTP server shutdown complete.")
		return nil
	})

	g.Go(func() error {
		if err := worker.RunWorkers(groupCtx, cfg, apiLogRepo, appLogger); err != nil {
			sugarLogger.Error("Asynq worker failed", zap.Error(err))
			return fmt.Errorf("asynq worker error: %w", err)
		}
		sugarLogger.Info("Asynq workers finished gracefully.")
		return nil
	})

	sugarLogger.Info("Application started. Waiting for interrupt signal (Ctrl+C) or component error...")

	waitErr := g.Wait()

	sugarLogger.Info("Shutdown sequence finished.")

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) {
			sugarLogger.Info("Shutdown reason: Context canceled (likely due to OS signal).")
		} else if errors.Is(waitErr, http.ErrServerClosed) {
			sugarLogger.Info("Shutdown reason: HTTP server closed normally.")
		} else {
			sugarLogger.Errorf("Application shutdown finished with unexpected error: %v", waitErr)
		}
	} else {
		sugarLogger.Info("Application shutdown successfully (all components finished without errors).")
	}

	sugarLogger.Info("Application exiting now.")
}
