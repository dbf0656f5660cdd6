// @title SmartStudy Quiz API
// @version 1.0
// @description Generates multiple-choice quizzes from study material with Gemini models.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "smartstudy/cmd/api/docs"
	"smartstudy/internal/app"
	"smartstudy/internal/config"
	"smartstudy/internal/handler"
	"smartstudy/internal/logger"
	"smartstudy/internal/middleware"
	"smartstudy/internal/validation"

	"github.com/gofiber/swagger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	if cfg.Gemini.APIKey == "" {
		appLogger.Warn("GEMINI_API_KEY is not set; requests must carry api_key")
	}

	services, err := app.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()
	appLogger.Info("Generation pipeline initialized",
		zap.Strings("models", services.Registry.Names()),
		zap.Int("batch_size", cfg.Generation.BatchSize),
		zap.Bool("redis", services.Cache != nil),
	)

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(services.Quizzes, services.Extraction, services.Jobs)
	healthHandler := handler.NewHealthHandler(services.Cache, services.Extractor)
	validationMiddleware := middleware.NewValidationMiddleware(validation.NewValidator(services.Registry.Names()))

	// Create Fiber app
	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	fiberApp.Use(middleware.RequestLogger())
	fiberApp.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID", MaxAge: 300}))
	fiberApp.Use(recover.New())

	fiberApp.Get("/swagger/*", swagger.HandlerDefault)
	handler.RegisterRoutes(fiberApp, quizHandler, healthHandler, validationMiddleware)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := fiberApp.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := fiberApp.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := services.Jobs.Shutdown(ctx); err != nil {
		appLogger.Warn("Generation jobs still running at shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
