package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/Suryansh777777/Mathmatika/internal/client"
	"github.com/Suryansh777777/Mathmatika/internal/codegen"
	"github.com/Suryansh777777/Mathmatika/internal/config"
	"github.com/Suryansh777777/Mathmatika/internal/handler"
	"github.com/Suryansh777777/Mathmatika/internal/lint"
	"github.com/Suryansh777777/Mathmatika/internal/middleware"
	"github.com/Suryansh777777/Mathmatika/internal/service"
	"github.com/Suryansh777777/Mathmatika/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The pipeline writes scratch files and final videos; both roots must
	// exist before the first job.
	for _, dir := range []string{cfg.Paths.StaticDir, cfg.Paths.VideosDir, cfg.Paths.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	// Initialize Redis client (optional - rate limiting and job records
	// degrade gracefully without it)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize external clients and pipeline components
	openRouterClient := client.NewOpenRouterClient(&cfg.OpenRouter)
	if !openRouterClient.IsConfigured() {
		log.Println("Info: completion provider not configured, using template generation only")
	}

	generator := codegen.NewGenerator(openRouterClient)
	linter := lint.New(&cfg.Linter)
	executor := worker.NewExecutor(&cfg.Render)
	registry := worker.NewRegistry()
	store := service.NewJobStore(redisClient)

	animationService := service.NewAnimationService(generator, linter, executor, registry, store, cfg)
	animationHandler := handler.NewAnimationHandler(animationService, store, validate)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"openrouter": openRouterClient.IsConfigured(),
				"redis":      redisClient.Ping(c.Context()).Err() == nil,
			},
			"activeRenders": animationService.ActiveCount(),
		})
	})

	// Rendered videos
	app.Static("/static", cfg.Paths.StaticDir)

	// API routes
	api := app.Group("/api")

	animations := api.Group("/animations")
	animations.Post("/generate", rateLimiter.RenderLimit(cfg.RateLimit.RenderPerHour), animationHandler.Generate)
	animations.Post("/generate-multiple", rateLimiter.BatchLimit(cfg.RateLimit.BatchPerHour), animationHandler.GenerateMultiple)
	animations.Get("/active", animationHandler.Active)
	animations.Get("/templates", animationHandler.Templates)
	animations.Get("/:jobId", animationHandler.Status)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
