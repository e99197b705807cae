package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/outfitly/outfit-calendar/internal/api/http"
	"github.com/outfitly/outfit-calendar/internal/calendar"
	"github.com/outfitly/outfit-calendar/internal/config"
	"github.com/outfitly/outfit-calendar/internal/metrics"
	"github.com/outfitly/outfit-calendar/internal/recommend"
	"github.com/outfitly/outfit-calendar/internal/schedule"
	"github.com/outfitly/outfit-calendar/internal/scheduler"
	"github.com/outfitly/outfit-calendar/internal/store"
	"github.com/outfitly/outfit-calendar/internal/weather"
	"github.com/outfitly/outfit-calendar/internal/weather/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Forecast provider: OpenWeatherMap when keyed, WeatherAPI as the next
	// choice, Open-Meteo (keyless, geocoded) as the fallback.
	var provider weather.Provider
	switch {
	case cfg.OpenWeatherAPIKey != "":
		provider = providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
	case cfg.WeatherAPIKey != "":
		provider = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey)
	default:
		provider = providers.NewOpenMeteoProvider(httpClient, cfg.GeocoderAPIKey)
	}
	log.Printf("INFO: using weather provider %s", provider.Name())

	// Forecast cache with TTL, horizon, and request coalescing.
	cache := weather.NewForecastCache(provider, weather.CacheConfig{
		TTL:          cfg.ForecastTTL,
		HorizonDays:  cfg.HorizonDays,
		FetchTimeout: cfg.FetchTimeout,
	})

	// Schedule store and coordinator.
	scheduleStore := store.NewMemoryStore()
	generator := recommend.NewClient(httpClient, cfg.RecommenderURL, cfg.DeviceID)
	coordinator := schedule.NewCoordinator(scheduleStore, cache, generator, schedule.CoordinatorConfig{
		UpcomingWindowDays: cfg.UpcomingWindowDays,
	})

	materializer := calendar.NewMaterializer(cache, scheduleStore, nil)

	// Maintenance job: evict aged entries, keep the near window warm.
	sched := scheduler.New(cache, cfg.Locations, cfg.SweepInterval, cfg.WarmDays, nil)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start maintenance scheduler: %v", err)
	}
	defer sched.Stop()

	// Prometheus metrics on a dedicated listener.
	go func() {
		addr := ":" + cfg.MetricsPort
		if err := http.ListenAndServe(addr, metrics.Handler()); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "outfit-calendar",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "outfit-calendar",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, materializer, coordinator)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
