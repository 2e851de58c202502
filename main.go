package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"travel-backend/config"
	"travel-backend/controllers"
	"travel-backend/middleware"
	"travel-backend/pricing"
	"travel-backend/routes"
	"travel-backend/services"
)

func main() {
	// Load .env (optional)
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Env)
	slog.SetDefault(log)
	if envErr != nil {
		log.Info(".env not loaded; using process environment")
	}
	if cfg.Env != "dev" && cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDatabase(cfg, log)
	if err != nil {
		log.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	log.Info("database ready", "driver", cfg.DBDriver)

	rdb, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable, quotes will not be cached", "error", err)
		rdb = nil
	}
	producer, err := config.NewKafkaProducer(cfg)
	if err != nil {
		log.Warn("kafka unavailable, pricing events disabled", "error", err)
		producer = nil
	}

	cache := services.NewQuoteCache(rdb, cfg.QuoteCacheTTL, log)
	events := services.NewEventPublisher(producer, cfg.KafkaTopic, log)
	defer events.Close()

	// Initialize services
	calendarService := services.NewCalendarService(db, cache, events, log)
	aggregator := pricing.NewAggregator(calendarService, cfg.PricingFallback, log)
	roomService := services.NewRoomService(db, cache, events, log)
	mealPlanService := services.NewMealPlanService(db, roomService)
	hotelService := services.NewHotelService(db)
	quoteService := services.NewQuoteService(db, aggregator, cache, log)
	applicationService := services.NewApplicationService(db, aggregator, events, log)

	limiter := middleware.NewRateLimiter(cfg.SearchRateLimit, cfg.SearchRateBurst)
	go limiter.Run(ctx)

	router := routes.SetupRouter(routes.Controllers{
		Health:       controllers.NewHealthController(db, rdb),
		Hotels:       controllers.NewHotelController(hotelService),
		Rooms:        controllers.NewRoomController(roomService),
		MealPlans:    controllers.NewMealPlanController(mealPlanService),
		Calendar:     controllers.NewCalendarController(calendarService),
		Quotes:       controllers.NewQuoteController(quoteService),
		Applications: controllers.NewApplicationController(applicationService),
	}, cfg.CORSOrigins, limiter, log)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", addr, "fallback", cfg.PricingFallback.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped gracefully")
}
