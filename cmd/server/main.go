package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cherry4xo/booker/internal/config"
	"github.com/cherry4xo/booker/internal/database"
	"github.com/cherry4xo/booker/internal/handler"
	"github.com/cherry4xo/booker/internal/queue"
	"github.com/cherry4xo/booker/internal/repository"
	"github.com/cherry4xo/booker/internal/router"
	"github.com/cherry4xo/booker/internal/service"
)

func main() {
	// .env is optional; real deployments export variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureDefaultModerator(ctx, db, cfg.SeedEmail, cfg.SeedPassword, cfg.BcryptCost); err != nil {
		cancel()
		log.Fatalf("seed moderator: %v", err)
	}
	cancel()

	// Redis is optional: without it the cache and rate limiter are skipped.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	equipment := repository.NewEquipmentRepo(db)
	auditoriums := repository.NewAuditoriumRepo(db)
	slots := repository.NewAvailabilityRepo(db)
	bookings := repository.NewBookingRepo(db)

	availabilitySvc := service.NewAvailabilityService(auditoriums, slots)
	bookingSvc := service.NewBookingService(auditoriums, slots, bookings)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, router.Deps{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Users:        handler.NewUsersHandler(users),
		Equipment:    handler.NewEquipmentHandler(equipment),
		Auditoriums:  handler.NewAuditoriumHandler(auditoriums, equipment),
		Availability: handler.NewAvailabilityHandler(availabilitySvc),
		Bookings:     handler.NewBookingHandler(bookingSvc, auditoriums),
		JWTSecret:    cfg.JWTSecret,
		Cache:        config.LoadCacheConfig(),
		RateLimit:    config.LoadRateLimitConfig(),
		Redis:        rdb,
	})

	// Background consumer mirrors booking events into the event log.
	go queue.StartBookingConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
