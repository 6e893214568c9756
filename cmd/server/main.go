package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coaching-portal/internal/config"
	"github.com/iliyamo/coaching-portal/internal/database"
	"github.com/iliyamo/coaching-portal/internal/handler"
	"github.com/iliyamo/coaching-portal/internal/middleware"
	"github.com/iliyamo/coaching-portal/internal/queue"
	"github.com/iliyamo/coaching-portal/internal/repository"
	"github.com/iliyamo/coaching-portal/internal/router"
	"github.com/iliyamo/coaching-portal/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	resets := repository.NewResetRepo(db)
	weeks := repository.NewWeekRepo(db)

	auth := handler.NewAuthHandler(cfg, users, tokens, resets, service.NewMailPublisher())
	weekH := handler.NewWeekHandler(weeks)
	clientsH := handler.NewClientsHandler(users)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	limiter := middleware.NewFixedWindow(config.LoadRateLimitConfig(), rdb)

	// Deliver queued reset mail in the background; the loop reconnects on
	// broker failures and never takes the API down with it.
	go func() {
		if err := queue.StartResetMailConsumer(); err != nil {
			log.Printf("reset-mailer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, cfg, auth, weekH, clientsH, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
