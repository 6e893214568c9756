// Command cleanup purges dead auth rows: refresh tokens that expired or
// were revoked past the retention window, and spent or expired reset
// tickets.  Intended to run from cron; the tables stay correct without it,
// this only keeps them small.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/coaching-portal/internal/config"
	"github.com/iliyamo/coaching-portal/internal/database"
	"github.com/iliyamo/coaching-portal/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	retention := 30 * 24 * time.Hour
	if v := os.Getenv("CLEANUP_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			retention = d
		}
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	nTokens, err := repository.NewTokenRepo(db).DeleteDead(ctx, retention)
	if err != nil {
		log.Fatalf("purge refresh tokens: %v", err)
	}
	nTickets, err := repository.NewResetRepo(db).DeleteDead(ctx, retention)
	if err != nil {
		log.Fatalf("purge reset tickets: %v", err)
	}
	log.Printf("cleanup done: %d refresh tokens, %d reset tickets removed", nTokens, nTickets)
}
