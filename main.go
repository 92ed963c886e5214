// Package main equipment rental API.
//
// @title           Equipment Rental API
// @version         1.0
// @description     Equipment catalog, quotes and reservations for event rentals.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
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

	"equiprental/app/echoServer"
	"equiprental/config"
	quoterepo "equiprental/repository/quote"
	authsvc "equiprental/service/auth"
	quotesvc "equiprental/service/quote"
	"equiprental/util/database"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config invalid", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(db.Gorm); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	e := echoServer.New(db.Gorm, echoServer.Options{
		JWTSecret:   cfg.JWTSecret,
		TTL:         authsvc.TTLs{Access: cfg.AccessTTL, Refresh: cfg.RefreshTTL},
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	go runCleaner(ctx, log, quotesvc.NewCleaner(quoterepo.New(db.Gorm), cfg.QuoteDraftTTL), cfg.CleanupInterval)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	log.Info("starting server", "port", port, "env", cfg.Env, "driver", cfg.DBDriver)

	go func() {
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	log.Info("server stopped")
}

func runCleaner(ctx context.Context, log *slog.Logger, c quotesvc.Cleaner, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := c.ReleaseStale(ctx)
			if err != nil {
				log.Warn("draft cleanup failed", "err", err)
				continue
			}
			if n > 0 {
				log.Info("stale drafts removed", "count", n)
			}
		}
	}
}
