package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trekbooking/internal/httpapi"
	"trekbooking/pkg/cache"
	"trekbooking/pkg/config"
	"trekbooking/pkg/db"
	"trekbooking/pkg/notify"
	"trekbooking/pkg/telemetry"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is required")
	}

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		version, err := db.Migrate(cfg)
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Printf("[api] action=migrate version=%d", version)
	}

	treks := cache.Open(ctx, cfg.RedisAddr, "trekbooking:")
	defer treks.Close()

	nr := telemetry.NewRelic(cfg)
	if nr != nil {
		defer nr.Shutdown(10 * time.Second)
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:      cfg,
		DB:       conn,
		Cache:    treks,
		NewRelic: nr,
		Mailer:   notify.NewMailer(cfg.Mail),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
