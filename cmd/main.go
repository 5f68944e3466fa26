// Package main provides the entry point for the island tracker service.
package main

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/hackclub/shipwrecked-sub001/internal/config"
	"github.com/hackclub/shipwrecked-sub001/internal/flight"
	"github.com/hackclub/shipwrecked-sub001/internal/handler"
	"github.com/hackclub/shipwrecked-sub001/internal/logger"
	"github.com/hackclub/shipwrecked-sub001/internal/store"
	"github.com/hackclub/shipwrecked-sub001/internal/telemetry"
)

// Run is the testable entrypoint for the application.
func Run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil {
		stdlog.Println("no .env file found, using system environment variables")
	}

	cfg := config.Load()
	log := logger.New(cfg.Env)
	log.Info("Starting Island Tracker")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("database open failed", zap.Error(err))
		return err
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		// Reads degrade to zeroed metrics until the database comes back.
		log.Warn("database unreachable at startup", zap.Error(err))
	}

	pg := store.NewPostgres(db)
	tracker := telemetry.New(cfg, log)
	resolver := flight.NewResolver(log, pg)
	validate := validator.New()

	h := handler.New(log, cfg, validate, pg, pg, pg, tracker, resolver)

	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)
	r.Get("/progress/{userID}", h.Progress)
	r.Post("/progress/{userID}/purchase", h.PurchaseProgress)
	r.Get("/economy/{userID}", h.Economy)
	r.Post("/shop/price", h.ShopPrice)
	r.Post("/shop/order-value", h.OrderValue)
	r.Get("/flights", h.Flights)
	r.Get("/flights/{flightNumber}/path", h.FlightPath)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Run(ctx); err != nil {
		os.Exit(1)
	}
}
