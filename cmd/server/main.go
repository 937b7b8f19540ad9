package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vindex/internal/platform/config"
	"vindex/internal/platform/httpserver"
	"vindex/internal/platform/logger"
	"vindex/internal/platform/middleware"
	platformredis "vindex/internal/platform/redis"
	"vindex/internal/vin/decoder"
	"vindex/internal/vin/handler"
	"vindex/internal/vin/metrics"
	"vindex/internal/vin/service"
	"vindex/internal/vin/store"
	"vindex/pkg/platform/httputil"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal/vin packages.
func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	vinStore, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open vin store", "error", err.Error())
		os.Exit(1)
	}
	defer vinStore.Close()

	client := decoder.NewClient(decoder.Config{
		BaseURL:          cfg.DecoderBaseURL,
		Format:           cfg.DecoderFormat,
		DefaultModelYear: cfg.DecoderModelYear,
		Timeout:          cfg.DecoderTimeout,
	})

	vinMetrics := metrics.New()
	vinService := service.New(vinStore, decoder.New(client), log, vinMetrics, cfg.ExportDir)
	vinHandler := handler.New(vinService, log)

	router := newRouter(log, vinHandler, vinStore)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting vindex",
		"addr", cfg.Addr,
		"store_backend", cfg.StoreBackend,
		"decoder_url", cfg.DecoderBaseURL,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}

func newRouter(log *slog.Logger, vinHandler *handler.Handler, vinStore store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))

	vinHandler.Register(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if pinger, ok := vinStore.(interface{ Ping(context.Context) error }); ok {
			if err := pinger.Ping(req.Context()); err != nil {
				httputil.WriteError(w, http.StatusServiceUnavailable, "store unavailable")
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		return store.OpenSQLite(cfg.SQLitePath)
	case config.BackendPostgres:
		return store.OpenPostgres(cfg.PostgresDSN)
	case config.BackendRedis:
		client, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedis(client), nil
	case config.BackendMemory:
		return store.NewInMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
