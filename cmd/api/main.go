// Package main implements the CarBot inventory API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/CarBotAI/carbot-mvp/engine/domain"
	"github.com/CarBotAI/carbot-mvp/engine/inventory"
	"github.com/CarBotAI/carbot-mvp/engine/search"
	"github.com/CarBotAI/carbot-mvp/pkg/fn"
	"github.com/CarBotAI/carbot-mvp/pkg/metrics"
	"github.com/CarBotAI/carbot-mvp/pkg/mid"
)

// Config holds all environment-based configuration.
type Config struct {
	Port          string
	InventoryPath string
	NATSURL       string
	CORSOrigin    string
	MaxResults    int
}

func loadConfig() Config {
	return Config{
		Port:          envOr("PORT", "8080"),
		InventoryPath: envOr("INVENTORY_CSV", "data/inventory.csv"),
		NATSURL:       os.Getenv("NATS_URL"),
		CORSOrigin:    envOr("CORS_ORIGIN", "*"),
		MaxResults:    envIntOr("MAX_RESULTS", search.DefaultMaxResults),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to NATS (optional, reservation events) ---
	storeOpts := []inventory.Option{inventory.WithLogger(logger)}
	if cfg.NATSURL != "" {
		// The broker may come up after us, so retry with backoff.
		nc, err := fn.Retry(ctx, fn.DefaultRetry, func(context.Context) fn.Result[*nats.Conn] {
			return fn.FromPair(nats.Connect(cfg.NATSURL, nats.Name("carbot-api")))
		}).Unwrap()
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		storeOpts = append(storeOpts, inventory.WithEvents(inventory.NewEvents(nc, logger)))
		logger.Info("reservation events enabled", "nats_url", cfg.NATSURL)
	}

	// --- Load inventory ---
	store := inventory.New(cfg.InventoryPath, storeOpts...)
	if err := store.Load(); err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}
	logger.Info("inventory loaded", "path", cfg.InventoryPath, "vehicles", store.Len())

	// --- Build search service ---
	reg := metrics.New()
	reg.Gauge("inventory_vehicles", "Vehicles in the loaded inventory").Set(int64(store.Len()))
	reservations := reg.Counter("reservations_total", "Successful vehicle reservations")
	svc := search.NewService(store,
		search.WithLogger(logger),
		search.WithMetrics(reg),
	)

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/search", handleSearch(svc, cfg.MaxResults, logger))
	mux.HandleFunc("GET /api/vehicles/{vin}", handleVehicle(svc))
	mux.HandleFunc("POST /api/reserve", handleReserve(store, reservations, logger))
	mux.HandleFunc("GET /api/stats", handleStats(store))
	mux.HandleFunc("GET /api/history", handleHistory(svc))
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("carbot-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SearchRequest is the JSON body for POST /api/search.
type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

// SearchResponse is the JSON response for POST /api/search.
type SearchResponse struct {
	Results   []search.Result `json:"results"`
	Count     int             `json:"count"`
	Formatted string          `json:"formatted"`
}

func handleSearch(svc *search.Service, maxResults int, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		if req.MaxResults <= 0 || req.MaxResults > maxResults {
			req.MaxResults = maxResults
		}

		results, err := svc.Search(r.Context(), req.Query, req.MaxResults)
		if err != nil {
			logger.Error("search failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, SearchResponse{
			Results:   results,
			Count:     len(results),
			Formatted: search.FormatResults(results, len(results)),
		})
	}
}

func handleVehicle(svc *search.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := svc.Lookup(r.PathValue("vin"))
		if !ok {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ReserveRequest is the JSON body for POST /api/reserve.
type ReserveRequest struct {
	VIN string `json:"vin"`
}

func handleReserve(store *inventory.Store, reservations *metrics.Counter, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReserveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.VIN == "" {
			writeError(w, http.StatusBadRequest, "vin is required")
			return
		}

		err := store.Reserve(r.Context(), req.VIN)
		switch {
		case err == nil:
			reservations.Inc()
			writeJSON(w, http.StatusOK, map[string]string{"status": "reserved", "vin": req.VIN})
		case errors.Is(err, domain.ErrVehicleNotFound):
			writeError(w, http.StatusNotFound, "vehicle not found")
		case errors.Is(err, domain.ErrNotAvailable):
			writeError(w, http.StatusConflict, "vehicle not available")
		default:
			logger.Error("reservation failed", "vin", req.VIN, "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

func handleStats(store *inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, store.Stats())
	}
}

func handleHistory(svc *search.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, svc.History())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
