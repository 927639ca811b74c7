// Package main implements the CarBot sales chat server. Customer messages
// go through the multi-agent sales system; a local model is optional and
// only used for phrasing.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/CarBotAI/carbot-mvp/engine/agent"
	"github.com/CarBotAI/carbot-mvp/engine/inventory"
	"github.com/CarBotAI/carbot-mvp/engine/search"
	"github.com/CarBotAI/carbot-mvp/pkg/fn"
	"github.com/CarBotAI/carbot-mvp/pkg/mid"
	"github.com/CarBotAI/carbot-mvp/pkg/ollama"
)

// Config holds all environment-based configuration.
type Config struct {
	Port          string
	InventoryPath string
	NATSURL       string
	OllamaURL     string
	OllamaModel   string
	CORSOrigin    string
}

func loadConfig() Config {
	return Config{
		Port:          envOr("PORT", "8090"),
		InventoryPath: envOr("INVENTORY_CSV", "data/inventory.csv"),
		NATSURL:       os.Getenv("NATS_URL"),
		OllamaURL:     os.Getenv("OLLAMA_URL"),
		OllamaModel:   envOr("OLLAMA_MODEL", "llama3.2"),
		CORSOrigin:    envOr("CORS_ORIGIN", "*"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

	storeOpts := []inventory.Option{inventory.WithLogger(logger)}
	sysOpts := []agent.SystemOption{agent.WithSystemLogger(logger)}
	if cfg.NATSURL != "" {
		// The broker may come up after us, so retry with backoff.
		nc, err := fn.Retry(ctx, fn.DefaultRetry, func(context.Context) fn.Result[*nats.Conn] {
			return fn.FromPair(nats.Connect(cfg.NATSURL, nats.Name("carbot-chat")))
		}).Unwrap()
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		storeOpts = append(storeOpts, inventory.WithEvents(inventory.NewEvents(nc, logger)))
		sysOpts = append(sysOpts, agent.WithCommsBus(agent.NewCommsBus(nc, logger)))
	}

	store := inventory.New(cfg.InventoryPath, storeOpts...)
	if err := store.Load(); err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}
	logger.Info("inventory loaded", "path", cfg.InventoryPath, "vehicles", store.Len())

	svc := search.NewService(store, search.WithLogger(logger))

	if cfg.OllamaURL != "" {
		sysOpts = append(sysOpts, agent.WithChat(ollama.NewChatClient(cfg.OllamaURL, cfg.OllamaModel)))
		logger.Info("model phrasing enabled", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
	}
	sys := agent.NewSystem(store, svc, sysOpts...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/chat", handleChat(sys))
	mux.HandleFunc("GET /api/analytics", handleAnalytics(sys))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("carbot-chat"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("chat server starting", "port", cfg.Port)
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

// ChatRequest is the JSON body for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the JSON response for POST /api/chat.
type ChatResponse struct {
	Response string           `json:"response"`
	Stage    agent.SalesStage `json:"sales_stage"`
}

func handleChat(sys *agent.System) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		response := sys.ProcessCustomerInput(r.Context(), req.Message)
		writeJSON(w, http.StatusOK, ChatResponse{
			Response: response,
			Stage:    sys.Stage(),
		})
	}
}

func handleAnalytics(sys *agent.System) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, sys.ConversationAnalytics())
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
