package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/streampulse/streampulse-bot/internal/broadcast"
	"github.com/streampulse/streampulse-bot/internal/config"
	"github.com/streampulse/streampulse-bot/internal/prompts"
	"github.com/streampulse/streampulse-bot/internal/scheduler"
	"github.com/streampulse/streampulse-bot/internal/sentiment"
	"github.com/streampulse/streampulse-bot/internal/session"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting StreamPulse analytics bot")

	// Sentiment scorer: lexicon by default, remote service when configured
	var scorer sentiment.Scorer = sentiment.NewLexiconScorer()
	if cfg.SentimentServiceURL != "" {
		scorer = sentiment.NewRemoteScorer(cfg.SentimentServiceURL, cfg.SentimentServiceTimeout, sentiment.NewLexiconScorer())
		logrus.Infof("Using remote sentiment scorer at %s", cfg.SentimentServiceURL)
	}

	// Prompt generator, when an API key is configured
	var generator prompts.Generator
	if cfg.GeminiConfigured() {
		generator = prompts.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
		logrus.Infof("Prompt generator enabled (model %s)", cfg.GeminiModel)
	} else {
		logrus.Warn("GEMINI_API_KEY not configured, prompts will use the fallback library only")
	}

	registry := session.NewRegistry(cfg, scorer, generator)

	// Start the periodic tick scheduler
	schedulerService := scheduler.NewService(cfg, registry)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/ws", broadcast.ServeWS(registry)).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", createSessionHandler(registry)).Methods("POST")
	api.HandleFunc("/sessions/{id}/snapshot", snapshotHandler(registry)).Methods("GET")
	api.HandleFunc("/sessions/{id}/viewers", viewersHandler(registry)).Methods("GET")
	api.HandleFunc("/sessions/{id}/prompt-health", promptHealthHandler(registry)).Methods("GET")
	api.HandleFunc("/sessions/{id}/reset", resetSessionHandler(registry)).Methods("POST")
	api.HandleFunc("/sessions/{id}", destroySessionHandler(registry)).Methods("DELETE")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

// createSessionHandler creates a session with no dashboard attached. Useful
// for headless ingestion and testing; dashboards normally create their
// session through /ws.
func createSessionHandler(registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := registry.Create(nil)
		writeJSON(w, http.StatusCreated, map[string]string{"session_id": h.ID()})
	}
}

func snapshotHandler(registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := registry.Get(mux.Vars(r)["id"])
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		writeJSON(w, http.StatusOK, h.Snapshot())
	}
}

func viewersHandler(registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := registry.Get(mux.Vars(r)["id"])
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		writeJSON(w, http.StatusOK, h.Viewers())
	}
}

func promptHealthHandler(registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := registry.Get(mux.Vars(r)["id"])
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		writeJSON(w, http.StatusOK, h.PromptHealth())
	}
}

func resetSessionHandler(registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := registry.Get(mux.Vars(r)["id"])
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		h.Reset()
		writeJSON(w, http.StatusOK, map[string]string{"message": "session reset"})
	}
}

func destroySessionHandler(registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !registry.Destroy(mux.Vars(r)["id"]) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "session destroyed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}
