package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tritonsoft/leadboard/internal/api"
	"github.com/tritonsoft/leadboard/internal/auth"
	"github.com/tritonsoft/leadboard/internal/backend"
	"github.com/tritonsoft/leadboard/internal/config"
	"github.com/tritonsoft/leadboard/internal/live"
	"github.com/tritonsoft/leadboard/internal/logging"
	"github.com/tritonsoft/leadboard/internal/view"
)

func main() {
	ctx := context.Background()

	godotenv.Load()
	logging.Setup()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout)

	// One shared push connection per process; every view subscribes to it.
	channel, err := live.NewChannel(cfg.EventsEndpoint())
	if err != nil {
		log.Fatalf("Failed to create event channel: %v", err)
	}
	channel.Start(ctx)
	defer channel.Close()

	// The live overview needs its own backend credential. Without one the
	// proxy routes still work and the overview reports unavailable.
	var dash *view.Dashboard
	if cfg.BackendToken != "" {
		dash = view.NewDashboard(client, channel, cfg.BackendToken)
		if err := dash.Start(ctx); err != nil {
			slog.Warn("initial dashboard snapshot failed", "error", err)
		}
		defer dash.Close()
	} else {
		slog.Info("BACKEND_TOKEN not set, live overview disabled")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: api.NewServer(client, dash, auth.NewVerifier(cfg.JWTSecret)).Router(),
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	slog.Info("starting server", "port", cfg.ServerPort, "events", cfg.EventsEndpoint())
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	slog.Info("server stopped gracefully")
}
