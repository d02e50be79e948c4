// orrery runs the N-body trajectory simulation and its control API:
// an Engine ticking the simulation clock, a chi router exposing world
// state and transfer planning over HTTP, and a WebSocket stream of tick
// events for live clients.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/orrery/core/internal/api"
	"github.com/orrery/core/internal/engine"
	"github.com/orrery/core/internal/utils"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP server address")
	preset := flag.String("preset", "sol-terra", "initial preset to load")
	workers := flag.Int("workers", 0, "transfer-planner worker pool size (0 selects GOMAXPROCS)")
	flag.Parse()

	logger := utils.NewLogger()

	logger.Info("=== orrery ===")
	logger.Info("HTTP server: %s", *addr)
	logger.Info("Preset: %s", *preset)

	e, err := engine.New(*preset, *workers)
	if err != nil {
		logger.Error("Failed to construct engine: %v", err)
		log.Fatalf("Failed to construct engine: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e.Run(ctx)

	server := &http.Server{
		Addr:    *addr,
		Handler: api.NewRouter(e),
	}

	go func() {
		logger.Info("Starting HTTP server on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error: %v", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	logger.Info("orrery is ready and accepting connections")
	logger.Info("API Endpoints:")
	logger.Info("  - Health:     GET  /api/v1/health")
	logger.Info("  - Control:    POST /api/v1/reset, /tick, /speed, /pause, /resume")
	logger.Info("  - World:      GET  /api/v1/bodies, /crafts, /prediction")
	logger.Info("  - Transfers:  POST /api/v1/transfers, /transfers/{id}/schedule")
	logger.Info("  - WebSocket:  WS   /ws/world")
	logger.Info("  - Metrics:    GET  /metrics")

	<-ctx.Done()
	stop()

	logger.Info("Shutting down orrery...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server shutdown error: %v", err)
	}
	e.Stop()

	logger.Info("orrery stopped")
}
