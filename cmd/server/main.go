package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"rentwise/internal/platform/config"
	"rentwise/internal/platform/httpserver"
	"rentwise/internal/platform/logger"
	"rentwise/internal/platform/metrics"
	httptransport "rentwise/internal/transport/http"
)

// main wires infrastructure and modules, serves HTTP, and runs the audit
// outbox relay until SIGINT or SIGTERM.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise infrastructure", "error", err)
		os.Exit(1)
	}
	defer infra.Close(log)

	modules := buildModules(cfg, log, infra, prometheus.DefaultRegisterer)

	relayDone := startOutboxRelay(ctx, cfg, log, infra, prometheus.DefaultRegisterer)

	router := httptransport.NewRouter(log, httptransport.Dependencies{
		Validator:      modules.validator,
		Metrics:        metrics.New(),
		HealthChecks:   infra.HealthChecks(),
		RequestTimeout: cfg.Server.RequestTimeout,
		WriteLimit:     modules.writeLimit,
		Modules:        modules.routes,
	})
	srv := httpserver.New(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting rentwise",
			"addr", cfg.Server.Addr,
			"environment", cfg.Environment,
			"in_memory", cfg.InMemory(),
			"vision_provider", cfg.Vision.Provider,
		)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Stop the relay only after in-flight requests have committed their
	// outbox rows.
	cancel()
	select {
	case <-relayDone:
	case <-shutdownCtx.Done():
		log.Warn("outbox relay did not stop before shutdown deadline")
	}
}
