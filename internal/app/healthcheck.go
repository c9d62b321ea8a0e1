package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
)

// healthHandler answers liveness checks.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startHealthcheckServer initializes and runs the health check HTTP server.
func (a *App) startHealthcheckServer(ctx context.Context, port int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring health check server.")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)

	addr := fmt.Sprintf(":%d", port)
	a.healthServer = &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := a.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeHealthcheckServer(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	if a.healthServer == nil {
		logger.Debug("Health check server was not running.")
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := a.healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return
	}
	logger.Debug("Health check server shut down gracefully.")
}
