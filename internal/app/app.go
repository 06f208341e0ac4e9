// Package app provides application lifecycle management for the app store server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kosher-appstore/appstore-server/internal/config"
)

// AppStore encapsulates all components needed to run the API server and
// provides graceful shutdown
type AppStore struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start listens on the configured address and blocks until the server stops
func (app *AppStore) Start() error {
	ln, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.Serve(ln)
}

// Serve accepts connections on ln and blocks until the server stops
func (app *AppStore) Serve(ln net.Listener) error {
	app.httpServer.BaseContext = func(net.Listener) context.Context { return app.ctx }

	slog.Info("Server listening", "address", ln.Addr().String())
	if err := app.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server within timeout, then releases the
// store and flushes telemetry
func (app *AppStore) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := app.httpServer.Shutdown(shutdownCtx)

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *AppStore) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *AppStore) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired components
func (app *AppStore) Components() *AppComponents {
	return app.components
}
