package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/kosher-appstore/appstore-server/database"
	"github.com/kosher-appstore/appstore-server/internal/config"
	"github.com/kosher-appstore/appstore-server/internal/store"
	"github.com/kosher-appstore/appstore-server/internal/store/db"
	"github.com/kosher-appstore/appstore-server/internal/store/inmemory"
)

// openStore returns the PostgreSQL store when a database is configured and
// the in-memory store otherwise. The returned cleanup releases the pool.
func openStore(ctx context.Context, cfg *config.Config, tp trace.TracerProvider) (store.Store, func(), error) {
	if cfg.Database == nil {
		slog.Warn("No database configured, using in-memory store; data is lost on restart")
		return inmemory.New(), func() {}, nil
	}

	connString, err := cfg.Database.GetConnectionString()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.Connect(ctx, cfg.Database, db.DefaultConnectRetry)
	if err != nil {
		return nil, nil, err
	}
	if err := database.MigrateUp(connString); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	opts := []db.Option{db.WithConnectionPool(pool)}
	if tp != nil {
		opts = append(opts, db.WithTracer(tp.Tracer(db.TracerName)))
	}
	st, err := db.New(opts...)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to create database store: %w", err)
	}

	return st, func() {
		slog.Info("Closing database connection pool")
		pool.Close()
	}, nil
}
