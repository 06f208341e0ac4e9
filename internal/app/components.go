package app

import (
	"github.com/kosher-appstore/appstore-server/internal/catalog"
	"github.com/kosher-appstore/appstore-server/internal/download"
	"github.com/kosher-appstore/appstore-server/internal/store"
	"github.com/kosher-appstore/appstore-server/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Store persists the catalog, sources, devices and audit trail
	Store store.Store

	// Catalog implements the client and admin operations
	Catalog *catalog.Service

	// Downloads streams binaries for issued tokens
	Downloads *download.Proxy

	// Telemetry owns the tracer and meter providers
	Telemetry *telemetry.Telemetry
}
