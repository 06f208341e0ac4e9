package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/kosher-appstore/appstore-server/internal/api"
	"github.com/kosher-appstore/appstore-server/internal/auth"
	"github.com/kosher-appstore/appstore-server/internal/catalog"
	"github.com/kosher-appstore/appstore-server/internal/config"
	"github.com/kosher-appstore/appstore-server/internal/domains"
	"github.com/kosher-appstore/appstore-server/internal/download"
	"github.com/kosher-appstore/appstore-server/internal/httpclient"
	"github.com/kosher-appstore/appstore-server/internal/resolver"
	"github.com/kosher-appstore/appstore-server/internal/sources"
	"github.com/kosher-appstore/appstore-server/internal/store"
	"github.com/kosher-appstore/appstore-server/internal/telemetry"
	"github.com/kosher-appstore/appstore-server/internal/token"
)

const (
	defaultHTTPAddress = ":8080"
	defaultReadTimeout = 10 * time.Second
	defaultIdleTimeout = 60 * time.Second

	tracerPrefix = "github.com/kosher-appstore/appstore-server/"
)

// AppStoreOption configures the app store builder
type AppStoreOption func(*appStoreConfig) error

// appStoreConfig collects the inputs to NewAppStore. Component overrides
// exist mainly for tests.
type appStoreConfig struct {
	config *config.Config

	store      store.Store
	baseClient *http.Client
	telemetry  *telemetry.Telemetry

	address     string
	middlewares []func(http.Handler) http.Handler
	readTimeout time.Duration
	idleTimeout time.Duration
}

func baseConfig(opts ...AppStoreOption) (*appStoreConfig, error) {
	cfg := &appStoreConfig{
		address:     defaultHTTPAddress,
		readTimeout: defaultReadTimeout,
		idleTimeout: defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return cfg, nil
}

// NewAppStore wires every component from the configuration
func NewAppStore(ctx context.Context, opts ...AppStoreOption) (*AppStore, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	var cleanups []func()
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			runCleanups(cleanups)
		}
	}()

	if cfg.telemetry == nil {
		cfg.telemetry, err = telemetry.New(ctx, cfg.config.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		tel := cfg.telemetry
		cleanups = append(cleanups, func() {
			if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
				slog.Error("Failed to shut down telemetry", "error", err)
			}
		})
	}

	if cfg.store == nil {
		st, closeStore, err := openStore(ctx, cfg.config, cfg.telemetry.TracerProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		cfg.store = st
		cleanups = append(cleanups, closeStore)
	}

	components, err := buildComponents(cfg)
	if err != nil {
		return nil, err
	}

	adminAuth, err := auth.NewAuthMiddleware(cfg.config.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth middleware: %w", err)
	}

	httpServer, err := buildHTTPServer(cfg, components, adminAuth)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	return &AppStore{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: func() {
			cancel()
			runCleanups(cleanups)
		},
	}, nil
}

// runCleanups releases resources in reverse acquisition order
func runCleanups(cleanups []func()) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) AppStoreOption {
	return func(cfg *appStoreConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) AppStoreOption {
	return func(cfg *appStoreConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, ok := strings.Cut(addr, ":")
		if !ok || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		switch host {
		case "localhost":
			host = "127.0.0.1"
		case "":
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default middleware chain
func WithMiddlewares(mw ...func(http.Handler) http.Handler) AppStoreOption {
	return func(cfg *appStoreConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStore injects a store instead of opening one from the configuration
func WithStore(st store.Store) AppStoreOption {
	return func(cfg *appStoreConfig) error {
		cfg.store = st
		return nil
	}
}

// WithHTTPClient sets the base client for every outbound request, e.g. one
// trusting a test server's certificate
func WithHTTPClient(c *http.Client) AppStoreOption {
	return func(cfg *appStoreConfig) error {
		cfg.baseClient = c
		return nil
	}
}

// WithTelemetry injects already initialized telemetry providers
func WithTelemetry(t *telemetry.Telemetry) AppStoreOption {
	return func(cfg *appStoreConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// buildComponents builds the outbound client, source pipeline, token
// service, download proxy and catalog
func buildComponents(b *appStoreConfig) (*AppComponents, error) {
	slog.Info("Initializing app store components")
	cfg := b.config
	tp := b.telemetry.TracerProvider()
	mp := b.telemetry.MeterProvider()

	secret, err := cfg.GetSigningSecret()
	if err != nil {
		return nil, err
	}
	tokens, err := token.NewService(secret, token.WithTTL(cfg.GetTokenTTL()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	validator := domains.NewValidator(cfg.GetAllowedDomains())
	clientOpts := []httpclient.Option{httpclient.WithUserAgent(cfg.GetUserAgent())}
	if b.baseClient != nil {
		clientOpts = append(clientOpts, httpclient.WithHTTPClient(b.baseClient))
	}
	client := httpclient.NewClient(validator, clientOpts...)

	factory := sources.NewFactory(client,
		sources.WithMetadataTimeout(cfg.GetMetadataTimeout()),
		sources.WithVerifyTimeout(cfg.GetVerifyTimeout()),
		sources.WithPlayStoreURL(cfg.GetPlayStoreURL()),
	)

	resolverMetrics, err := telemetry.NewResolverMetrics(mp)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver metrics: %w", err)
	}
	res := resolver.New(factory,
		resolver.WithMetrics(resolverMetrics),
		resolver.WithTracer(tp.Tracer(tracerPrefix+"resolver")),
	)

	downloadMetrics, err := telemetry.NewDownloadMetrics(mp)
	if err != nil {
		return nil, fmt.Errorf("failed to create download metrics: %w", err)
	}
	proxy := download.NewProxy(tokens, b.store, validator, client,
		download.WithOriginTimeout(cfg.GetOriginTimeout()),
		download.WithBufferSize(cfg.GetBufferSize()),
		download.WithMaxConcurrent(cfg.GetMaxConcurrentDownloads()),
		download.WithMetrics(downloadMetrics),
		download.WithTracer(tp.Tracer(tracerPrefix+"download")),
	)

	svc := catalog.New(b.store, tokens, res,
		catalog.WithPublicBaseURL(cfg.GetPublicBaseURL()),
		catalog.WithTracer(tp.Tracer(tracerPrefix+"catalog")),
	)

	slog.Info("App store components initialized",
		"allowed_domains", len(cfg.GetAllowedDomains()),
		"public_base_url", cfg.GetPublicBaseURL(),
	)

	return &AppComponents{
		Store:     b.store,
		Catalog:   svc,
		Downloads: proxy,
		Telemetry: b.telemetry,
	}, nil
}

// buildHTTPServer builds the router and the server around it
func buildHTTPServer(
	b *appStoreConfig,
	components *AppComponents,
	adminAuth func(http.Handler) http.Handler,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		httpMetrics, err := telemetry.NewHTTPMetrics(components.Telemetry.MeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
		}
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			telemetry.TracingMiddleware(components.Telemetry.TracerProvider()),
			httpMetrics.Middleware,
			api.LoggingMiddleware,
			middleware.Recoverer,
		}
	}

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(b.middlewares...),
		api.WithAdminMiddlewares(adminAuth),
	}
	if h := components.Telemetry.MetricsHandler(); h != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(h))
	}
	router := api.NewServer(components.Catalog, components.Downloads, serverOpts...)

	// No WriteTimeout: binaries stream for as long as the origin keeps
	// sending, bounded by the proxy's idle watchdog.
	server := &http.Server{
		Addr:              b.address,
		Handler:           router,
		ReadHeaderTimeout: b.readTimeout,
		ReadTimeout:       b.readTimeout,
		IdleTimeout:       b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
