package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kosher-appstore/appstore-server/internal/app"
	"github.com/kosher-appstore/appstore-server/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the app store API server",
	Long: `Start the app store API server.

The configuration file (--config) sets the token signing secret, the domain
allow-list, source timeouts, the download proxy limits and optionally the
database, admin authentication and telemetry. Without a database section the
server keeps everything in memory.`,
	RunE: runServe,
}

const defaultGracefulTimeout = 30 * time.Second

func init() {
	serveCmd.Flags().String("address", ":8080", "Address to listen on")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	serveCmd.Flags().Duration("shutdown-timeout", defaultGracefulTimeout, "Time allowed for in-flight requests on shutdown")

	for _, name := range []string{"address", "config", "shutdown-timeout"} {
		if err := viper.BindPFlag(name, serveCmd.Flags().Lookup(name)); err != nil {
			slog.Error("Failed to bind flag", "flag", name, "error", err)
			os.Exit(1)
		}
	}

	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration", "path", configPath, "database", cfg.Database != nil)

	appStore, err := app.NewAppStore(context.WithoutCancel(ctx),
		app.WithConfig(cfg),
		app.WithAddress(viper.GetString("address")),
	)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	served := make(chan error, 1)
	go func() { served <- appStore.Start() }()

	select {
	case err := <-served:
		if stopErr := appStore.Stop(time.Second); stopErr != nil {
			slog.Error("Cleanup after server failure", "error", stopErr)
		}
		return err
	case <-ctx.Done():
	}

	if err := appStore.Stop(viper.GetDuration("shutdown-timeout")); err != nil {
		return err
	}
	return <-served
}
