package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/sonarr-mcp/internal/api"
	"github.com/amaumene/sonarr-mcp/internal/config"
	"github.com/amaumene/sonarr-mcp/internal/mcpserver"
	"github.com/amaumene/sonarr-mcp/internal/metrics"
	"github.com/amaumene/sonarr-mcp/internal/services/sonarr"
	"github.com/amaumene/sonarr-mcp/internal/tools"
	"github.com/amaumene/sonarr-mcp/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sonarr-mcp",
		Short:         "MCP server for Sonarr",
		Long:          `Exposes a Sonarr instance to MCP clients as tools and resources.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.String("host", "", "listen host (env SONARR_MCP_HOST)")
	flags.Int("port", 0, "listen port (env SONARR_MCP_PORT)")
	flags.String("log-level", "", "log level (env LOG_LEVEL)")
	bindFlag(root, "SONARR_MCP_HOST", "host")
	bindFlag(root, "SONARR_MCP_PORT", "port")
	bindFlag(root, "LOG_LEVEL", "log-level")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve MCP over streamable HTTP (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "stdio",
			Short: "Serve MCP over stdin/stdout",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runStdio(cmd.Context())
			},
		},
	)
	return root
}

// bindFlag lets a flag override its environment variable, but only when the
// flag was actually given on the command line.
func bindFlag(cmd *cobra.Command, key, name string) {
	cobra.OnInitialize(func() {
		if f := cmd.PersistentFlags().Lookup(name); f != nil && f.Changed {
			_ = viper.BindPFlag(key, f)
		}
	})
}

// app holds everything both transports share
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	metrics *metrics.Metrics
	mcp     *mcpserver.Server
}

func setup(console io.Writer) (*app, error) {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: console,
	})
	logger.WithField("version", version).Info("Starting Sonarr MCP server")
	logger.WithFields(logrus.Fields{
		"sonarr_url":  cfg.MaskedURL(),
		"sonarr_name": cfg.SonarrName,
		"timeout":     cfg.SonarrTimeout,
		"log_file":    cfg.LogFile,
	}).Info("Configuration loaded")

	// 3. Initialize metrics
	m := metrics.New()

	// 4. Initialize Sonarr client
	client, err := sonarr.NewClient(cfg, logger, sonarr.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Sonarr client: %w", err)
	}
	logger.Info("Sonarr client initialized")

	// 5. Register tools and resources
	handlers := tools.New(client, logger, tools.WithMetrics(m))
	server := mcpserver.New(handlers, logger, cfg.SonarrName, version)

	return &app{cfg: cfg, logger: logger, metrics: m, mcp: server}, nil
}

func runStdio(ctx context.Context) error {
	// stdout carries the protocol, so logs go to stderr
	a, err := setup(os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.mcp.ServeStdio(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server error: %w", err)
	}
	a.logger.Info("Sonarr MCP server stopped")
	return nil
}

func runServe(ctx context.Context) error {
	a, err := setup(os.Stdout)
	if err != nil {
		return err
	}

	// 6. Initialize HTTP server
	server := api.NewServer(a.cfg, a.mcp, a.metrics, a.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 7. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	a.logger.WithField("endpoint", fmt.Sprintf("http://%s%s", a.cfg.Addr(), a.cfg.MCPPath)).Info("Sonarr MCP server is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		a.logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			a.logger.WithError(err).Error("Error during server shutdown")
		}
	}

	a.logger.Info("Sonarr MCP server stopped")
	return nil
}
