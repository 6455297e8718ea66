// Package main implements the standalone gateway binary. It loads a JSON
// configuration, builds a gateway instance with its HTTP listener, and runs
// until interrupted. Libraries embedding the gateway use the gateway and
// gateway/http packages directly instead.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/nocodenation/appgateway/gateway"
	gatewayhttp "github.com/nocodenation/appgateway/gateway/http"
	"github.com/nocodenation/appgateway/logging"
	"github.com/nocodenation/appgateway/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "appgateway"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting gateway",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	// The NATS connection only mirrors logs; the gateway itself has no
	// broker dependency.
	var nc *nats.Conn
	if cliCfg.NATSURL != "" {
		nc, err = nats.Connect(cliCfg.NATSURL,
			nats.Name(appName),
			nats.MaxReconnects(-1))
		if err != nil {
			return fmt.Errorf("connect to NATS at %s: %w", cliCfg.NATSURL, err)
		}
		defer nc.Close()
		slog.Info("NATS log mirror connected", "url", cliCfg.NATSURL)
	}

	componentLogger := logging.NewLogger("gateway", nc, logger)

	gw, err := gateway.New(cfg, componentLogger)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	server := gatewayhttp.NewServer(gw, componentLogger.Named("http-server"))
	if cliCfg.Prometheus {
		server.SetMetricRegistry(metric.NewRegistry())
	}

	return runWithSignalHandling(server, gw, cliCfg)
}

// runWithSignalHandling starts the listener and blocks until a shutdown
// signal arrives. The gateway closes before the HTTP server so blocked poll
// consumers are released instead of riding out the shutdown timeout.
func runWithSignalHandling(server *gatewayhttp.Server, gw *gateway.Gateway, cliCfg *CLIConfig) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := server.Start(signalCtx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	slog.Info("Gateway started",
		"address", server.Addr(),
		"endpoints", len(gw.ListRegisteredPatterns()))

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	if err := gw.Close(); err != nil {
		slog.Error("Error closing gateway", "error", err)
	}
	if err := server.Stop(cliCfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("Gateway shutdown complete")
	return nil
}

// loadConfig reads gateway configuration from a JSON file. An empty path
// runs the gateway with defaults and no pre-declared endpoints.
func loadConfig(path string) (gateway.Config, error) {
	if path == "" {
		return gateway.DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return gateway.Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg gateway.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return gateway.Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}
