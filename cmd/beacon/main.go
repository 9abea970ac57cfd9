package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaz8081/gobeacon/internal/app"
	"github.com/chaz8081/gobeacon/internal/beacon"
	"github.com/chaz8081/gobeacon/internal/ble"
	"github.com/chaz8081/gobeacon/internal/config"
	"github.com/chaz8081/gobeacon/internal/debuglog"
	"github.com/chaz8081/gobeacon/internal/keystore"
	"github.com/chaz8081/gobeacon/internal/logging"
)

var version = "dev"

const appName = "gobeacon"

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/gobeacon/config.yaml)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat, appName, version)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	slog.SetDefault(logger)

	printBanner(cfg)

	sinkOut, closeSink, err := openSinkOutput(cfg.Debug)
	if err != nil {
		log.Fatalf("debug output: %v", err)
	}
	defer closeSink()
	sink := debuglog.New(cfg.Debug.Enabled, sinkOut)

	keys, closeKeys, err := openKeyStore(cfg)
	if err != nil {
		log.Fatalf("keystore: %v", err)
	}
	defer closeKeys()

	radio := ble.NewTinyGoRadio(cfg.Adapter)
	dispatcher := app.NewDispatcher(keys, radio, sink)
	host := app.NewHost(dispatcher, logger)
	host.AttachLinkEvents(radio)

	// Signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := host.Run(ctx); err != nil {
		slog.Error("beacon failed", "error", err)
		stop()
		closeKeys()
		closeSink()
		os.Exit(1)
	}

	if err := radio.StartAdvertising(false, ble.WhitelistDisabled, ble.AddressRandom); err != nil {
		slog.Warn("stop advertising", "error", err)
	}
	slog.Info("Goodbye!")
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or writes and uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	if written, err := config.WriteDefault(); err != nil {
		log.Printf("Could not write default config: %v", err)
	} else if written != "" {
		log.Printf("Wrote default config to %s", written)
	}
	log.Println("No config file found, using defaults")
	return config.Default(), nil
}

// openKeyStore returns the user key reader selected by the config and a
// function releasing it.
func openKeyStore(cfg *config.Config) (beacon.KeyReader, func(), error) {
	switch cfg.KeyStore.Backend {
	case "sqlite":
		store, err := keystore.OpenSQLite(cfg.KeyStore.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return keystore.Static(cfg.UserKeys), func() {}, nil
	}
}

// openSinkOutput resolves debug.output to a writer.
func openSinkOutput(dc config.DebugConfig) (io.Writer, func(), error) {
	if !dc.Enabled {
		return nil, func() {}, nil
	}
	switch dc.Output {
	case "stderr":
		return os.Stderr, func() {}, nil
	case "stdout":
		return os.Stdout, func() {}, nil
	default:
		f, err := os.OpenFile(dc.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== gobeacon ===")
	fmt.Printf("  Adapter:  %s\n", cfg.Adapter)
	fmt.Printf("  Keys:     %s\n", cfg.KeyStore.Backend)
	fmt.Printf("  Debug:    %t (%s)\n", cfg.Debug.Enabled, cfg.Debug.Output)
	fmt.Printf("  Log:      %s/%s\n", cfg.LogLevel, cfg.LogFormat)
	fmt.Printf("  Version:  %s\n", version)
	fmt.Println("================")
}
