package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"restaurant-floor/internal/common/clock"
	"restaurant-floor/internal/common/config"
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/console"
	"restaurant-floor/internal/ledger"
	"restaurant-floor/internal/microservices/archiver"
	"restaurant-floor/internal/microservices/floor"
	"restaurant-floor/internal/microservices/notificator"
	"restaurant-floor/internal/seed"
)

const modes = "floor-service | sales-archiver | summary-subscriber | console"

func main() {
	mode := flag.String("mode", "", modes)
	cfgPath := flag.String("config", "", "path to YAML config (default $"+config.EnvConfig+", then ./config.yaml)")
	port := flag.Int("port", 0, "http port, overrides the config file")
	seedPath := flag.String("seed", "", "floor seed file, overrides the config file")
	flag.Parse()

	lg := logger.New("bootstrap")
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err, nil)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}
	if *seedPath != "" {
		cfg.Floor.Seed = *seedPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "floor-service":
		lg.Info("service_starting", map[string]any{"service": "floor-service", "port": cfg.HTTP.Port})
		run(lg, floor.Run(ctx, cfg, logger.New("floor-service")))
	case "sales-archiver":
		if *port == 0 && cfg.HTTP.Port == config.Default().HTTP.Port {
			cfg.HTTP.Port = 3001
		}
		lg.Info("service_starting", map[string]any{"service": "sales-archiver", "port": cfg.HTTP.Port})
		run(lg, archiver.Run(ctx, cfg, logger.New("sales-archiver")))
	case "summary-subscriber":
		lg.Info("service_starting", map[string]any{"service": "summary-subscriber"})
		run(lg, notificator.Start(ctx, cfg, logger.New("summary-subscriber")))
	case "console":
		run(lg, runConsole(ctx, cfg))
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: "+modes)
		flag.Usage()
		os.Exit(2)
	}
}

func run(lg *logger.Logger, err error) {
	if err != nil {
		lg.Error("fatal", err, nil)
		lg.Sync()
		os.Exit(1)
	}
	lg.Sync()
}

// loadConfig falls back to defaults when no file is given or found.
func loadConfig(path string) (config.App, error) {
	if path == "" {
		p, err := config.FindConfig()
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		if err != nil {
			return config.App{}, err
		}
		path = p
	}
	return config.Load(path)
}

func runConsole(ctx context.Context, cfg config.App) error {
	loc, err := cfg.Floor.Location()
	if err != nil {
		return err
	}
	f, err := seed.Load(cfg.Floor.Seed)
	if err != nil {
		return err
	}
	l, err := f.Ledger(clock.Real())
	if err != nil {
		return err
	}
	c := console.New(ledger.NewStation(l), os.Stdout, loc, logger.NewWriter("console", os.Stderr))
	return c.Run(ctx, os.Stdin)
}
