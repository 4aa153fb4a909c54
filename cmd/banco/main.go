package main

import (
	"banco/cmd/banco/cmds"
	"banco/internal/backends"
	"banco/internal/banco"
	"banco/internal/config"
	"banco/internal/console"
	"banco/internal/pub"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Set with -ldflags "-X main.version=..."
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Info("The .env file not found.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := backends.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			log.WithError(err).Warn("Closing storage")
		}
	}()

	notifier, err := pub.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize notifier: %v", err)
	}

	prompter := console.NewPrompter(os.Stdin, os.Stdout)
	deps := banco.Deps{Prompter: prompter, Notifier: notifier, HashCost: cfg.BcryptCost}
	app := &cmds.App{
		Prompter:     prompter,
		Gestores:     banco.NewGestores(deps, stores.Gestores, stores.DBGestores),
		Clientes:     banco.NewClientes(deps, stores.Clientes, stores.DBClientes),
		GestorStore:  stores.Gestores,
		ClienteStore: stores.Clientes,
	}

	cmd := cmds.NewRootCommand(app, cmds.BuildInfo{Version: version, Commit: commit, BuildTime: buildTime})
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("banco failed")
		stop()
		_ = stores.Close(context.Background())
		os.Exit(1)
	}
}

func setupLogging(cfg config.Config) {
	log.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using warn")
		level = log.WarnLevel
	}
	log.SetLevel(level)
}
