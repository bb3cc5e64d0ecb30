package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/history"
	"github.com/pthm-cable/petri/profile"
	"github.com/pthm-cable/petri/server"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	historyPath := flag.String("history", "", "SQLite run history file (overrides config)")
	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *historyPath != "" {
		cfg.History.Path = *historyPath
	}

	// Set up slog per the configured level and format
	opts := &slog.HandlerOptions{Level: cfg.Derived.LogLevel}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	catalog, err := profile.Load(cfg.Catalog.Path)
	if err != nil {
		slog.Error("failed to load cell line catalog", "error", err)
		os.Exit(1)
	}

	var store *history.Store
	if cfg.History.Path != "" {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			slog.Error("failed to open run history", "error", err, "path", cfg.History.Path)
			os.Exit(1)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg, catalog, store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting api server",
		"addr", cfg.Server.Addr,
		"cell_lines", catalog.Len(),
		"history", cfg.History.Path != "",
	)
	err = srv.Start(ctx)
	if store != nil {
		if cerr := store.Close(); cerr != nil {
			slog.Error("failed to close run history", "error", cerr)
		}
	}
	if err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
