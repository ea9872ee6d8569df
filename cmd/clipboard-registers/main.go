package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"clipboard-registers/internal/clipboard"
	"clipboard-registers/internal/config"
	"clipboard-registers/internal/content"
	"clipboard-registers/internal/server"
	"clipboard-registers/internal/service"
	"clipboard-registers/internal/storage"
	"clipboard-registers/internal/storage/sqlite"
	"clipboard-registers/internal/tui"
)

func main() {
	// Configuration flags
	var (
		dbPath      = flag.String("db", "", "Database path (default: ~/.clipboard-registers/clipboard.db)")
		contentPath = flag.String("content", "", "Snapshot storage path (default: ~/.clipboard-registers/content)")
		port        = flag.Int("port", 0, "Localhost API port")
		gridMode    = flag.Bool("tui", false, "Run the interactive register grid instead of the daemon")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	)

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *contentPath != "" {
		cfg.ContentPath = *contentPath
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *verbose {
		cfg.Verbose = true
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize storage
	storeCfg := storage.Config{
		DBPath:      cfg.DBPath,
		ContentPath: cfg.ContentPath,
	}
	kv, err := sqlite.New(storeCfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}

	states := storage.NewStateRepository(kv, logger)
	contentStore := content.New(storeCfg.ContentPath, logger)
	clip := clipboard.NewClipboard()

	// Exactly one register service per running process; everything that
	// needs it receives this instance.
	registers := service.New(clip, contentStore, states, logger)

	ctx := context.Background()

	if result, err := registers.InitializeIfNeeded(ctx); err != nil {
		logger.Fatal("initialization failed", zap.Error(err))
	} else if result != nil {
		logger.Info(result.Title, zap.String("detail", result.Message))
	}

	// Snapshot files nothing references are cleaned once at startup.
	if state, err := states.Get(ctx); err == nil {
		contentStore.SweepOrphans(state)
	}

	if *gridMode {
		grid, err := tui.NewGridView(registers)
		if err != nil {
			logger.Fatal("failed to start grid view", zap.Error(err))
		}
		if err := grid.Run(ctx); err != nil {
			logger.Fatal("grid view failed", zap.Error(err))
		}
		return
	}

	srv := server.New(registers, server.Config{Port: cfg.Port}, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("clipboard registers started",
		zap.String("db", cfg.DBPath),
		zap.String("content", cfg.ContentPath),
		zap.Int("port", cfg.Port))

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	// Clean shutdown
	logger.Info("shutting down")
	if err := srv.Stop(); err != nil {
		logger.Error("error stopping server", zap.Error(err))
	}
}

// newLogger constructs a zap logger configured for human-readable
// console output.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
