package main

import (
	"context"
	"flag"
	"image"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"battle-display/pkg/arena"
	"battle-display/pkg/assets"
	"battle-display/pkg/config"
	"battle-display/pkg/display"
	"battle-display/pkg/render"
	"battle-display/pkg/roster"
	"battle-display/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (overrides CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Roster
	creatures := roster.Load(roster.Sources{URL: cfg.RosterURL, Path: cfg.RosterPath}, logger.Named("roster"))

	// 2. Assets
	loader := assets.NewLoader(cfg.AssetsDir, logger)
	var background image.Image
	if cfg.Background != "" {
		background, err = loader.LoadSync(cfg.Background)
		if err != nil {
			logger.Warn("background unavailable", zap.String("path", cfg.Background), zap.Error(err))
		}
	}

	// 3. Arena
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	orchestrator := arena.New(cfg.Arena(), creatures, loader, arena.SystemClock{}, rng, logger)

	// 4. Frame driver and live stream
	canvas := render.NewCanvas(render.Options{
		Scale:      cfg.Scale,
		Background: background,
		FontPath:   cfg.FontPath,
		Palette:    render.PaletteFrom(cfg.Colors),
	}, logger)
	driver := display.NewDriver(orchestrator, canvas, cfg.FrameInterval(), logger)
	hub := display.NewHub(ctx, logger)
	orchestrator.OnEvent(hub.Broadcast)

	go func() {
		if err := driver.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("driver exited", zap.Error(err))
			stop()
		}
	}()

	// 5. HTTP
	server := display.NewServer(driver, hub, logger)
	logger.Info("🚀 battle display starting",
		zap.String("port", cfg.Port),
		zap.String("mode", cfg.Mode),
		zap.Int("roster", len(creatures)))

	// Bind to 0.0.0.0 explicitly for container platforms
	if err := server.ListenAndServe(ctx, "0.0.0.0:"+cfg.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
