package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/dungeonfloor/assets"
	"github.com/wfunc/dungeonfloor/config"
	"github.com/wfunc/dungeonfloor/floor"
	"github.com/wfunc/dungeonfloor/logger"
	"github.com/wfunc/dungeonfloor/monitor"
	"github.com/wfunc/dungeonfloor/occupant"
	"github.com/wfunc/dungeonfloor/persistence"
	"github.com/wfunc/dungeonfloor/rng"
	"github.com/wfunc/dungeonfloor/server"
	"github.com/wfunc/dungeonfloor/services"
)

func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	debug := flag.Bool("debug", false, "log at debug level, including floor dumps")
	flag.Parse()

	// Initialize logger
	if *debug {
		logger.InitDevelopment()
	} else {
		logger.Init()
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	store, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to open %s store: %v", cfg.Database.Driver, err)
	}
	defer store.Close()
	logger.Log.Infof("Floor history stored in %s", cfg.Database.Driver)

	mon := monitor.NewMonitor("dungeon")
	if cfg.Server.MetricsAddress != "" {
		mon.StartServer(cfg.Server.MetricsAddress)
	}

	dc := cfg.Dungeon
	src := rng.New(dc.Seed)
	var loader floor.TextureLoader
	if dc.FloorTexture != "" {
		loader = assets.NewLoader(assets.DefaultTileSize)
	}
	gen := floor.NewGenerator(floor.Options{
		MaxRows:     dc.MaxRows,
		MaxCols:     dc.MaxCols,
		MinSubgraph: dc.MinSubgraph,
		TexturePath: dc.FloorTexture,
	}, src, loader)

	run := services.NewRunService(gen, src.Seed(), store, mon, services.RunOptions{
		StartFloor:   dc.StartFloor,
		PlayerWidth:  dc.PlayerWidth,
		PlayerHeight: dc.PlayerHeight,
		Occupants:    occupant.Factory(dc.OccupantLifetime, src),
		Capacity:     dc.OccupantCapacity,
	})

	// Initialize Dungeon Server, it listens to the run from the first floor on
	dungeonServer := server.NewDungeonServer(cfg.Server.HTTPAddress, cfg.Server.RPCAddress, run, mon)
	if err := run.Start(); err != nil {
		logger.Log.Fatalf("Failed to start run: %v", err)
	}
	logger.Log.Infow("Run started", "run", run.ID(), "seed", src.Seed())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go loop(ctx, run, dc.TickInterval)
	go func() {
		if err := dungeonServer.Start(); err != nil {
			logger.Log.Errorf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dungeonServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warnf("Server shutdown: %v", err)
	}
	if err := mon.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warnf("Metrics shutdown: %v", err)
	}
	if err := run.Close(); err != nil {
		logger.Log.Warnf("Run close: %v", err)
	}
}

// loop drives the run at a fixed tick rate until ctx is done.
func loop(ctx context.Context, run *services.RunService, interval time.Duration) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Tick logs its own failures and leaves the run consistent.
			_ = run.Tick()
			run.Render(interval.Seconds())
		}
	}
}
