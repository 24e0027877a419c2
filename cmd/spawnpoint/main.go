package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Versifine/spawnpoint/internal/config"
	"github.com/Versifine/spawnpoint/internal/debug"
	"github.com/Versifine/spawnpoint/internal/effect"
	"github.com/Versifine/spawnpoint/internal/event"
	"github.com/Versifine/spawnpoint/internal/host"
	"github.com/Versifine/spawnpoint/internal/logger"
	"github.com/Versifine/spawnpoint/internal/message"
	"github.com/Versifine/spawnpoint/internal/record"
	"github.com/Versifine/spawnpoint/internal/spawn"
	"github.com/Versifine/spawnpoint/internal/world"
)

// worldRadius is the chunk radius of the generated flat world.
const worldRadius = 2

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	holder, err := config.NewHolder(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := holder.Config()

	var out io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		w, closer, err := logger.OpenFile(cfg.Logging.File, os.Stdout)
		if err != nil {
			return err
		}
		defer closer.Close()
		out = w
	}
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: out})

	rec, err := record.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open spawn record: %w", err)
	}
	defer func() {
		if err := rec.Close(); err != nil {
			slog.Warn("Close spawn record failed", "error", err)
		}
	}()

	catalog := message.Default()
	if cfg.Messages.Path != "" {
		catalog, err = message.Load(cfg.Messages.Path)
		if err != nil {
			return err
		}
	}

	effects, err := effect.ForVersion(cfg.Server.Version)
	if err != nil {
		return err
	}

	blocks, err := newBlockStore(cfg.Server.BlocksJSON)
	if err != nil {
		return err
	}
	overworld, err := host.FlatWorldWithBlocks("world", world.DimensionOverworld, worldRadius, host.DefaultFlatLayers, blocks)
	if err != nil {
		return fmt.Errorf("generate world: %w", err)
	}
	worlds := world.NewRegistry()
	worlds.Load(overworld)

	bus := event.NewBus()
	scheduler := event.NewScheduler()
	server := host.NewServer(worlds, bus, os.Stdout, world.Location{
		World: overworld.Name(),
		X:     0.5,
		Y:     float64(host.SurfaceY(overworld, host.DefaultFlatLayers)),
		Z:     0.5,
	})

	engine := spawn.NewEngine(spawn.Deps{
		Record:    rec,
		Worlds:    worlds,
		Server:    server,
		Effects:   effects,
		Messages:  catalog,
		Config:    holder,
		Scheduler: scheduler,
	})
	engine.Register(bus)

	reload := func() error {
		if err := holder.Reload(); err != nil {
			return err
		}
		logger.SetLevel(holder.Config().Logging.Level)
		return catalog.Reload()
	}

	console := debug.NewConsole(server, engine, scheduler, reload, os.Stdin, os.Stdout)

	slog.Info("Spawnpoint starting", "config", configPath, "storage", cfg.Storage.Driver, "effects", effects.Version())

	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		return scheduler.Run(gctx, event.DefaultTickInterval)
	})
	g.Go(func() error {
		// end of input stops the server too
		defer cancel()
		return console.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Spawnpoint stopped")
	return nil
}

func newBlockStore(blocksJSON string) (*world.BlockStore, error) {
	if blocksJSON == "" {
		return world.NewBlockStore()
	}
	blocks, err := world.NewBlockStoreFromBlocksJSON(blocksJSON)
	if err != nil {
		return nil, fmt.Errorf("load block table: %w", err)
	}
	return blocks, nil
}
