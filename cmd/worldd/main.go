package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tidemark-games/worldcore/internal/effects"
	"github.com/tidemark-games/worldcore/internal/engine"
	"github.com/tidemark-games/worldcore/internal/interaction"
	"github.com/tidemark-games/worldcore/internal/metrics"
	"github.com/tidemark-games/worldcore/internal/workload"
	"github.com/tidemark-games/worldcore/internal/world"
	"github.com/tidemark-games/worldcore/internal/worldd"
	"github.com/tidemark-games/worldcore/pkg/config"
	"github.com/tidemark-games/worldcore/pkg/logger"
	"github.com/tidemark-games/worldcore/pkg/models"
	"github.com/tidemark-games/worldcore/pkg/utils"
)

type serverConfig struct {
	HTTPAddr   string        `env:"WORLDCORE_HTTP_ADDR" envDefault:":8080"`
	PackDir    string        `env:"WORLDCORE_PACK_DIR" envDefault:"configs/packs"`
	TickLength time.Duration `env:"WORLDCORE_TICK_LENGTH" envDefault:"50ms"`
	LogLevel   string        `env:"WORLDCORE_LOG_LEVEL" envDefault:"info"`
	Workers    int           `env:"WORLDCORE_WORKERS" envDefault:"0"`

	// Synthetic load for local runs. Entities are spawned empty; the
	// generator fires activations against every loaded definition.
	Workload     bool    `env:"WORLDCORE_WORKLOAD" envDefault:"false"`
	Entities     int     `env:"WORLDCORE_ENTITIES" envDefault:"64"`
	WorkloadRate float64 `env:"WORLDCORE_WORKLOAD_RATE" envDefault:"0.5"`
	WorkloadSeed int64   `env:"WORLDCORE_WORKLOAD_SEED" envDefault:"1"`
}

// logFrameSender stands in for the network layer: encoded effect frames are
// logged at debug instead of being written to client connections.
type logFrameSender struct{}

func (logFrameSender) Send(entity models.EntityID, frame []byte) {
	logger.Debug("effect frame", "entity", entity, "bytes", len(frame))
}

func main() {
	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		logger.Error("failed to parse environment", "error", err)
		os.Exit(1)
	}

	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tags := world.NewTagRegistry()
	store := world.NewInMemoryStore(tags)
	registry := interaction.NewRegistry()
	compiler := interaction.NewCompiler(tags)
	mset := metrics.NewSet()

	reload := func() (int, error) {
		packs, err := config.LoadPackDir(cfg.PackDir)
		if err != nil {
			mset.ReloadRecorded(false, registry.Table().Len())
			return 0, err
		}
		defs, err := compiler.CompilePacks(packs)
		if err != nil {
			mset.ReloadRecorded(false, registry.Table().Len())
			return 0, err
		}
		table := registry.Swap(defs)
		mset.ReloadRecorded(true, table.Len())
		return table.Len(), nil
	}

	count, err := reload()
	if err != nil {
		logger.Error("failed to load definition packs", "dir", cfg.PackDir, "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("definition packs loaded", "dir", cfg.PackDir, "definitions", count)

	wire := effects.NewWireBroadcaster(logFrameSender{}, func() uint64 {
		return registry.Table().Version()
	})
	sink := effects.Fanout{effects.NewLogBroadcaster(nil), wire}

	clock := utils.NewTickClock(cfg.TickLength)
	scheduler := interaction.NewScheduler(registry, store, sink, clock)
	scheduler.SetObserver(mset)

	eng := engine.NewEngine(scheduler, store, clock)
	eng.SetObserver(mset)
	if cfg.Workers > 0 {
		eng.SetWorkers(cfg.Workers)
	}

	if cfg.Workload {
		for i := 0; i < cfg.Entities; i++ {
			store.Spawn(models.EntityID(fmt.Sprintf("entity-%04d", i)), nil, nil)
		}
		var targets []workload.Target
		for _, info := range registry.Table().Infos() {
			targets = append(targets, workload.Target{RootID: info.ID, Type: info.Type, Slot: models.SlotDefault})
		}
		gen, err := workload.NewGenerator(scheduler, store, workload.Spec{
			Arrival:     "poisson",
			RatePerTick: cfg.WorkloadRate,
			Targets:     targets,
		}, cfg.WorkloadSeed)
		if err != nil {
			logger.Error("failed to build workload generator", "error", err)
			stop()
			os.Exit(1)
		}
		eng.SetDriver(gen)
		logger.Info("workload generator enabled",
			"entities", cfg.Entities,
			"rate_per_tick", cfg.WorkloadRate,
			"seed", cfg.WorkloadSeed)
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           worldd.NewHTTPServer(registry, scheduler, reload, mset.Handler()).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("tick engine running", "tick_length", cfg.TickLength)
		if err := eng.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("tick engine error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
