package daemon

import (
	"context"

	"github.com/orchestrated-app/hub/internal/api"
	"github.com/orchestrated-app/hub/internal/bus"
	"github.com/orchestrated-app/hub/internal/config"
	"github.com/orchestrated-app/hub/internal/gateway"
	"github.com/orchestrated-app/hub/internal/home"
	"github.com/orchestrated-app/hub/internal/lock"
	"github.com/orchestrated-app/hub/internal/logging"
	"github.com/orchestrated-app/hub/internal/status"
	"github.com/orchestrated-app/hub/internal/store"
	"github.com/orchestrated-app/hub/internal/suggest"
	hubsync "github.com/orchestrated-app/hub/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile string
	Config  *config.Config
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideGateway,
			provideGenerator,
			provideOrchestrator,
			provideSyncEngine,
			provideAPIServer,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(home.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := home.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(home.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := home.DBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideGateway(p Params, logger *zap.Logger) *gateway.Client {
	return gateway.NewClient(p.Config.Gateway, logger)
}

func provideGenerator(p Params) suggest.Generator {
	return suggest.NewOpenAIGenerator(p.Config.OpenAI)
}

func provideOrchestrator(gen suggest.Generator, b *bus.Bus, logger *zap.Logger) *suggest.Orchestrator {
	return suggest.NewOrchestrator(gen, b, logger)
}

func provideSyncEngine(p Params, gw *gateway.Client, db *store.DB, sugg *suggest.Orchestrator, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *hubsync.Engine {
	return hubsync.NewEngine(gw, db, sugg, b, machine, logger, p.Config.Sync.Interval())
}

func provideAPIServer(db *store.DB, engine *hubsync.Engine, sugg *suggest.Orchestrator, gw *gateway.Client, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *api.Server {
	return api.NewServer(db, engine, sugg, gw, machine, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, engine *hubsync.Engine, machine *status.Machine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Start the sync loop: immediate refresh, then the ticker.
			engine.Start(context.Background())

			// Serve the HTTP API in the background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
					_ = machine.Transition(status.Errored)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			engine.Stop()
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
