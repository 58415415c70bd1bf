package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"marketsync-service/internal/application"
	"marketsync-service/internal/config"
	infraconfig "marketsync-service/internal/infrastructure/config"
	"marketsync-service/internal/infrastructure/grpc/healthserver"
	httpserver "marketsync-service/internal/infrastructure/http"
	"marketsync-service/internal/infrastructure/worker"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App is the long-running service: read API, scheduler and gRPC health.
type App struct {
	Config    config.Config
	Log       *zap.Logger
	Sync      *application.Synchronizer
	Scheduler *worker.SyncScheduler
	HTTP      *httpserver.Server
	Health    *healthserver.Health
}

func NewApp(cfg config.Config, log *zap.Logger, sync *application.Synchronizer, sched *worker.SyncScheduler, srv *httpserver.Server, h *healthserver.Health) *App {
	return &App{Config: cfg, Log: log, Sync: sync, Scheduler: sched, HTTP: srv, Health: h}
}

// Run hydrates the cache, marks the service ready and blocks until ctx is
// done or one of the servers fails.
func (a *App) Run(ctx context.Context) error {
	// Hydrate logs its own failure; the startup cycle refills the cache.
	_, _ = a.Sync.Hydrate(ctx)
	a.Health.SetReady(true)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Scheduler.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return a.serveHTTP(gctx)
	})
	g.Go(func() error {
		return healthserver.RunServer(gctx, a.Config.GRPCAddr, a.Health, a.Log)
	})
	return g.Wait()
}

func (a *App) serveHTTP(ctx context.Context) error {
	addr := ":" + a.Config.Port
	server := &http.Server{
		Addr:    addr,
		Handler: httpserver.NewRouter(a.HTTP),
	}
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	a.Log.Info("server stopped")
	return err
}
