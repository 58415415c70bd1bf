//go:build wireinject

package bootstrap

import (
	"context"

	"marketsync-service/internal/application"
	"marketsync-service/internal/infrastructure/grpc/healthserver"

	"github.com/google/wire"
)

var syncSet = wire.NewSet(
	ProvideLogger,
	ProvideConfig,
	ProvideClock,
	ProvideRepos,
	ProvideMarketHours,
	ProvideMetrics,
	ProvideFetchers,
	ProvideCooldownGate,
	ProvideNotifier,
	ProvideAlerter,
	application.NewQuoteCache,
	ProvideSynchronizer,
)

// InitApp builds the full service: read API, scheduler, gRPC health.
func InitApp(ctx context.Context) (*App, func(), error) {
	wire.Build(
		syncSet,
		application.NewMarketDataService,
		ProvidePublisher,
		ProvideScheduler,
		ProvideHTTPServer,
		healthserver.NewHealth,
		NewApp,
	)
	return nil, nil, nil
}

// InitSynchronizer builds only the sync side, for one-shot CLI runs.
func InitSynchronizer(ctx context.Context) (*application.Synchronizer, func(), error) {
	wire.Build(syncSet)
	return nil, nil, nil
}
