package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"marketsync-service/internal/application"
	"marketsync-service/internal/config"
	"marketsync-service/internal/domain"
	"marketsync-service/internal/infrastructure/browser"
	infraconfig "marketsync-service/internal/infrastructure/config"
	"marketsync-service/internal/infrastructure/events"
	httpserver "marketsync-service/internal/infrastructure/http"
	"marketsync-service/internal/infrastructure/httpx"
	"marketsync-service/internal/infrastructure/logx"
	"marketsync-service/internal/infrastructure/memstore"
	"marketsync-service/internal/infrastructure/metrics"
	"marketsync-service/internal/infrastructure/pg"
	"marketsync-service/internal/infrastructure/provider"
	redisstore "marketsync-service/internal/infrastructure/redis"
	"marketsync-service/internal/infrastructure/telegram"
	"marketsync-service/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")

// Repos groups the durable side. Runs is nil with in-memory storage; Ping
// is nil when there is nothing to probe.
type Repos struct {
	Quotes application.QuoteRepo
	Runs   application.FetchRunRepo
	Ping   func(ctx context.Context) error
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideClock() application.Clock { return application.SystemClock() }

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, dbURL)
	if err != nil {
		return nil, func() {}, err
	}
	version, err := pg.RunMigrations(ctx, db)
	if err != nil {
		db.Close()
		return nil, func() {}, err
	}
	log.Info("schema migrated", zap.Uint("version", version))
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

// ProvideRepos builds repositories based on STORAGE ("pg" or "memory").
func ProvideRepos(ctx context.Context, log *zap.Logger, cfg config.Config) (Repos, func(), error) {
	switch cfg.Storage {
	case "pg":
		db, cleanup, err := ProvideDB(ctx, log, cfg)
		if err != nil {
			return Repos{}, cleanup, err
		}
		return Repos{
			Quotes: pg.NewQuoteRepo(db),
			Runs:   pg.NewFetchRunRepo(db),
			Ping:   db.Ping,
		}, cleanup, nil
	case "memory":
		return Repos{Quotes: memstore.NewQuoteRepo()}, func() {}, nil
	default:
		return Repos{}, func() {}, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

func ProvideMarketHours(cfg config.Config) (domain.MarketHours, error) {
	return domain.ParseMarketHours(cfg.TradingDays, cfg.TradingOpen, cfg.TradingClose, cfg.MarketUTCOffset)
}

func ProvideMetrics() *metrics.Metrics { return metrics.New() }

// ProvideFetchers returns the NSE and BSE fetchers for PROVIDER ("live" or "fake").
func ProvideFetchers(cfg config.Config, hours domain.MarketHours, log *zap.Logger) ([]application.Fetcher, error) {
	switch cfg.Provider {
	case "live":
		src := provider.NewFinanceGoSource(&http.Client{Timeout: infraconfig.DefaultHTTPTimeout})
		var opts []provider.YahooOption
		if cfg.ChartEnabled {
			opts = append(opts, provider.WithCharts(src, hours))
		}
		chrome := browser.NewChrome(browser.ChromeOptions{
			ExecPath: cfg.ChromePath,
			Headful:  cfg.ChromeHeadful,
			Log:      log,
		})
		return []application.Fetcher{
			provider.NewNSEFetcher(chrome, provider.NSEConfig{
				PortalURL: cfg.NSEPortalURL,
				Index:     cfg.NSEIndex,
				APIMarker: cfg.NSEAPIMarker,
				Symbols:   cfg.SymbolsNSE,
			}, log),
			provider.NewYahooFetcher(domain.ExchangeBSE, cfg.SymbolsBSE, src, log, opts...),
		}, nil
	case "fake":
		nse := cfg.SymbolsNSE
		if len(nse) == 0 {
			nse = cfg.SymbolsBSE
		}
		return []application.Fetcher{
			provider.NewFake(domain.ExchangeNSE, nse, 1000),
			provider.NewFake(domain.ExchangeBSE, cfg.SymbolsBSE, 1000),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported PROVIDER=%q", cfg.Provider)
	}
}

// ProvideCooldownGate picks the alert cooldown store from COOLDOWN_BACKEND
// ("memory", "redis" or "none").
func ProvideCooldownGate(cfg config.Config, clock application.Clock) (application.CooldownGate, func(), error) {
	switch cfg.CooldownBackend {
	case "memory":
		return application.NewMemoryCooldown(cfg.AlertCooldown, clock), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return redisstore.New(client, cfg.AlertCooldown), func() { _ = client.Close() }, nil
	case "none":
		return redisstore.NoCooldown{}, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported COOLDOWN_BACKEND=%q", cfg.CooldownBackend)
	}
}

// ProvideNotifier returns the Telegram notifier, or the log-only one when
// the bot token or chat id is missing.
func ProvideNotifier(cfg config.Config, log *zap.Logger) application.AlertNotifier {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		log.Warn("telegram not configured; alerts go to the log only")
		return application.LogNotifier{Log: log}
	}
	return &telegram.Notifier{
		BaseURL: cfg.TelegramAPIBase,
		Token:   cfg.TelegramToken,
		ChatID:  cfg.TelegramChatID,
		Client:  &httpx.Client{HTTP: &http.Client{Timeout: infraconfig.DefaultHTTPTimeout}},
		Log:     log,
	}
}

func ProvideAlerter(gate application.CooldownGate, notifier application.AlertNotifier, clock application.Clock, m *metrics.Metrics, log *zap.Logger) *application.Alerter {
	return application.NewAlerter(gate, notifier, log, application.WithAlertClock(clock), application.WithAlertMetrics(m))
}

func ProvideSynchronizer(cache *application.QuoteCache, repos Repos, fetchers []application.Fetcher, alerter *application.Alerter, clock application.Clock, m *metrics.Metrics, cfg config.Config, log *zap.Logger) *application.Synchronizer {
	opts := []application.SyncOption{
		application.WithSyncClock(clock),
		application.WithSyncMetrics(m),
		application.WithFetchTimeout(cfg.FetchTimeout),
		application.WithWriteTimeout(infraconfig.DefaultDBWriteTimeout),
		application.WithSyncLogger(log),
	}
	if repos.Runs != nil {
		opts = append(opts, application.WithFetchRuns(repos.Runs))
	}
	return application.NewSynchronizer(cache, repos.Quotes, fetchers, alerter, opts...)
}

// ProvidePublisher returns the Kafka publisher when KAFKA_BROKERS is set.
func ProvidePublisher(cfg config.Config, log *zap.Logger) (application.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.LogPublisher{Log: log}, func() {}
	}
	p := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaMarketTopic, log)
	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn("closing kafka writer", zap.Error(err))
		}
	}
}

func ProvideScheduler(sync *application.Synchronizer, hours domain.MarketHours, publisher application.EventPublisher, clock application.Clock, cfg config.Config, log *zap.Logger) *worker.SyncScheduler {
	return &worker.SyncScheduler{
		Sync:     sync,
		Market:   application.NewMarketStateMachine(hours),
		Events:   publisher,
		Clock:    clock,
		Interval: cfg.SyncInterval,
		Log:      log,
	}
}

// ProvideHTTPServer wires the read API with a readiness probe that waits
// for hydration and, with pg storage, a live pool.
func ProvideHTTPServer(svc *application.MarketDataService, sync *application.Synchronizer, repos Repos, m *metrics.Metrics) *httpserver.Server {
	srv := httpserver.NewServer(svc)
	srv.SetMetricsHandler(m.Handler())
	srv.SetReadyCheck(func(ctx context.Context) error {
		if !sync.Ready() {
			return errors.New("hydrating")
		}
		if repos.Ping != nil {
			if err := repos.Ping(ctx); err != nil {
				return fmt.Errorf("db: %w", err)
			}
		}
		return nil
	})
	return srv
}
