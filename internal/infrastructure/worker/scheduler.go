package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"
	infraconfig "marketsync-service/internal/infrastructure/config"

	"go.uber.org/zap"
)

var _ application.Worker = (*SyncScheduler)(nil)

// CycleRunner is the part of the synchronizer the scheduler drives.
type CycleRunner interface {
	RunCycle(ctx context.Context) (application.CycleReport, error)
}

// SyncScheduler runs one forced cycle at startup, then a cycle per tick
// while the market is open.
type SyncScheduler struct {
	Sync     CycleRunner
	Market   *application.MarketStateMachine
	Events   application.EventPublisher
	Clock    application.Clock
	Interval time.Duration
	Log      *zap.Logger

	// NewTicker is swapped in tests; defaults to time.NewTicker.
	NewTicker func(time.Duration) (<-chan time.Time, func())

	wg sync.WaitGroup
}

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

func (s *SyncScheduler) Start(ctx context.Context) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}
	if s.Clock == nil {
		s.Clock = application.SystemClock()
	}
	if s.NewTicker == nil {
		s.NewTicker = systemTicker
	}

	now := s.Clock.Now()
	s.Market.Observe(now)
	log.Info("scheduler.started",
		zap.Duration("interval", s.Interval),
		zap.String("market", s.Market.State().String()),
	)
	s.runCycle(ctx, log, "startup")

	tick, stop := s.NewTicker(s.Interval)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			log.Info("scheduler.stopped")
			return
		case <-tick:
			s.onTick(ctx, log)
		}
	}
}

func (s *SyncScheduler) onTick(ctx context.Context, log *zap.Logger) {
	if ev, changed := s.Market.Observe(s.Clock.Now()); changed {
		s.publish(ctx, log, ev)
	}
	if !s.Market.IsOpen() {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runCycle(ctx, log, "tick")
	}()
}

func (s *SyncScheduler) runCycle(ctx context.Context, log *zap.Logger, trigger string) {
	start := time.Now()
	rep, err := s.Sync.RunCycle(ctx)
	if errors.Is(err, application.ErrCycleInFlight) {
		log.Info("scheduler.cycle_skipped", zap.String("trigger", trigger))
		return
	}
	if err != nil {
		log.Error("scheduler.cycle_failed", zap.String("trigger", trigger), zap.Error(err))
		return
	}
	log.Info("scheduler.cycle_done",
		zap.String("trigger", trigger),
		zap.Int("fetchers", len(rep.Runs)),
		zap.Int("failed", rep.Failed()),
		zap.Duration("took", time.Since(start)),
	)
}

func (s *SyncScheduler) publish(ctx context.Context, log *zap.Logger, ev domain.MarketEvent) {
	log.Info("market.transition", zap.String("event", string(ev.Type)), zap.Time("at", ev.At))
	if s.Events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, infraconfig.DefaultPublishTimeout)
	defer cancel()
	if err := s.Events.Publish(pctx, ev); err != nil {
		log.Warn("market.publish_failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}
