package application

import (
	"context"
	"fmt"

	"marketsync-service/internal/domain"

	"go.uber.org/zap"
)

// Alerter routes fetch failures to the operator channel, at most once per
// cooldown window per exchange.
type Alerter struct {
	gate     CooldownGate
	notifier AlertNotifier
	clock    Clock
	metrics  SyncMetrics
	log      *zap.Logger
}

func NewAlerter(gate CooldownGate, notifier AlertNotifier, log *zap.Logger, opts ...AlerterOption) *Alerter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Alerter{gate: gate, notifier: notifier, log: log, clock: realClock{}, metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(a)
	}
	if a.notifier == nil {
		a.notifier = LogNotifier{Log: log}
	}
	return a
}

type AlerterOption func(*Alerter)

func WithAlertClock(c Clock) AlerterOption         { return func(a *Alerter) { a.clock = c } }
func WithAlertMetrics(m SyncMetrics) AlerterOption { return func(a *Alerter) { a.metrics = m } }

func alertKey(ex domain.Exchange) string { return "alert:fetch:" + string(ex) }

// FetchFailed reports whether an alert was handed to the notifier.
func (a *Alerter) FetchFailed(ctx context.Context, ex domain.Exchange, cause error) bool {
	log := a.log.With(zap.String("exchange", string(ex)), zap.NamedError("cause", cause))
	if a.gate != nil {
		ok, err := a.gate.TryReserve(ctx, alertKey(ex))
		if err != nil {
			log.Warn("alert.cooldown_unavailable", zap.Error(err))
		} else if !ok {
			a.metrics.AlertSuppressed(ex)
			log.Debug("alert.suppressed")
			return false
		}
	}
	text := fmt.Sprintf("[marketsync] %s fetch failed at %s: %v",
		ex, a.clock.Now().Format("2006-01-02 15:04:05 MST"), cause)
	if err := a.notifier.Notify(ctx, text); err != nil {
		log.Warn("alert.delivery_failed", zap.Error(err))
		a.release(ctx, ex, log)
		return false
	}
	a.metrics.AlertSent(ex)
	log.Info("alert.sent")
	return true
}

// release reopens the window after a failed delivery so the next failure
// can alert again.
func (a *Alerter) release(ctx context.Context, ex domain.Exchange, log *zap.Logger) {
	r, ok := a.gate.(CooldownReleaser)
	if !ok {
		return
	}
	if err := r.Release(ctx, alertKey(ex)); err != nil {
		log.Warn("alert.cooldown_release_failed", zap.Error(err))
	}
}

// LogNotifier is used when no alert channel is configured.
type LogNotifier struct{ Log *zap.Logger }

func (n LogNotifier) Notify(_ context.Context, text string) error {
	log := n.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Warn("alert.no_channel", zap.String("text", text))
	return nil
}
