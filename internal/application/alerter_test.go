package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketsync-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_Alerter_CooldownPerExchange(t *testing.T) {
	t.Parallel()
	clk := newFakeClock(time.Date(2025, 3, 3, 5, 0, 0, 0, time.UTC))
	n := &recordingNotifier{}
	a := NewAlerter(NewMemoryCooldown(15*time.Minute, clk), n, nil, WithAlertClock(clk))
	ctx := context.Background()

	require.True(t, a.FetchFailed(ctx, domain.ExchangeNSE, ErrFetch))
	clk.Advance(5 * time.Minute)
	require.False(t, a.FetchFailed(ctx, domain.ExchangeNSE, ErrFetch))
	require.True(t, a.FetchFailed(ctx, domain.ExchangeBSE, ErrFetch))
	clk.Advance(15 * time.Minute)
	require.True(t, a.FetchFailed(ctx, domain.ExchangeNSE, ErrFetch))

	require.Equal(t, 3, n.count())
	require.Contains(t, n.texts[0], "NSE")
	require.Contains(t, n.texts[0], "fetch error")
}

func Test_Alerter_GateErrorStillAlerts(t *testing.T) {
	t.Parallel()
	n := &recordingNotifier{}
	a := NewAlerter(failingGate{}, n, nil)
	require.True(t, a.FetchFailed(context.Background(), domain.ExchangeBSE, ErrFetch))
	require.Equal(t, 1, n.count())
}

func Test_Alerter_DeliveryFailureReported(t *testing.T) {
	t.Parallel()
	n := &recordingNotifier{err: errors.New("telegram down")}
	a := NewAlerter(nil, n, nil)
	require.False(t, a.FetchFailed(context.Background(), domain.ExchangeBSE, ErrFetch))
}

func Test_Alerter_FailedDeliveryReleasesCooldown(t *testing.T) {
	t.Parallel()
	clk := newFakeClock(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	n := &recordingNotifier{err: errors.New("telegram down")}
	a := NewAlerter(NewMemoryCooldown(15*time.Minute, clk), n, nil, WithAlertClock(clk))
	ctx := context.Background()

	require.False(t, a.FetchFailed(ctx, domain.ExchangeNSE, ErrFetch))

	n.fail(nil)
	clk.Advance(time.Minute)
	require.True(t, a.FetchFailed(ctx, domain.ExchangeNSE, ErrFetch))
	require.Equal(t, 1, n.count())

	clk.Advance(time.Minute)
	require.False(t, a.FetchFailed(ctx, domain.ExchangeNSE, ErrFetch))
	require.Equal(t, 1, n.count())
}

func Test_Alerter_NoChannelFallsBackToLog(t *testing.T) {
	t.Parallel()
	a := NewAlerter(nil, nil, nil)
	require.True(t, a.FetchFailed(context.Background(), domain.ExchangeNSE, ErrFetch))
}

func Test_MemoryCooldown_WindowBoundary(t *testing.T) {
	t.Parallel()
	clk := newFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	g := NewMemoryCooldown(time.Minute, clk)
	ctx := context.Background()

	ok, err := g.TryReserve(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	clk.Advance(59 * time.Second)
	ok, _ = g.TryReserve(ctx, "k")
	require.False(t, ok)

	clk.Advance(time.Second)
	ok, _ = g.TryReserve(ctx, "k")
	require.True(t, ok)
}
