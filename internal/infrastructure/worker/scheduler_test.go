package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	entries []string
	ch      chan string
}

func newRecorder() *recorder { return &recorder{ch: make(chan string, 32)} }

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.entries = append(r.entries, s)
	r.mu.Unlock()
	r.ch <- s
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries...)
}

func (r *recorder) expect(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-r.ch:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func (r *recorder) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case got := <-r.ch:
		t.Fatalf("unexpected %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeRunner struct {
	rec  *recorder
	hold chan struct{}
}

func (f *fakeRunner) RunCycle(context.Context) (application.CycleReport, error) {
	f.rec.add("cycle")
	if f.hold != nil {
		<-f.hold
	}
	return application.CycleReport{}, nil
}

type fakePublisher struct{ rec *recorder }

func (p fakePublisher) Publish(_ context.Context, ev domain.MarketEvent) error {
	p.rec.add("event:" + string(ev.Type))
	return nil
}

type setClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *setClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *setClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

var ist = time.FixedZone("UTC+05:30", 5*3600+1800)

func istHours(t *testing.T) domain.MarketHours {
	h, err := domain.ParseMarketHours("Mon,Tue,Wed,Thu,Fri", "09:15", "15:30", "+05:30")
	require.NoError(t, err)
	return h
}

func startScheduler(t *testing.T, s *SyncScheduler) (chan<- time.Time, func()) {
	t.Helper()
	tick := make(chan time.Time)
	s.NewTicker = func(time.Duration) (<-chan time.Time, func()) { return tick, func() {} }
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	return tick, func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler did not stop")
		}
	}
}

func TestScheduler_ForcedCycleWhileClosed(t *testing.T) {
	rec := newRecorder()
	clk := &setClock{t: time.Date(2025, 3, 8, 11, 0, 0, 0, ist)} // Saturday
	s := &SyncScheduler{
		Sync:   &fakeRunner{rec: rec},
		Market: application.NewMarketStateMachine(istHours(t)),
		Events: fakePublisher{rec: rec},
		Clock:  clk,
	}
	tick, stop := startScheduler(t, s)
	defer stop()

	rec.expect(t, "cycle")
	tick <- clk.Now()
	rec.expectNothing(t)
}

func TestScheduler_TransitionPublishedBeforeCycle(t *testing.T) {
	rec := newRecorder()
	clk := &setClock{t: time.Date(2025, 3, 3, 9, 14, 0, 0, ist)}
	s := &SyncScheduler{
		Sync:   &fakeRunner{rec: rec},
		Market: application.NewMarketStateMachine(istHours(t)),
		Events: fakePublisher{rec: rec},
		Clock:  clk,
	}
	tick, stop := startScheduler(t, s)
	defer stop()
	rec.expect(t, "cycle")

	clk.Set(time.Date(2025, 3, 3, 9, 15, 0, 0, ist))
	tick <- clk.Now()
	rec.expect(t, "event:market-opened")
	rec.expect(t, "cycle")

	clk.Set(time.Date(2025, 3, 3, 9, 16, 0, 0, ist))
	tick <- clk.Now()
	rec.expect(t, "cycle")

	clk.Set(time.Date(2025, 3, 3, 15, 30, 0, 0, ist))
	tick <- clk.Now()
	rec.expect(t, "event:market-closed")
	rec.expectNothing(t)

	require.Equal(t, []string{"cycle", "event:market-opened", "cycle", "cycle", "event:market-closed"}, rec.snapshot())
}

func TestScheduler_ShutdownWaitsForCycle(t *testing.T) {
	rec := newRecorder()
	hold := make(chan struct{})
	clk := &setClock{t: time.Date(2025, 3, 3, 10, 0, 0, 0, ist)}
	s := &SyncScheduler{
		Sync:   &fakeRunner{rec: rec},
		Market: application.NewMarketStateMachine(istHours(t)),
		Clock:  clk,
	}
	tick, stop := startScheduler(t, s)
	rec.expect(t, "cycle")

	s.Sync = &fakeRunner{rec: rec, hold: hold}
	tick <- clk.Now()
	rec.expect(t, "cycle")

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("stopped while a cycle was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(hold)
	<-stopped
}
