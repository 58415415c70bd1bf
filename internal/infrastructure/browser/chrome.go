package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	infraconfig "marketsync-service/internal/infrastructure/config"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

type ChromeOptions struct {
	ExecPath    string
	Headful     bool
	UserAgent   string
	BlockedURLs []string
	Log         *zap.Logger
}

// Chrome is the chromedp-backed Driver. Every session gets its own browser
// process so cookies never leak between fetches.
type Chrome struct {
	opts ChromeOptions
}

var _ Driver = (*Chrome)(nil)

func NewChrome(opts ChromeOptions) *Chrome {
	if opts.UserAgent == "" {
		opts.UserAgent = infraconfig.DefaultBrowserUA
	}
	if opts.BlockedURLs == nil {
		opts.BlockedURLs = DefaultBlockedURLs
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Chrome{opts: opts}
}

func (c *Chrome) NewSession(ctx context.Context) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !c.opts.Headful),
		chromedp.UserAgent(c.opts.UserAgent),
		chromedp.WindowSize(1366, 900),
	)
	if c.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &chromeSession{
		ctx:     tabCtx,
		log:     c.opts.Log,
		pending: map[network.RequestID]*watch{},
		cancel: func() {
			tabCancel()
			allocCancel()
		},
	}
	chromedp.ListenTarget(tabCtx, s.onEvent)
	if err := chromedp.Run(tabCtx, network.Enable(), network.SetBlockedURLS(c.opts.BlockedURLs)); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return s, nil
}

type watch struct {
	marker string
	ch     chan []byte
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
	once   sync.Once

	mu      sync.Mutex
	watches []*watch
	pending map[network.RequestID]*watch
}

func (s *chromeSession) Intercept(urlMarker string) <-chan []byte {
	w := &watch{marker: urlMarker, ch: make(chan []byte, 4)}
	s.mu.Lock()
	s.watches = append(s.watches, w)
	s.mu.Unlock()
	return w.ch
}

func (s *chromeSession) onEvent(ev any) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		s.mu.Lock()
		for _, w := range s.watches {
			if strings.Contains(e.Response.URL, w.marker) {
				s.pending[e.RequestID] = w
				break
			}
		}
		s.mu.Unlock()
	case *network.EventLoadingFinished:
		s.mu.Lock()
		w, ok := s.pending[e.RequestID]
		delete(s.pending, e.RequestID)
		s.mu.Unlock()
		if ok {
			// Listener callbacks must not block on CDP calls.
			go s.readBody(w, e.RequestID)
		}
	}
}

func (s *chromeSession) readBody(w *watch, id network.RequestID) {
	c := chromedp.FromContext(s.ctx)
	if c == nil || c.Target == nil {
		return
	}
	body, err := network.GetResponseBody(id).Do(cdp.WithExecutor(s.ctx, c.Target))
	if err != nil {
		s.log.Debug("browser.body_unavailable", zap.String("marker", w.marker), zap.Error(err))
		return
	}
	select {
	case w.ch <- body:
	default:
	}
}

func (s *chromeSession) Navigate(url string) error {
	return chromedp.Run(s.ctx, chromedp.Navigate(url))
}

func (s *chromeSession) Evaluate(expr string, out any) error {
	return chromedp.Run(s.ctx, chromedp.Evaluate(expr, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
}

func (s *chromeSession) Close() {
	s.once.Do(func() {
		_ = chromedp.Cancel(s.ctx)
		s.cancel()
	})
}
