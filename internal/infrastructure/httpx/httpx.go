package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Logger is the subset of a structured logger DoJSON reports retries to.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
}

type zapLogger struct{ s *zap.SugaredLogger }

func (z zapLogger) Info(msg string, kv ...any) { z.s.Infow(msg, kv...) }
func (z zapLogger) Warn(msg string, kv ...any) { z.s.Warnw(msg, kv...) }

// Zap adapts a zap logger to Logger.
func Zap(l *zap.Logger) Logger { return zapLogger{s: l.Sugar()} }

type Client struct {
	HTTP  *http.Client
	Token string

	// MaxElapsed caps the total retry time; 3s when zero.
	MaxElapsed time.Duration
}

// DoJSON sends req, retrying transport errors and 5xx responses with
// exponential backoff, and decodes a 200 body into out (skipped when out is nil).
// Requests with a body must have GetBody set, as http.NewRequest does for
// in-memory readers.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any, log Logger) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}
	req = req.WithContext(ctx)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 1 * time.Second
	exp.MaxElapsedTime = 3 * time.Second
	if c.MaxElapsed > 0 {
		exp.MaxElapsedTime = c.MaxElapsed
	}

	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(fmt.Errorf("rewind body: %w", err))
			}
			req.Body = body
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			if log != nil {
				log.Warn("httpx.transport_error", "url", req.URL.Redacted(), "attempt", attempt, "error", err.Error())
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			if log != nil {
				log.Warn("httpx.server_error", "url", req.URL.Redacted(), "attempt", attempt, "status", resp.StatusCode)
			}
			return fmt.Errorf("server error %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("status %d: %s", resp.StatusCode, snippet))
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		if log != nil && attempt > 1 {
			log.Info("httpx.recovered", "url", req.URL.Redacted(), "attempts", attempt)
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(exp, ctx))
}
