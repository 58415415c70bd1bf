package httpserver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_readyz_FailingCheck(t *testing.T) {
	_, srv := setup()
	srv.SetReadyCheck(func(ctx context.Context) error { return errors.New("hydrating") })
	h := NewRouter(srv)

	rec := get(t, h, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"code":503,"message":"not ready: hydrating"}`, rec.Body.String())
}

func Test_readyz_Ready(t *testing.T) {
	_, srv := setup()
	srv.SetReadyCheck(func(ctx context.Context) error { return nil })
	h := NewRouter(srv)

	rec := get(t, h, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "READY", rec.Body.String())
}

func Test_metricsRouteMountedWhenConfigured(t *testing.T) {
	_, srv := setup()
	h := NewRouter(srv)
	require.Equal(t, http.StatusBadRequest, get(t, h, "/metrics").Code, "unmounted /metrics falls through to /{exchange}")

	srv.SetMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	}))
	h = NewRouter(srv)
	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "# metrics", rec.Body.String())
}

func Test_swaggerPage(t *testing.T) {
	h, _ := setup()
	rec := get(t, h, "/swagger")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/openapi.yaml")
}

func Test_recovererReturnsEnvelope(t *testing.T) {
	h := recoverer()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := get(t, h, "/all")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"code":500,"message":"Internal Server Error"}`, rec.Body.String())
}
