package healthserver

import (
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported alongside the overall ("") status.
const ServiceName = "marketsync.MarketData"

// Health wraps the standard health service; everything starts NOT_SERVING.
type Health struct {
	srv *health.Server
}

func NewHealth() *Health {
	h := &Health{srv: health.NewServer()}
	h.SetReady(false)
	return h
}

// SetReady flips the overall and the named service status together.
func (h *Health) SetReady(ready bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.srv.SetServingStatus("", st)
	h.srv.SetServingStatus(ServiceName, st)
}

// Shutdown reports NOT_SERVING to every watcher and ignores later updates.
func (h *Health) Shutdown() { h.srv.Shutdown() }
