package healthserver

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RunServer starts a gRPC server exposing h and blocks until context is done.
func RunServer(ctx context.Context, addr string, h *Health, log *zap.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, lis, h, log)
}

// Serve is RunServer on an existing listener.
func Serve(ctx context.Context, lis net.Listener, h *Health, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	gs := grpc.NewServer(grpc.Creds(insecure.NewCredentials()))
	healthpb.RegisterHealthServer(gs, h.srv)
	errCh := make(chan error, 1)
	go func() {
		log.Info("grpc_server_started", zap.String("addr", lis.Addr().String()))
		if err := gs.Serve(lis); err != nil {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	select {
	case <-ctx.Done():
		log.Info("grpc_server_stopping")
		h.Shutdown()
		gs.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
