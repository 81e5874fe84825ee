package rpc

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthServer_Status(t *testing.T) {
	t.Parallel()

	log := logrus.New()
	log.SetOutput(io.Discard)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := NewHealthServer(log)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(lis) }()

	client, err := NewHealthClient(lis.Addr().String(), log)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := client.Check(ctx)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("initial status = %s", status)
	}

	srv.SetServing(true)
	if status, err = client.Check(ctx); err != nil || status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status after SetServing = %s (%v)", status, err)
	}

	srv.Stop()
	if err := <-done; err != nil {
		t.Fatalf("serve returned %v", err)
	}
}
