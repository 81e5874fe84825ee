package rpc

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient wraps a grpc.health.v1 client for a pipeline process.
type HealthClient struct {
	client healthpb.HealthClient
	conn   *grpc.ClientConn
	log    *logrus.Logger
}

// NewHealthClient creates a HealthClient for serverAddr. The connection is
// plaintext and established lazily on the first call.
func NewHealthClient(serverAddr string, logger *logrus.Logger) (*HealthClient, error) {
	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("create gRPC client for %s: %w", serverAddr, err)
	}
	logger.Debugf("Created gRPC health client for %s", serverAddr)
	return &HealthClient{client: healthpb.NewHealthClient(conn), conn: conn, log: logger}, nil
}

// Check returns the serving status of the pipeline service.
func (c *HealthClient) Check(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		c.log.WithError(err).Debug("Health check RPC failed")
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Close closes the connection.
func (c *HealthClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
