package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// GoogleCloudSQLConnector connects to Cloud SQL through the Cloud SQL Go
// Connector with IAM database authentication. Host and port are ignored; the
// instance connection name locates the server.
//
// Close must be called after the pool is closed to release the dialer.
type GoogleCloudSQLConnector struct {
	config *benchload.ConnectionConfig
	logger benchload.Logger
	dialer *cloudsqlconn.Dialer
}

func NewGoogleCloudSQLConnector(config *benchload.ConnectionConfig, opts ...ConnectorOption) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config: config,
		logger: buildOptions(opts).logger,
	}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	// TLS is handled by the dialer.
	direct := benchload.ConnectionConfig{
		Host:     c.config.GoogleInstance,
		Database: c.config.Database,
		Username: c.config.Username,
		SSLMode:  "disable",
		AppName:  c.config.AppName,
	}

	poolConfig, err := pgxpool.ParseConfig(BuildDSN(&direct))
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	instance := c.config.GoogleInstance
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}
	configurePool(poolConfig, c.logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		dialer.Close()
		return nil, wrapConnectionError(err, c.config)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		dialer.Close()
		return nil, wrapConnectionError(err, c.config)
	}

	c.dialer = dialer
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		c.dialer.Close()
		c.dialer = nil
	}
	return nil
}
