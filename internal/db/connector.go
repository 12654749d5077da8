package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/benchload/internal/logging"
	"github.com/vvka-141/benchload/internal/retry"
	"github.com/vvka-141/benchload/pkg/benchload"
)

// A run uses one dedicated session; the pool only needs room for it.
const (
	DefaultMaxConns        = 2
	DefaultMaxConnIdleTime = 30 * time.Minute
)

// ConnectorOption configures connectors created by NewConnector.
type ConnectorOption func(*connectorOptions)

type connectorOptions struct {
	retries int
	logger  benchload.Logger
}

// WithRetries sets how often a transient connection failure is retried.
func WithRetries(n int) ConnectorOption {
	return func(o *connectorOptions) { o.retries = n }
}

// WithLogger routes retry messages and server notices to logger.
func WithLogger(logger benchload.Logger) ConnectorOption {
	return func(o *connectorOptions) { o.logger = logger }
}

func buildOptions(opts []ConnectorOption) connectorOptions {
	o := connectorOptions{logger: logging.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newRetryExecutor(o connectorOptions) *retry.Executor {
	strategy := retry.NewExponentialBackoff(o.retries,
		retry.WithInitialDelay(benchload.DefaultRetryInitialDelay),
		retry.WithMaxDelay(benchload.DefaultRetryMaxDelay),
	)
	logger := o.logger
	return retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Info("Connection attempt failed (%v), retrying in %v", err, delay.Round(time.Millisecond))
		})
}

func configurePool(poolConfig *pgxpool.Config, logger benchload.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

// openPool parses dsn, opens a pool and pings it.
func openPool(ctx context.Context, dsn string, config *benchload.ConnectionConfig, logger benchload.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	configurePool(poolConfig, logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config)
	}
	return pool, nil
}

// StandardConnector connects with username and password, or with whatever
// the driver picks up from the environment when neither is given.
type StandardConnector struct {
	config        *benchload.ConnectionConfig
	logger        benchload.Logger
	retryExecutor *retry.Executor
}

func NewStandardConnector(config *benchload.ConnectionConfig, opts ...ConnectorOption) *StandardConnector {
	o := buildOptions(opts)
	return &StandardConnector{
		config:        config,
		logger:        o.logger,
		retryExecutor: newRetryExecutor(o),
	}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	dsn := BuildDSN(c.config)
	c.logger.Verbose("Connecting with %s", RedactDSN(c.config))

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, dsn, c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector returns the connector matching config.AuthMethod.
func NewConnector(config *benchload.ConnectionConfig, opts ...ConnectorOption) (benchload.Connector, error) {
	switch config.AuthMethod {
	case benchload.AuthMethodStandard:
		return NewStandardConnector(config, opts...), nil
	case benchload.AuthMethodAWSIAM:
		provider, err := NewAWSIAMTokenProvider(config.Host, config.Port, config.AWSRegion, config.Username)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(config, provider, "AWS IAM", opts...), nil
	case benchload.AuthMethodAzureEntraID:
		provider, err := newAzureTokenProvider(config)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(config, provider, "Azure", opts...), nil
	case benchload.AuthMethodGoogleIAM:
		if config.GoogleInstance == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", benchload.ErrInvalidConfig)
		}
		if config.Username == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", benchload.ErrInvalidConfig)
		}
		return NewGoogleCloudSQLConnector(config, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, benchload.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable
// guidance. The result always wraps benchload.ErrConnectionFailed and the
// original error.
func wrapConnectionError(err error, config *benchload.ConnectionConfig) error {
	errStr := strings.ToLower(err.Error())
	target := describeTarget(config)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready)
  - Wrong host or port`, target)

	case strings.Contains(errStr, "no such host"):
		hint = fmt.Sprintf(`cannot resolve host of %s

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, target)

	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf(`password authentication failed for %s

Possible causes:
  - Wrong password (check --password or $PGPASSWORD)
  - Wrong username (-U)`, target)

	case strings.Contains(errStr, "database") && strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf(`database "%s" does not exist

To create it:
  createdb %s`, config.Database, config.Database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets`, target)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)`

	default:
		return fmt.Errorf("%w: %w", benchload.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%w: %s\n\nOriginal error: %w", benchload.ErrConnectionFailed, hint, err)
}

func describeTarget(config *benchload.ConnectionConfig) string {
	if config.Host == "" {
		return fmt.Sprintf("local database %q", config.Database)
	}
	port := config.Port
	if port == 0 {
		port = benchload.DefaultPort
	}
	return fmt.Sprintf("%s:%d/%s", config.Host, port, config.Database)
}
