package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/benchload/internal/retry"
	"github.com/vvka-141/benchload/pkg/benchload"
)

// tokenExpiryWarning is the remaining lifetime below which a fresh token is
// reported, since a long load may outlive it.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector authenticates with a token from a TokenProvider in
// place of a password (AWS IAM, Azure Entra ID). A new token is fetched on
// every attempt.
type TokenBasedConnector struct {
	config        *benchload.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	logger        benchload.Logger
	retryExecutor *retry.Executor
}

func NewTokenBasedConnector(config *benchload.ConnectionConfig, tokenProvider TokenProvider, providerName string, opts ...ConnectorOption) *TokenBasedConnector {
	o := buildOptions(opts)
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		logger:        o.logger,
		retryExecutor: newRetryExecutor(o),
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	c.logger.Verbose("Acquiring %s token from %s", c.providerName, c.tokenProvider)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token

		pool, err = openPool(ctx, BuildDSN(&withToken), c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
