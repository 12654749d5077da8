package benchload

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector establishes database connections. Implementations cover the
// supported authentication methods (password, AWS IAM, Azure Entra ID,
// Google Cloud SQL IAM).
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool must be closed by the caller.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
