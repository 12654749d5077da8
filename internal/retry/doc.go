// Package retry retries connection attempts that fail for transient reasons.
//
// A run is fail-fast by default: the connector builds an Executor from
// --connect-retries, and zero retries means the first error is returned as is.
//
//	exec := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
