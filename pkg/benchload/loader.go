package benchload

import "context"

// Loader runs the complete provisioning and load procedure for a project.
type Loader interface {
	// Load creates the schema, applies the DDL script and loads every listed
	// table. It returns on the first failing step.
	Load(ctx context.Context, config LoadConfig) error
}

// Repairer resolves pending-integrity tables left behind by a bulk load.
type Repairer interface {
	// Repair detects pending-integrity tables in the configured schema and
	// checks all of them. It returns the repaired table names.
	Repair(ctx context.Context, config LoadConfig) ([]string, error)
}
