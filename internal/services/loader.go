package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vvka-141/benchload/internal/bulk"
	"github.com/vvka-141/benchload/internal/db"
	"github.com/vvka-141/benchload/internal/layout"
	"github.com/vvka-141/benchload/internal/scratch"
	"github.com/vvka-141/benchload/pkg/benchload"
)

// LoadService implements benchload.Loader and benchload.Repairer.
// Thread-Safety: NOT safe for concurrent Load() calls on the same instance.
type LoadService struct {
	logger      benchload.Logger
	progress    benchload.Progress
	openSession sessionOpener

	// scratchParent is where the per-run scratch directory is created.
	// Empty means the system temporary directory.
	scratchParent string
}

// NewLoadService creates a LoadService with all dependencies injected.
//
// Panics on nil dependencies: these are wiring mistakes that should fail at
// startup, not halfway through a load.
func NewLoadService(
	connectorFactory func(*benchload.ConnectionConfig) (benchload.Connector, error),
	logger benchload.Logger,
	progress benchload.Progress,
) *LoadService {
	if progress == nil {
		panic("progress cannot be nil")
	}
	sessions := NewSessionManager(connectorFactory, logger)

	return &LoadService{
		logger:      logger,
		progress:    progress,
		openSession: sessions.Open,
	}
}

// Load checks the project layout, provisions the schema, applies the DDL
// script and loads every listed table with the configured action. After a
// bulk load the pending-integrity tables of the schema are repaired.
func (s *LoadService) Load(ctx context.Context, config benchload.LoadConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	plan, err := layout.Check(config.Layout)
	if err != nil {
		return err
	}
	s.logger.Verbose("Project: %s (%d tables)", plan.Layout.Root, len(plan.Tables))

	ddl, err := os.ReadFile(plan.Layout.DDLScript)
	if err != nil {
		return fmt.Errorf("failed to read DDL script: %w", err)
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	return s.withSession(ctx, config, func(session benchload.DBSession) error {
		if err := s.prepareSchema(ctx, session, config.Schema); err != nil {
			return err
		}

		s.logger.Verbose("Applying %s", plan.Layout.DDLScript)
		if err := bulk.ApplyDDL(ctx, session, filepath.Base(plan.Layout.DDLScript), string(ddl)); err != nil {
			return err
		}
		s.logger.Info("✓ Applied %s", filepath.Base(plan.Layout.DDLScript))

		var total int64
		for i, table := range plan.Tables {
			rows, err := s.loadTable(ctx, session, config, table, i, len(plan.Tables))
			if err != nil {
				return err
			}
			total += rows
		}
		s.progress.Stop()
		s.logger.Info("✓ %s of %d tables completed (%d rows)", config.Action, len(plan.Tables), total)

		if config.Action == benchload.ActionLoad {
			return s.repair(ctx, session, config.Schema)
		}
		return nil
	})
}

// Repair checks the pending-integrity tables of the configured schema.
func (s *LoadService) Repair(ctx context.Context, config benchload.LoadConfig) ([]string, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	var repaired []string
	err := s.withSession(ctx, config, func(session benchload.DBSession) error {
		var err error
		repaired, err = bulk.Repair(ctx, session, config.Schema)
		return err
	})
	return repaired, err
}

// withSession resolves the connection of config, writing a service-file
// alias for remote hosts, and runs fn on a dedicated session. The scratch
// directory and the connection are released on every return path.
func (s *LoadService) withSession(ctx context.Context, config benchload.LoadConfig, fn func(benchload.DBSession) error) error {
	defer s.progress.Stop()

	conn := config.Connection
	if conn.AppName == "" {
		conn.AppName = benchload.DefaultAppName + "-" + uuid.NewString()[:8]
	}

	if conn.IsRemote() {
		dir, err := scratch.New(s.scratchParent)
		if err != nil {
			return err
		}
		defer func() {
			if err := dir.Close(); err != nil {
				s.logger.Error("%v", err)
			}
		}()

		if err := db.WriteServiceAlias(dir, &conn); err != nil {
			return fmt.Errorf("failed to write connection alias: %w", err)
		}
		s.logger.Verbose("Aliased %s to %s:%d/%s in %s", conn.ServiceName, conn.Host, conn.Port, conn.Database, conn.ServiceFile)
	}

	session, release, err := s.openSession(ctx, &conn)
	if err != nil {
		return err
	}
	defer release()
	s.logger.Verbose("Connected as application %s", conn.AppName)

	return fn(session)
}

func (s *LoadService) prepareSchema(ctx context.Context, session benchload.DBSession, schema string) error {
	created, err := bulk.CreateSchema(ctx, session, schema)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("✓ Created schema %s", schema)
	} else {
		s.logger.Verbose("Schema %s already exists", schema)
	}
	return bulk.SetSearchPath(ctx, session, schema)
}

func (s *LoadService) loadTable(
	ctx context.Context,
	session benchload.DBSession,
	config benchload.LoadConfig,
	table layout.Table,
	index, total int,
) (int64, error) {
	s.progress.TableStarted(table.Name, index, total)

	rows, err := s.transfer(ctx, session, config, table)
	if err != nil {
		s.progress.TableFailed(table.Name, err)
		return 0, err
	}

	s.progress.TableFinished(table.Name, rows)
	return rows, nil
}

func (s *LoadService) transfer(ctx context.Context, session benchload.DBSession, config benchload.LoadConfig, table layout.Table) (int64, error) {
	f, err := os.Open(table.CSVPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", benchload.ErrLoadFailed, table.Name, err)
	}
	defer f.Close()

	if config.Action == benchload.ActionLoad {
		return bulk.Load(ctx, session, config.Schema, table.Ident, f, config.CSV)
	}
	return bulk.Import(ctx, session, config.Schema, table.Ident, f, bulk.ImportOptions{
		CSV: config.CSV,
		OnCommit: func(rows int64) {
			s.progress.RowsCommitted(table.Name, rows)
		},
	})
}

func (s *LoadService) repair(ctx context.Context, session benchload.DBSession, schema string) error {
	s.logger.Verbose("Checking tables pending integrity in %s", schema)
	repaired, err := bulk.Repair(ctx, session, schema)
	if err != nil {
		return err
	}
	if len(repaired) == 0 {
		s.logger.Verbose("No tables pending integrity")
		return nil
	}
	s.logger.Info("✓ Checked integrity of %d table(s)", len(repaired))
	for _, name := range repaired {
		s.logger.Verbose("  %s", name)
	}
	return nil
}

var (
	_ benchload.Loader   = (*LoadService)(nil)
	_ benchload.Repairer = (*LoadService)(nil)
)
