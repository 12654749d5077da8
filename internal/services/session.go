package services

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/benchload/internal/db"
	"github.com/vvka-141/benchload/pkg/benchload"
)

// sessionOpener opens the dedicated session of a run. release frees
// everything acquired for it and is never nil when err is nil.
type sessionOpener func(ctx context.Context, config *benchload.ConnectionConfig) (session benchload.DBSession, release func(), err error)

// SessionManager opens the single connection a run executes on.
// Session state (search_path, open transactions) lives on that connection,
// so every statement of a run must use the returned session.
type SessionManager struct {
	connectorFactory func(*benchload.ConnectionConfig) (benchload.Connector, error)
	logger           benchload.Logger
}

// NewSessionManager panics on nil dependencies.
func NewSessionManager(
	connectorFactory func(*benchload.ConnectionConfig) (benchload.Connector, error),
	logger benchload.Logger,
) *SessionManager {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SessionManager{connectorFactory: connectorFactory, logger: logger}
}

// Open connects and acquires one connection from the pool.
//
// The caller is responsible for calling release, which returns the
// connection, closes the pool and releases any cloud dialer.
func (sm *SessionManager) Open(ctx context.Context, config *benchload.ConnectionConfig) (benchload.DBSession, func(), error) {
	sm.logger.Verbose("Connecting to database '%s'", config.Database)

	connector, err := sm.connectorFactory(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		closeConnector(connector)
		return nil, nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		closeConnector(connector)
		return nil, nil, fmt.Errorf("%w: failed to acquire connection: %w", benchload.ErrConnectionFailed, err)
	}

	session := db.NewSession(conn)
	release := func() {
		session.Release()
		pool.Close()
		closeConnector(connector)
	}
	return session, release, nil
}

// closeConnector releases connectors that hold resources beyond the pool,
// such as the Cloud SQL dialer.
func closeConnector(connector benchload.Connector) {
	if c, ok := connector.(io.Closer); ok {
		_ = c.Close()
	}
}
