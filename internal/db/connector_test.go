package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/benchload/pkg/benchload"
)

func TestWrapConnectionError(t *testing.T) {
	remote := &benchload.ConnectionConfig{Host: "db.example.com", Port: 5433, Database: "tpch"}
	local := &benchload.ConnectionConfig{Database: "tpch"}

	tests := []struct {
		name         string
		errMsg       string
		config       *benchload.ConnectionConfig
		wantContains string
	}{
		{"refused remote", "dial tcp 10.0.0.1:5433: connection refused", remote, "connection refused to db.example.com:5433/tpch"},
		{"refused local", "dial unix /var/run/postgresql/.s.PGSQL.5432: connect: connection refused", local, `connection refused to local database "tpch"`},
		{"refused windows", "connectex: No connection could be made because the target machine actively refused it", remote, "connection refused"},
		{"no such host", "lookup db.example.com: no such host", remote, "cannot resolve host"},
		{"password", `password authentication failed for user "bench"`, remote, "--password or $PGPASSWORD"},
		{"missing database", `database "tpch" does not exist`, remote, "createdb tpch"},
		{"timeout", "dial tcp: i/o timeout", remote, "connection timed out"},
		{"ssl", "server refused TLS connection", remote, "SSL/TLS connection error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := errors.New(tt.errMsg)
			err := wrapConnectionError(original, tt.config)

			assert.Contains(t, err.Error(), tt.wantContains)
			assert.ErrorIs(t, err, original)
			assert.ErrorIs(t, err, benchload.ErrConnectionFailed)
		})
	}
}

func TestWrapConnectionError_Unknown(t *testing.T) {
	original := errors.New("something odd")
	err := wrapConnectionError(original, &benchload.ConnectionConfig{Database: "x"})

	assert.ErrorIs(t, err, original)
	assert.ErrorIs(t, err, benchload.ErrConnectionFailed)
	assert.NotContains(t, err.Error(), "Possible causes")
}

func TestNewConnector_SelectsImplementation(t *testing.T) {
	standard, err := NewConnector(&benchload.ConnectionConfig{Database: "tpch"})
	require.NoError(t, err)
	assert.IsType(t, &StandardConnector{}, standard)

	google, err := NewConnector(&benchload.ConnectionConfig{
		Database:       "tpch",
		Username:       "sa@project.iam",
		AuthMethod:     benchload.AuthMethodGoogleIAM,
		GoogleInstance: "project:region:instance",
	})
	require.NoError(t, err)
	assert.IsType(t, &GoogleCloudSQLConnector{}, google)

	aws, err := NewConnector(&benchload.ConnectionConfig{
		Host:       "db.rds.amazonaws.com",
		Database:   "tpch",
		Username:   "bench",
		AuthMethod: benchload.AuthMethodAWSIAM,
		AWSRegion:  "eu-west-1",
	})
	require.NoError(t, err)
	assert.IsType(t, &TokenBasedConnector{}, aws)
}

func TestNewConnector_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config *benchload.ConnectionConfig
		want   error
	}{
		{"google without instance", &benchload.ConnectionConfig{Username: "u", AuthMethod: benchload.AuthMethodGoogleIAM}, benchload.ErrInvalidConfig},
		{"google without user", &benchload.ConnectionConfig{GoogleInstance: "p:r:i", AuthMethod: benchload.AuthMethodGoogleIAM}, benchload.ErrInvalidConfig},
		{"aws without region", &benchload.ConnectionConfig{Host: "h", Username: "u", AuthMethod: benchload.AuthMethodAWSIAM}, benchload.ErrInvalidConfig},
		{"aws without host", &benchload.ConnectionConfig{Username: "u", AWSRegion: "r", AuthMethod: benchload.AuthMethodAWSIAM}, benchload.ErrInvalidConfig},
		{"unknown", &benchload.ConnectionConfig{AuthMethod: benchload.AuthMethod(42)}, benchload.ErrUnsupportedAuthMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConnector(tt.config)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAWSIAMTokenProvider_DefaultPort(t *testing.T) {
	p, err := NewAWSIAMTokenProvider("db.rds.amazonaws.com", 0, "us-east-1", "bench")
	require.NoError(t, err)
	assert.Equal(t, "db.rds.amazonaws.com:5432", p.endpoint)
	assert.NotContains(t, p.String(), "token")
}

// stubTokenProvider hands out fixed tokens and counts calls.
type stubTokenProvider struct {
	token string
	err   error
	calls int
}

func (s *stubTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	s.calls++
	return s.token, time.Now().Add(time.Hour), s.err
}

func (s *stubTokenProvider) String() string { return "stub" }

func TestTokenBasedConnector_TokenFailureIsNotRetried(t *testing.T) {
	provider := &stubTokenProvider{err: fmt.Errorf("credentials expired")}
	connector := NewTokenBasedConnector(&benchload.ConnectionConfig{Database: "tpch"}, provider, "Test", WithRetries(3))

	_, err := connector.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire Test token")
	assert.Equal(t, 1, provider.calls)
}

func TestStandardConnector_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	connector := NewStandardConnector(&benchload.ConnectionConfig{Host: "127.0.0.1", Port: 1, Database: "tpch"}, WithRetries(5))
	_, err := connector.Connect(ctx)
	assert.Error(t, err)
}
