package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/benchload/pkg/benchload"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name   string
		config benchload.ConnectionConfig
		want   string
	}{
		{
			name:   "local database only",
			config: benchload.ConnectionConfig{Database: "tpch"},
			want:   "dbname=tpch",
		},
		{
			name:   "local with port",
			config: benchload.ConnectionConfig{Database: "tpch", Port: 5433},
			want:   "port=5433 dbname=tpch",
		},
		{
			name:   "explicit host",
			config: benchload.ConnectionConfig{Host: "db", Port: 5432, Database: "tpch", Username: "bench", Password: "secret", SSLMode: "require"},
			want:   "host=db port=5432 dbname=tpch user=bench password=secret sslmode=require",
		},
		{
			name:   "service alias hides host",
			config: benchload.ConnectionConfig{Host: "db", Port: 5432, Database: "tpch", ServiceName: "benchload", ServiceFile: "/tmp/x/pg_service.conf", Username: "bench"},
			want:   "service=benchload servicefile=/tmp/x/pg_service.conf user=bench",
		},
		{
			name:   "quoting",
			config: benchload.ConnectionConfig{Database: "my db", Password: `it's a \ secret`},
			want:   `dbname='my db' password='it\'s a \\ secret'`,
		},
		{
			name:   "session settings",
			config: benchload.ConnectionConfig{Database: "tpch", AppName: "benchload", ConnectTimeout: 10 * time.Second, AdditionalParams: map[string]string{"b": "2", "a": "1"}},
			want:   "dbname=tpch application_name=benchload connect_timeout=10 a=1 b=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildDSN(&tt.config))
		})
	}
}

func TestBuildDSN_RoundTripsThroughPgconn(t *testing.T) {
	config := &benchload.ConnectionConfig{
		Host:     "db.example.com",
		Port:     6543,
		Database: "bench mark",
		Username: "loader",
		Password: `p'a\ss word`,
	}

	parsed, err := pgconn.ParseConfig(BuildDSN(config))
	require.NoError(t, err)

	assert.Equal(t, "db.example.com", parsed.Host)
	assert.Equal(t, uint16(6543), parsed.Port)
	assert.Equal(t, "bench mark", parsed.Database)
	assert.Equal(t, "loader", parsed.User)
	assert.Equal(t, `p'a\ss word`, parsed.Password)
}

func TestRedactDSN(t *testing.T) {
	config := &benchload.ConnectionConfig{Database: "tpch", Password: "secret"}

	assert.NotContains(t, RedactDSN(config), "secret")
	assert.Equal(t, "secret", config.Password, "original config must be untouched")
}
