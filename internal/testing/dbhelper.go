package testing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/benchload/internal/testinfra"
	"github.com/vvka-141/benchload/pkg/benchload"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: BENCHLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("BENCHLOAD_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("BENCHLOAD_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// CreateTestDB creates a fresh database with a random name and drops it when
// the test ends. It returns a ConnectionConfig pointing at the new database
// with the credentials of connString.
func CreateTestDB(t *testing.T, connString string) *benchload.ConnectionConfig {
	t.Helper()
	ctx := context.Background()

	dbName := "benchload_test_" + uuid.NewString()[:8]

	admin, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Fatalf("connect to test server: %v", err)
	}
	defer admin.Close(ctx)

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Fatalf("create test database %s: %v", dbName, err)
	}

	t.Cleanup(func() {
		conn, err := pgx.Connect(context.Background(), connString)
		if err != nil {
			t.Logf("cleanup: connect: %v", err)
			return
		}
		defer conn.Close(context.Background())
		if _, err := conn.Exec(context.Background(), "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize()+" WITH (FORCE)"); err != nil {
			t.Logf("cleanup: drop %s: %v", dbName, err)
		}
	})

	parsed, err := pgconn.ParseConfig(connString)
	if err != nil {
		t.Fatalf("parse test connection string: %v", err)
	}
	return &benchload.ConnectionConfig{
		Host:     parsed.Host,
		Port:     int(parsed.Port),
		Database: dbName,
		Username: parsed.User,
		Password: parsed.Password,
		SSLMode:  "disable",
	}
}

// GetTestPool opens a pool on the database described by config and closes
// it when the test ends.
func GetTestPool(t *testing.T, config *benchload.ConnectionConfig) *pgxpool.Pool {
	t.Helper()

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		config.Host, config.Port, config.Database, config.Username, config.Password)
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open test pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
