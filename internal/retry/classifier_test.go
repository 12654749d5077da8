package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPostgreSQLErrorClassifier_IsTransient(t *testing.T) {
	c := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure 08006", &pgconn.PgError{Code: "08006"}, true},
		{"too many connections 53300", &pgconn.PgError{Code: "53300"}, true},
		{"starting up 57P03", &pgconn.PgError{Code: "57P03"}, true},
		{"serialization 40001", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock 40P01", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available 55P03", &pgconn.PgError{Code: "55P03"}, true},
		{"wrapped pg error", fmt.Errorf("connect: %w", &pgconn.PgError{Code: "08001"}), true},
		{"bad password 28P01", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}, false},
		{"unknown database 3D000", &pgconn.PgError{Code: "3D000"}, false},
		{"syntax error 42601", &pgconn.PgError{Code: "42601"}, false},
		{"duplicate schema 42P06", &pgconn.PgError{Code: "42P06"}, false},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"temporary dns", &net.DNSError{Err: "server misbehaving", IsTemporary: true}, true},
		{"unknown host", &net.DNSError{Err: "no such host", IsNotFound: true}, false},
		{"message only", errors.New("read tcp: i/o timeout"), true},
		{"context canceled", context.Canceled, false},
		{"plain error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}
