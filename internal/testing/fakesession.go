package testing

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// CopyCall records one CopyFrom invocation on a FakeSession.
type CopyCall struct {
	SQL  string
	Data string
}

// FakeSession is an in-memory benchload.DBSession for unit tests. It records
// every statement and answers queries from canned rows.
type FakeSession struct {
	mu sync.Mutex

	Execs  []string
	Copies []CopyCall
	// Statements holds Exec, Query and COPY statements in call order.
	Statements []string

	// ExecErr returns an error for a statement, or nil.
	ExecErr func(sql string) error
	// CopyErr returns an error for a COPY statement and its data, or nil.
	CopyErr func(sql, data string) error
	// QueryRows answers queries; nil yields no rows.
	QueryRows func(sql string, args []any) ([][]any, error)
}

func (f *FakeSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return pgconn.CommandTag{}, err
	}
	f.Execs = append(f.Execs, sql)
	f.Statements = append(f.Statements, sql)
	if f.ExecErr != nil {
		if err := f.ExecErr(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag(firstWord(sql)), nil
}

func (f *FakeSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.Statements = append(f.Statements, sql)
	if f.QueryRows == nil {
		return &FakeRows{}, nil
	}
	rows, err := f.QueryRows(sql, args)
	if err != nil {
		return nil, err
	}
	return &FakeRows{rows: rows}, nil
}

func (f *FakeSession) CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return pgconn.CommandTag{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return pgconn.CommandTag{}, err
	}
	f.Copies = append(f.Copies, CopyCall{SQL: sql, Data: string(data)})
	f.Statements = append(f.Statements, sql)
	if f.CopyErr != nil {
		if err := f.CopyErr(sql, string(data)); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag(fmt.Sprintf("COPY %d", countLines(string(data)))), nil
}

// ExecsContaining returns the executed statements containing substr.
func (f *FakeSession) ExecsContaining(substr string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, sql := range f.Execs {
		if strings.Contains(sql, substr) {
			out = append(out, sql)
		}
	}
	return out
}

func firstWord(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// countLines counts records of test data, which never embeds newlines in
// quoted fields.
func countLines(data string) int {
	if data == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(data, "\n"), "\n") + 1
}

// FakeRows is a pgx.Rows over canned values. Scan assigns by reflection, so
// destinations must have the exact type of the canned value.
type FakeRows struct {
	rows   [][]any
	pos    int
	err    error
	closed bool
}

func (r *FakeRows) Close()                                       { r.closed = true }
func (r *FakeRows) Err() error                                   { return r.err }
func (r *FakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *FakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *FakeRows) RawValues() [][]byte                          { return nil }
func (r *FakeRows) Conn() *pgx.Conn                              { return nil }

func (r *FakeRows) Next() bool {
	if r.closed || r.pos >= len(r.rows) {
		r.closed = true
		return false
	}
	r.pos++
	return true
}

func (r *FakeRows) Values() ([]any, error) {
	return r.rows[r.pos-1], nil
}

func (r *FakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		r.err = fmt.Errorf("scan: %d destinations for %d values", len(dest), len(row))
		return r.err
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		value := reflect.ValueOf(row[i])
		if !value.Type().AssignableTo(target.Elem().Type()) {
			return fmt.Errorf("scan: cannot assign %T to %T", row[i], d)
		}
		target.Elem().Set(value)
	}
	return nil
}

var _ benchload.DBSession = (*FakeSession)(nil)
