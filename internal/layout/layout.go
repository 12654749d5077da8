package layout

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// Plan is a checked project: resolved paths and the tables in load order.
type Plan struct {
	Layout benchload.Layout
	Tables []Table
}

// Resolve fills in default file names and makes every path absolute
// relative to l.Root.
func Resolve(l benchload.Layout) (benchload.Layout, error) {
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return l, fmt.Errorf("invalid project path %s: %w", l.Root, err)
	}

	resolve := func(p, def string) string {
		if p == "" {
			p = def
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(root, p)
	}

	return benchload.Layout{
		Root:      root,
		TableList: resolve(l.TableList, benchload.DefaultTableListFile),
		DataDir:   resolve(l.DataDir, benchload.DefaultDataDir),
		DDLScript: resolve(l.DDLScript, benchload.DefaultDDLFile),
	}, nil
}

// Check resolves l and verifies that the table list, the DDL script, the
// data directory and one CSV file per table exist. Missing CSV files are
// reported together in a single error wrapping benchload.ErrMissingInput.
func Check(l benchload.Layout) (*Plan, error) {
	resolved, err := Resolve(l)
	if err != nil {
		return nil, err
	}

	if err := requireFile(resolved.DDLScript, "DDL script"); err != nil {
		return nil, err
	}

	tables, err := ReadTableList(resolved.TableList)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved.DataDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("data directory %s does not exist: %w", resolved.DataDir, benchload.ErrMissingInput)
	}

	var missing []string
	for i := range tables {
		tables[i].CSVPath = filepath.Join(resolved.DataDir, tables[i].Name+benchload.CSVExtension)
		if info, err := os.Stat(tables[i].CSVPath); err != nil || info.IsDir() {
			missing = append(missing, tables[i].CSVPath)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no CSV file for %d table(s):\n  %s",
			benchload.ErrMissingInput, len(missing), strings.Join(missing, "\n  "))
	}

	return &Plan{Layout: resolved, Tables: tables}, nil
}

// ReadTableList reads the ordered table list. Blank lines and lines starting
// with '#' are skipped. Duplicates and an empty list are errors.
func ReadTableList(path string) ([]Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("table list %s does not exist: %w", path, benchload.ErrMissingInput)
		}
		return nil, fmt.Errorf("failed to open table list: %w", err)
	}
	defer f.Close()

	var (
		tables []Table
		seen   = make(map[string]int)
		lineNo int
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, ident, err := ParseTableName(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %v: %w", path, lineNo, err, benchload.ErrInvalidConfig)
		}
		if first, dup := seen[ident]; dup {
			return nil, fmt.Errorf("%s:%d: table %s already listed on line %d: %w", path, lineNo, name, first, benchload.ErrInvalidConfig)
		}
		seen[ident] = lineNo
		tables = append(tables, Table{Name: name, Ident: ident})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table list %s: %w", path, err)
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("table list %s names no tables: %w", path, benchload.ErrInvalidConfig)
	}
	return tables, nil
}

func requireFile(path, what string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%s %s does not exist: %w", what, path, benchload.ErrMissingInput)
	}
	return nil
}
