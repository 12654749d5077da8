package layout

import (
	"fmt"
	"strings"
)

// Table is one entry of the table list.
type Table struct {
	// Name is the name as listed, without surrounding quotes. It names the
	// CSV file.
	Name string

	// Ident is the SQL identifier. Unquoted names fold to lower case; quoted
	// names keep their case.
	Ident string

	// CSVPath is the data file of the table.
	CSVPath string
}

// ParseTableName turns one table list entry into its file name and SQL
// identifier.
func ParseTableName(entry string) (name, ident string, err error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return "", "", fmt.Errorf("empty table name")
	}

	if strings.HasPrefix(entry, `"`) {
		if len(entry) < 3 || !strings.HasSuffix(entry, `"`) {
			return "", "", fmt.Errorf("table name %s: unterminated quoted identifier", entry)
		}
		name = strings.ReplaceAll(entry[1:len(entry)-1], `""`, `"`)
		ident = name
	} else {
		if strings.ContainsAny(entry, "\" \t") {
			return "", "", fmt.Errorf("table name %q: quote the name to use spaces or quotes", entry)
		}
		name = entry
		ident = strings.ToLower(entry)
	}

	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", "", fmt.Errorf("table name %q cannot be used as a file name", name)
	}
	return name, ident, nil
}
