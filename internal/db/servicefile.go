package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vvka-141/benchload/internal/scratch"
	"github.com/vvka-141/benchload/pkg/benchload"
)

// ServiceFileName is the name of the generated service file inside the
// scratch directory.
const ServiceFileName = "pg_service.conf"

// RenderServiceFile returns a service file defining alias for host, port and
// database. Values cannot contain line breaks.
func RenderServiceFile(alias, host string, port int, database string) ([]byte, error) {
	if port == 0 {
		port = benchload.DefaultPort
	}
	for name, value := range map[string]string{"alias": alias, "host": host, "database": database} {
		if value == "" {
			return nil, fmt.Errorf("service file %s is empty: %w", name, benchload.ErrInvalidConfig)
		}
		if strings.ContainsAny(value, "\r\n[]") {
			return nil, fmt.Errorf("service file %s %q contains invalid characters: %w", name, value, benchload.ErrInvalidConfig)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", alias)
	fmt.Fprintf(&b, "host=%s\n", host)
	fmt.Fprintf(&b, "port=%s\n", strconv.Itoa(port))
	fmt.Fprintf(&b, "dbname=%s\n", database)
	return []byte(b.String()), nil
}

// WriteServiceAlias writes a service file into dir aliasing
// benchload.ServiceAlias to the remote server of config, and points config
// at it.
func WriteServiceAlias(dir *scratch.Dir, config *benchload.ConnectionConfig) error {
	content, err := RenderServiceFile(benchload.ServiceAlias, config.Host, config.Port, config.Database)
	if err != nil {
		return err
	}

	path, err := dir.WriteFile(ServiceFileName, content)
	if err != nil {
		return err
	}

	config.ServiceName = benchload.ServiceAlias
	config.ServiceFile = path
	return nil
}
