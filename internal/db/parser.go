package db

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// BuildDSN renders a ConnectionConfig as a keyword/value connection string
// understood by pgconn.ParseConfig.
//
// With a service alias, host, port and database come from the service file
// and only the credentials and session settings are written. Without a host
// the driver connects through its local default (Unix socket or PGHOST).
func BuildDSN(config *benchload.ConnectionConfig) string {
	var kv [][2]string
	add := func(key, value string) {
		if value != "" {
			kv = append(kv, [2]string{key, value})
		}
	}

	if config.ServiceName != "" {
		add("service", config.ServiceName)
		add("servicefile", config.ServiceFile)
	} else {
		add("host", config.Host)
		if config.Port != 0 {
			add("port", strconv.Itoa(config.Port))
		}
		add("dbname", config.Database)
	}

	add("user", config.Username)
	add("password", config.Password)
	add("sslmode", config.SSLMode)
	add("application_name", config.AppName)
	if config.ConnectTimeout > 0 {
		add("connect_timeout", strconv.Itoa(int(config.ConnectTimeout.Seconds())))
	}

	extra := make([]string, 0, len(config.AdditionalParams))
	for key := range config.AdditionalParams {
		extra = append(extra, key)
	}
	sort.Strings(extra)
	for _, key := range extra {
		add(key, config.AdditionalParams[key])
	}

	parts := make([]string, len(kv))
	for i, p := range kv {
		parts[i] = p[0] + "=" + quoteDSNValue(p[1])
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue quotes values containing spaces, quotes or backslashes.
func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, " '\\\t\n") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// RedactDSN hides the password of a DSN built by BuildDSN for log output.
func RedactDSN(config *benchload.ConnectionConfig) string {
	redacted := *config
	if redacted.Password != "" {
		redacted.Password = "********"
	}
	return BuildDSN(&redacted)
}
