package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/benchload/internal/config"
	"github.com/vvka-141/benchload/internal/db"
	"github.com/vvka-141/benchload/pkg/benchload"
)

// connectionFlags holds the connection-related flag values shared by the
// commands that talk to the database.
type connectionFlags struct {
	host     string
	port     int
	username string
	password string
	database string
	schema   string
	sslMode  string

	aws            bool
	awsRegion      string
	azure          bool
	azureTenantID  string
	azureClientID  string
	google         bool
	googleInstance string

	timeout        time.Duration
	connectRetries int
}

func addConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	flags := cmd.Flags()

	// Precedence: flag > environment variable > benchload.yaml
	flags.StringVarP(&f.database, "database", "d", "",
		"Target database name (required; or $PGDATABASE, or connection.database in benchload.yaml)")
	flags.StringVarP(&f.host, "host", "h", "",
		"Remote server host. When given, a temporary connection alias is used\n"+
			"(default: $PGHOST, otherwise a local connection)")
	flags.IntVarP(&f.port, "port", "p", 0,
		"Server port (default: $PGPORT, otherwise 5432)")
	flags.StringVarP(&f.schema, "schema", "s", "",
		"Target schema (default: schema in benchload.yaml, otherwise the OS user name in upper case)")
	flags.StringVarP(&f.username, "username", "U", "",
		"User name (default: $PGUSER)\n"+
			"Without --password or $PGPASSWORD the password is prompted for")
	flags.StringVar(&f.password, "password", "",
		"Password. Prefer the prompt or $PGPASSWORD: flags are visible in the process list")
	flags.StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full (default: $PGSSLMODE)")

	flags.BoolVar(&f.aws, "aws", false, "Use AWS RDS IAM authentication")
	flags.StringVar(&f.awsRegion, "aws-region", "", "AWS region (overrides $AWS_REGION)")
	flags.BoolVar(&f.azure, "azure", false,
		"Use Azure Entra ID authentication\n"+
			"Uses DefaultAzureCredential chain (Managed Identity, Azure CLI, etc.)")
	flags.StringVar(&f.azureTenantID, "azure-tenant-id", "", "Azure AD tenant ID (overrides $AZURE_TENANT_ID)")
	flags.StringVar(&f.azureClientID, "azure-client-id", "", "Azure AD client ID (overrides $AZURE_CLIENT_ID)")
	flags.BoolVar(&f.google, "google", false, "Use Google Cloud SQL IAM authentication")
	flags.StringVar(&f.googleInstance, "google-instance", "", "Cloud SQL instance connection name (project:region:instance)")

	flags.DurationVar(&f.timeout, "timeout", 0,
		"Abort the whole run after this duration (default: timeout in benchload.yaml, otherwise none)\n"+
			"Examples: 30m, 2h")
	flags.IntVar(&f.connectRetries, "connect-retries", 0,
		"Retry transient connection failures this many times (default 0: fail fast)")
}

// loadProjectConfig loads .env from the working directory and benchload.yaml
// from the project. Returns nil config if benchload.yaml does not exist.
func loadProjectConfig(projectPath string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(projectPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// resolveProjectPath returns the project path argument, or the directory
// containing the running executable.
func resolveProjectPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot determine executable location, pass the project path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// resolveLoadConfig builds the LoadConfig shared by the load and repair
// commands. A missing database name prints the usage string and returns
// ErrUsage before anything else happens.
// The loaded benchload.yaml, possibly nil, is returned alongside.
func resolveLoadConfig(cmd *cobra.Command, f *connectionFlags, projectPath string) (benchload.LoadConfig, *config.ProjectConfig, error) {
	projectCfg, err := loadProjectConfig(projectPath)
	if err != nil {
		return benchload.LoadConfig{}, nil, err
	}

	conn, err := db.ResolveConnection(
		&db.ConnFlags{
			Host:     f.host,
			Port:     f.port,
			Username: f.username,
			Password: f.password,
			Database: f.database,
			SSLMode:  f.sslMode,
		},
		&db.CloudFlags{
			AWS:            f.aws,
			AWSRegion:      f.awsRegion,
			Azure:          f.azure,
			AzureTenantID:  f.azureTenantID,
			AzureClientID:  f.azureClientID,
			Google:         f.google,
			GoogleInstance: f.googleInstance,
		},
		db.LoadFromEnvironment(),
		projectCfg,
	)
	if err != nil {
		return benchload.LoadConfig{}, nil, err
	}

	if conn.Database == "" {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return benchload.LoadConfig{}, nil, fmt.Errorf("database name is required (--database): %w", benchload.ErrUsage)
	}

	timeout := f.timeout
	if projectCfg != nil && !cmd.Flags().Changed("timeout") {
		if timeout, err = projectCfg.TimeoutDuration(); err != nil {
			return benchload.LoadConfig{}, nil, err
		}
	}

	cfg := benchload.LoadConfig{
		Layout:         benchload.Layout{Root: projectPath},
		Connection:     *conn,
		Schema:         f.schema,
		Timeout:        timeout,
		ConnectRetries: f.connectRetries,
	}
	if projectCfg != nil {
		cfg.Layout.TableList = projectCfg.Layout.TableList
		cfg.Layout.DataDir = projectCfg.Layout.DataDir
		cfg.Layout.DDLScript = projectCfg.Layout.DDL
		if cfg.Schema == "" {
			cfg.Schema = projectCfg.Schema
		}
	}
	if cfg.Schema == "" {
		if cfg.Schema, err = defaultSchema(); err != nil {
			return benchload.LoadConfig{}, nil, err
		}
	}
	return cfg, projectCfg, nil
}

// defaultSchema returns the current OS user name in upper case.
func defaultSchema() (string, error) {
	name := ""
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	if name == "" {
		name = firstNonEmptyEnv("USER", "USERNAME")
	}
	// DOMAIN\user on Windows
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "", fmt.Errorf("cannot determine the OS user name, pass --schema: %w", benchload.ErrUsage)
	}
	return strings.ToUpper(name), nil
}

func firstNonEmptyEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// parseDelimiter validates a CSV delimiter given on the command line or in
// benchload.yaml. An empty value means the default.
func parseDelimiter(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	if s == `\t` || s == "tab" {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter %q must be a single character: %w", s, benchload.ErrUsage)
	}
	if r >= utf8.RuneSelf {
		return 0, fmt.Errorf("delimiter %q must be a single-byte character: %w", s, benchload.ErrUsage)
	}
	switch r {
	case '"', '\r', '\n':
		return 0, fmt.Errorf("delimiter %q cannot be a quote or newline: %w", s, benchload.ErrUsage)
	}
	return r, nil
}

// newConnectorFactory returns the connector factory for a run.
func newConnectorFactory(retries int, logger benchload.Logger) func(*benchload.ConnectionConfig) (benchload.Connector, error) {
	return func(c *benchload.ConnectionConfig) (benchload.Connector, error) {
		return db.NewConnector(c, db.WithRetries(retries), db.WithLogger(logger))
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(what string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling %s...\n", what)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(cfg benchload.LoadConfig) {
	conn := cfg.Connection
	fmt.Fprintf(os.Stderr, "[VERBOSE] Connection resolved:\n")
	if conn.Host != "" {
		fmt.Fprintf(os.Stderr, "  Host: %s\n", conn.Host)
	} else {
		fmt.Fprintf(os.Stderr, "  Host: (local)\n")
	}
	if conn.Port != 0 {
		fmt.Fprintf(os.Stderr, "  Port: %d\n", conn.Port)
	}
	fmt.Fprintf(os.Stderr, "  User: %s\n", conn.Username)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", conn.Database)
	fmt.Fprintf(os.Stderr, "  Schema: %s\n", cfg.Schema)
	fmt.Fprintf(os.Stderr, "  SSL Mode: %s\n", conn.SSLMode)
	fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", conn.AuthMethod)
}
