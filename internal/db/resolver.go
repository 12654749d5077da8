package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/benchload/internal/config"
	"github.com/vvka-141/benchload/pkg/benchload"
)

// ConnFlags holds connection values given on the command line.
type ConnFlags struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string
}

// CloudFlags selects a cloud authentication method.
// Client secrets are never flags; they come from AZURE_CLIENT_SECRET.
type CloudFlags struct {
	AWS       bool
	AWSRegion string

	Azure         bool
	AzureTenantID string
	AzureClientID string

	Google         bool
	GoogleInstance string
}

// EnvVars represents PostgreSQL standard environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnection merges flags, environment and benchload.yaml.
// Each parameter takes the first non-empty value of: flag, environment
// variable, project config. Nothing is defaulted here: an empty host means a
// local connection and an empty port means the driver default.
func ResolveConnection(
	flags *ConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	projectConfig *config.ProjectConfig,
) (*benchload.ConnectionConfig, error) {
	if flags == nil {
		flags = &ConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	cfg := &benchload.ConnectionConfig{
		Host:     firstNonEmpty(flags.Host, env.PGHOST, pc.Host),
		Username: firstNonEmpty(flags.Username, env.PGUSER, pc.Username),
		Password: firstNonEmpty(flags.Password, env.PGPASSWORD),
		Database: firstNonEmpty(flags.Database, env.PGDATABASE, pc.Database),
		SSLMode:  firstNonEmpty(flags.SSLMode, env.PGSSLMODE, pc.SSLMode),
	}

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPORT, benchload.ErrInvalidConfig)
		}
		cfg.Port = port
	default:
		cfg.Port = pc.Port
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port %d out of range: %w", cfg.Port, benchload.ErrInvalidConfig)
	}

	method, err := resolveAuthMethod(cloud, pc.AuthMethod)
	if err != nil {
		return nil, err
	}
	cfg.AuthMethod = method

	switch method {
	case benchload.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(cloud.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case benchload.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(cloud.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(cloud.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case benchload.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(cloud.GoogleInstance, pc.GoogleInstance)
	}

	return cfg, nil
}

// resolveAuthMethod picks the auth method from flags, falling back to the
// auth_method key of benchload.yaml. At most one cloud flag may be set.
func resolveAuthMethod(cloud *CloudFlags, configured string) (benchload.AuthMethod, error) {
	var selected []benchload.AuthMethod
	if cloud.AWS {
		selected = append(selected, benchload.AuthMethodAWSIAM)
	}
	if cloud.Azure {
		selected = append(selected, benchload.AuthMethodAzureEntraID)
	}
	if cloud.Google {
		selected = append(selected, benchload.AuthMethodGoogleIAM)
	}

	switch len(selected) {
	case 0:
	case 1:
		return selected[0], nil
	default:
		return 0, fmt.Errorf("--aws, --azure and --google are mutually exclusive: %w", benchload.ErrUsage)
	}

	switch strings.ToLower(strings.TrimSpace(configured)) {
	case "", "standard", "password":
		return benchload.AuthMethodStandard, nil
	case "aws", "aws_iam":
		return benchload.AuthMethodAWSIAM, nil
	case "azure", "entra", "azure_entra_id":
		return benchload.AuthMethodAzureEntraID, nil
	case "google", "gcp", "google_iam":
		return benchload.AuthMethodGoogleIAM, nil
	default:
		return 0, fmt.Errorf("auth_method %q in %s: %w", configured, config.ConfigFileName, benchload.ErrUnsupportedAuthMethod)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
