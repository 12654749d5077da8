package benchload

import (
	"errors"
	"fmt"
	"time"
)

// Action selects how CSV files are moved into their tables.
type Action int

const (
	// ActionImport inserts rows through COPY in batches of ImportCommitCount
	// records, committing after each batch. Needs no special privilege.
	ActionImport Action = iota

	// ActionLoad replaces each table's contents in a single COPY with
	// triggers disabled and foreign keys unvalidated. Needs superuser and
	// leaves tables pending integrity until they are checked.
	ActionLoad
)

// String returns the lower-case action name.
func (a Action) String() string {
	switch a {
	case ActionImport:
		return "import"
	case ActionLoad:
		return "load"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ConnectionConfig holds the transient connection descriptor of one invocation.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	AuthMethod AuthMethod

	AppName        string
	ConnectTimeout time.Duration

	// ServiceName and ServiceFile point the driver at a service-file alias.
	// When set, host, port and database come from the service file.
	ServiceName string
	ServiceFile string

	AdditionalParams map[string]string

	AWSRegion      string
	GoogleInstance string

	// If all three Azure fields are set, Service Principal authentication is
	// used; otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// IsRemote reports whether an explicit host was given. Remote connections
// go through a temporary service-file alias.
func (c *ConnectionConfig) IsRemote() bool {
	return c.Host != ""
}

// CSVOptions describes the delimited format of the data files.
type CSVOptions struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune

	// Header indicates the first record of each file names the columns and
	// is not loaded.
	Header bool
}

// Comma returns the effective field delimiter.
func (o CSVOptions) Comma() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// Layout locates the input files of a project.
type Layout struct {
	// Root is the project directory; relative paths below are resolved against it.
	Root      string
	TableList string
	DataDir   string
	DDLScript string
}

// LoadConfig contains everything one load run needs.
type LoadConfig struct {
	Layout     Layout
	Connection ConnectionConfig

	// Schema receives the tables. It is used verbatim as a quoted identifier.
	Schema string

	Action Action
	CSV    CSVOptions

	// Timeout bounds the whole run. Zero means no timeout.
	Timeout time.Duration

	// ConnectRetries is the number of retries for transient connection
	// failures. Zero fails on the first error.
	ConnectRetries int

	Verbose bool
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.Connection.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrUsage))
	}

	if c.Schema == "" {
		errs = append(errs, fmt.Errorf("schema is required: %w", ErrInvalidConfig))
	}

	if c.Layout.Root == "" {
		errs = append(errs, fmt.Errorf("project path is required: %w", ErrInvalidConfig))
	}

	if c.Action != ActionImport && c.Action != ActionLoad {
		errs = append(errs, fmt.Errorf("unknown action %v: %w", c.Action, ErrInvalidConfig))
	}

	if !c.Connection.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.Connection.AuthMethod, ErrUnsupportedAuthMethod))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if c.ConnectRetries < 0 {
		errs = append(errs, fmt.Errorf("connect retries cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// PendingTable describes a table left in a pending-integrity state.
type PendingTable struct {
	Name string

	// UncheckedConstraints lists constraints that are NOT VALID.
	UncheckedConstraints []string

	// TriggersDisabled is true when at least one trigger, including the
	// internal foreign key triggers, is disabled.
	TriggersDisabled bool

	// Unlogged is true when the table is not crash-safe.
	Unlogged bool
}

// IsPending reports whether the table needs an integrity check.
func (p PendingTable) IsPending() bool {
	return len(p.UncheckedConstraints) > 0 || p.TriggersDisabled || p.Unlogged
}
