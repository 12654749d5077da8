package benchload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: Operational error (missing files, connection, DDL, load, integrity)
//   - 2: CLI usage error (missing required argument, invalid flags)
//   - 3: Internal panic
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitPanic        = 3
)

const (
	// ImportCommitCount is the number of records committed per transaction
	// when importing a CSV file.
	ImportCommitCount = 100000

	// ServiceAlias is the service name written to the temporary service file
	// when a remote host is given.
	ServiceAlias = "benchload"

	// DefaultPort is the PostgreSQL port used for the service alias when no
	// port was given.
	DefaultPort = 5432

	// DefaultAppName is reported to the server as application_name.
	DefaultAppName = "benchload"

	// DefaultRetryInitialDelay is the initial delay before the first connection retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the maximum delay between connection retries.
	DefaultRetryMaxDelay = 30 * time.Second

	// MaxErrorPreviewLength caps the SQL excerpt shown in DDL error messages.
	MaxErrorPreviewLength = 200
)

// Default project layout, relative to the project path.
const (
	DefaultTableListFile = "tables.txt"
	DefaultDataDir       = "data"
	DefaultDDLFile       = "ddl.sql"
	CSVExtension         = ".csv"
)
