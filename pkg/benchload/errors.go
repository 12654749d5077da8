package benchload

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure classes of a load run.
// Callers distinguish them with errors.Is().
var (
	// ErrUsage indicates a missing or malformed command line argument.
	ErrUsage = errors.New("usage error")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingInput indicates the table list, data directory, a CSV file
	// or the DDL script is missing.
	ErrMissingInput = errors.New("missing input files")

	// ErrConnectionFailed indicates the database connection could not be opened.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSchemaFailed indicates the target schema could not be created or selected.
	ErrSchemaFailed = errors.New("schema setup failed")

	// ErrDDLFailed indicates the DDL script failed.
	ErrDDLFailed = errors.New("DDL script failed")

	// ErrLoadFailed indicates a table could not be imported or loaded.
	ErrLoadFailed = errors.New("table load failed")

	// ErrIntegrityCheckFailed indicates pending-integrity tables could not be
	// detected or repaired after a bulk load.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// usagePatterns are the messages cobra and pflag produce for command line misuse.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts at most",
	"accepts 1 arg(s)",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the process exit code for an error returned by a command.
// nil maps to ExitSuccess, usage errors to ExitUsageError, everything else to
// ExitGeneralError.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrUsage) {
		return ExitUsageError
	}

	errStr := err.Error()
	for _, pattern := range usagePatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
