package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "benchload",
	Short: "Provision and load a text-to-SQL benchmark database",
	Long: `benchload creates the schema of a text-to-SQL benchmark in PostgreSQL,
applies its DDL script and loads one CSV file per table.

A project directory holds:
  tables.txt    table names in load order, one per line
  ddl.sql       the DDL script, executed as-is
  data/         <table>.csv for every listed table
  benchload.yaml (optional) connection defaults and layout overrides

Exit Codes:
  0  - Success
  1  - Operational error (missing files, connection, DDL, load or integrity check failed)
  2  - CLI usage error (missing database name, invalid arguments or flags)
  3  - Panic or unexpected system error`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is --host, as in psql
	rootCmd.PersistentFlags().Bool("help", false, "Help for benchload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
