package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/benchload/internal/logging"
	"github.com/vvka-141/benchload/internal/services"
	"github.com/vvka-141/benchload/internal/tui"
	"github.com/vvka-141/benchload/pkg/benchload"
)

var loadCmd = &cobra.Command{
	Use:   "load [project_path]",
	Short: "Create the schema, apply the DDL script and load every table",
	Long: `Load provisions the benchmark database and loads its data.

The load command:
1. Checks that the table list, the DDL script, the data directory and one
   CSV file per table exist. Every missing CSV file is reported at once.
2. Connects to PostgreSQL. With --host a temporary connection alias is
   written to a private scratch directory and removed when the run ends.
3. Creates the schema unless it exists and makes it the active schema.
4. Executes the DDL script.
5. Loads each table's CSV file in table list order.
6. After --load, checks the integrity of every table left pending.

Import (the default) commits every 100,000 rows with triggers and
constraints active. --load replaces each table's rows in one transaction
with triggers disabled and foreign keys unchecked, then validates them all
at the end. It needs superuser.

Arguments:
  project_path    Project directory (default: the directory containing the
                  benchload executable)

Examples:
  # Import into a local database, schema named after the OS user
  benchload load ./tpch -d tpch

  # Bulk load on a remote server into schema TPCH, prompting for the password
  benchload load ./tpch -d tpch -h db.example.com -U loader -s TPCH --load

  # Pipe-delimited files with a header row
  benchload load ./tpch -d tpch --delimiter '|' --header`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

type loadFlagValues struct {
	connectionFlags

	load      bool
	delimiter string
	header    bool
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)

	addConnectionFlags(loadCmd, &loadFlags.connectionFlags)

	loadCmd.Flags().BoolVarP(&loadFlags.load, "load", "l", false,
		"Bulk load instead of import: replaces table contents with triggers disabled\n"+
			"and foreign keys unchecked until the final integrity check. Needs superuser")
	loadCmd.Flags().StringVar(&loadFlags.delimiter, "delimiter", "",
		"CSV field delimiter, one character (default: csv.delimiter in benchload.yaml, otherwise ',')")
	loadCmd.Flags().BoolVar(&loadFlags.header, "header", false,
		"The first line of every CSV file is a header and is not loaded")
}

// buildLoadConfig builds the LoadConfig of a load run from flags,
// environment and benchload.yaml.
func buildLoadConfig(cmd *cobra.Command, args []string, verbose bool) (benchload.LoadConfig, error) {
	projectPath, err := resolveProjectPath(args)
	if err != nil {
		return benchload.LoadConfig{}, err
	}

	cfg, projectCfg, err := resolveLoadConfig(cmd, &loadFlags.connectionFlags, projectPath)
	if err != nil {
		return benchload.LoadConfig{}, err
	}

	delimiter := loadFlags.delimiter
	header := loadFlags.header
	if projectCfg != nil {
		if delimiter == "" {
			delimiter = projectCfg.CSV.Delimiter
		}
		if !cmd.Flags().Changed("header") {
			header = projectCfg.CSV.Header
		}
	}
	if cfg.CSV.Delimiter, err = parseDelimiter(delimiter); err != nil {
		return benchload.LoadConfig{}, err
	}
	cfg.CSV.Header = header

	if loadFlags.load {
		cfg.Action = benchload.ActionLoad
	}
	cfg.Verbose = verbose

	if err := promptForPassword(loadFlags.username, &cfg.Connection); err != nil {
		return benchload.LoadConfig{}, err
	}
	return cfg, nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := buildLoadConfig(cmd, args, verbose)
	if err != nil {
		return err
	}
	if verbose {
		logConnectionVerbose(cfg)
	}

	logger := logging.NewConsoleLogger(verbose)
	progress := tui.NewProgress(logger, os.Stderr)
	defer progress.Stop()

	loader := services.NewLoadService(newConnectorFactory(cfg.ConnectRetries, logger), logger, progress)

	ctx, cancel := signalContext(cfg.Action.String())
	defer cancel()

	if err := loader.Load(ctx, cfg); err != nil {
		return fmt.Errorf("%s failed: %w", cfg.Action, err)
	}
	return nil
}
