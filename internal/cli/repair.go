package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/benchload/internal/logging"
	"github.com/vvka-141/benchload/internal/services"
	"github.com/vvka-141/benchload/internal/tui"
)

var repairCmd = &cobra.Command{
	Use:   "repair [project_path]",
	Short: "Check the integrity of tables left pending by an interrupted bulk load",
	Long: `Repair finds the tables of the schema whose triggers are disabled, whose
constraints are not validated or which are unlogged, and checks all of them
in a single script.

load --load does this on its own; use repair after a bulk load that was
interrupted once its tables were loaded.

Examples:
  benchload repair ./tpch -d tpch -s TPCH`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepair,
}

var repairFlags connectionFlags

func init() {
	rootCmd.AddCommand(repairCmd)
	addConnectionFlags(repairCmd, &repairFlags)
}

func runRepair(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectPath, err := resolveProjectPath(args)
	if err != nil {
		return err
	}
	cfg, _, err := resolveLoadConfig(cmd, &repairFlags, projectPath)
	if err != nil {
		return err
	}
	if err := promptForPassword(repairFlags.username, &cfg.Connection); err != nil {
		return err
	}
	cfg.Verbose = verbose
	if verbose {
		logConnectionVerbose(cfg)
	}

	logger := logging.NewConsoleLogger(verbose)
	repairer := services.NewLoadService(newConnectorFactory(cfg.ConnectRetries, logger), logger, tui.NewLogProgress(logger))

	ctx, cancel := signalContext("integrity check")
	defer cancel()

	repaired, err := repairer.Repair(ctx, cfg)
	if err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}

	if len(repaired) == 0 {
		fmt.Fprintf(os.Stderr, "No tables pending integrity in schema %s\n", cfg.Schema)
		return nil
	}
	for _, name := range repaired {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	fmt.Fprintf(os.Stderr, "✓ Checked %d table(s) in schema %s\n", len(repaired), cfg.Schema)
	return nil
}
