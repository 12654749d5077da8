package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/benchload/internal/layout"
	"github.com/vvka-141/benchload/pkg/benchload"
)

var checkCmd = &cobra.Command{
	Use:   "check [project_path]",
	Short: "Verify the project files without connecting to a database",
	Long: `Check runs the precondition checks of load: the table list, the DDL
script, the data directory and one CSV file per table must exist. Every
missing CSV file is reported at once.

On success the resolved layout is printed, one table per line with its CSV
file, in load order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	projectPath, err := resolveProjectPath(args)
	if err != nil {
		return err
	}
	projectCfg, err := loadProjectConfig(projectPath)
	if err != nil {
		return err
	}

	l := benchload.Layout{Root: projectPath}
	if projectCfg != nil {
		l.TableList = projectCfg.Layout.TableList
		l.DataDir = projectCfg.Layout.DataDir
		l.DDLScript = projectCfg.Layout.DDL
	}

	plan, err := layout.Check(l)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "table list: %s\n", plan.Layout.TableList)
	fmt.Fprintf(out, "ddl:        %s\n", plan.Layout.DDLScript)
	fmt.Fprintf(out, "data:       %s\n", plan.Layout.DataDir)
	for i, t := range plan.Tables {
		fmt.Fprintf(out, "%3d  %-30s %s\n", i+1, t.Ident, t.CSVPath)
	}
	return nil
}
