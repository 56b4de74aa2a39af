package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/internal/ui"
	"github.com/tynkerbase/tynkerbase/internal/workflows"
)

var (
	initProjectName string
	initIgnore      []string
)

func init() {
	bundleInitCmd.Flags().StringVarP(&initProjectName, "name", "n", "", "project name (defaults to the directory name)")
	bundleInitCmd.Flags().StringSliceVar(&initIgnore, "ignore", nil, "ignore rules for the project (defaults to .git/, node_modules/ and *.log)")
}

func resetInitCommandState() {
	initProjectName = ""
	initIgnore = nil
}

var bundleInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Creates a .tynker project in the directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		spinner, cleanup := startSpinner("Initializing project...")
		defer cleanup()

		opts := workflows.InitOptions{
			ProjectName: initProjectName,
			Ignore:      initIgnore,
			Logger:      Logger,
		}
		if len(args) == 1 {
			opts.Dir = args[0]
		}

		result, err := workflows.InitProject(context.Background(), opts)
		if err != nil {
			return reportFailure(spinner, "Failed to initialize project", err)
		}

		Logger.Infof("Init command completed for %s", result.ProjectPath)
		spinner.FinalMSG = ui.Done("Project %s initialized", ui.Highlight.Sprint(result.ProjectName)) +
			ui.Fields(
				[2]string{"UUID", result.ProjectUUID},
				[2]string{"Config", ui.Path.Sprint(result.ConfigPath)},
			) +
			ui.Hint("Run %s to create an archive", ui.Code.Sprint("tynker bundle pack"))
		return nil
	},
}
