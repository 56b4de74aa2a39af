package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/internal/ui"
	"github.com/tynkerbase/tynkerbase/internal/workflows"
)

var (
	logLimit      int
	logReverse    bool
	logUser       string
	logOperations string
	logArchive    string
	logSince      string
	logUntil      string
)

func init() {
	bundleLogCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "show at most n entries")
	bundleLogCmd.Flags().BoolVar(&logReverse, "reverse", false, "show the most recent entries first")
	bundleLogCmd.Flags().StringVar(&logUser, "user", "", "filter by user name")
	bundleLogCmd.Flags().StringVar(&logOperations, "op", "", "filter by operation (comma-separated: init,pack,unpack,keygen)")
	bundleLogCmd.Flags().StringVar(&logArchive, "archive", "", "filter by archive ID prefix")
	bundleLogCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after this date (YYYY-MM-DD)")
	bundleLogCmd.Flags().StringVar(&logUntil, "until", "", "show entries on or before this date (YYYY-MM-DD)")
}

func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logUser = ""
	logOperations = ""
	logArchive = ""
	logSince = ""
	logUntil = ""
}

var bundleLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Shows the project's audit log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := workflows.Log(context.Background(), workflows.LogOptions{
			Limit:      logLimit,
			Reverse:    logReverse,
			User:       logUser,
			Operations: logOperations,
			ArchiveID:  logArchive,
			Since:      logSince,
			Until:      logUntil,
		})
		if err != nil {
			fmt.Print(failureMessage("Failed to read audit log", err))
			return ErrReported
		}

		if len(result.Entries) == 0 {
			fmt.Print(ui.Hint("No matching entries (%d in the log)", result.TotalEntriesBeforeFilter))
			return nil
		}
		for _, e := range result.Entries {
			fmt.Printf("%s  %-8s %-16s %s\n",
				ui.Muted.Sprint(workflows.FormatDateTime(e.Timestamp)), e.Operation, e.User, workflows.FormatDetails(e))
		}
		return nil
	},
}
