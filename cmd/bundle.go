package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	logger "github.com/tynkerbase/tynkerbase/internal/logging"
)

// ErrReported is returned by commands that have already printed their
// failure. main exits non-zero without printing it again.
var ErrReported = errors.New("error already reported")

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	BundleCmd = &cobra.Command{
		Use:   "bundle",
		Short: "Pack directories into encrypted archives and unpack them",
		Long: `Bundles the files of a directory, filtered by ignore rules, into a single
compressed and encrypted archive, and restores archives into directories.`,
		PersistentPreRun: setupLogger,
	}
)

func setupLogger(cmd *cobra.Command, args []string) {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
}

func init() {
	BundleCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	BundleCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	BundleCmd.AddCommand(bundleInitCmd)
	BundleCmd.AddCommand(bundlePackCmd)
	BundleCmd.AddCommand(bundleUnpackCmd)
	BundleCmd.AddCommand(bundleInspectCmd)
	BundleCmd.AddCommand(bundleLogCmd)
}

// Helper functions for testing

// GetBundleCmd returns the BundleCmd for testing.
func GetBundleCmd() *cobra.Command {
	return BundleCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetPackCommandState()
	resetUnpackCommandState()
	resetInitCommandState()
	resetLogCommandState()
	resetKeysCommandState()
	resetFlagState(BundleCmd, KeysCmd)
}
