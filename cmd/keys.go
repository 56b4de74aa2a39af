package cmd

import (
	"github.com/spf13/cobra"
)

var KeysCmd = &cobra.Command{
	Use:              "keys",
	Short:            "Manage key pairs, symmetric keys and passphrase credentials",
	PersistentPreRun: setupLogger,
}

func init() {
	KeysCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	KeysCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	KeysCmd.AddCommand(keysGenerateCmd)
	KeysCmd.AddCommand(keysDeriveCmd)
	KeysCmd.AddCommand(keysSaltCmd)
}

// GetKeysCmd returns the KeysCmd for testing.
func GetKeysCmd() *cobra.Command {
	return KeysCmd
}

func resetKeysCommandState() {
	keysName = ""
	keysSymmetric = false
	keysForce = false
	keysDir = ""
	deriveSalt = ""
}
