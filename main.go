package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/cmd"
	"github.com/tynkerbase/tynkerbase/internal/utils"
)

var rootCmd = &cobra.Command{
	Use:   "tynker",
	Short: "tynker - pack directories into compressed, encrypted archives.",
	Long: `tynker bundles the files of a directory into a single archive, filtered by
gitignore-style rules, then compresses and encrypts it with a key, a
passphrase or a recipient's public key.

Usage:
  tynker <command> [flags]

Available Commands:
  bundle     Initialize projects, pack and unpack archives
  keys       Generate key pairs and derive passphrase credentials

Run 'tynker help <command>' for more details on a specific command.
`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(c *cobra.Command, args []string) {
		if utils.IsTerminal() {
			figure.NewColorFigure("tynker", "alligator2", "green", true).Print()
			fmt.Println()
		}
		fmt.Println("Welcome to tynker! Run 'tynker --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.BundleCmd)
	rootCmd.AddCommand(cmd.KeysCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cmd.ErrReported) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
