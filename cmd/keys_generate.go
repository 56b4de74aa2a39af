package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/internal/ui"
	"github.com/tynkerbase/tynkerbase/internal/workflows"
)

var (
	keysName      string
	keysSymmetric bool
	keysForce     bool
	keysDir       string
)

func init() {
	keysGenerateCmd.Flags().StringVarP(&keysName, "name", "n", "", "key name (default \""+workflows.DefaultKeyName+"\")")
	keysGenerateCmd.Flags().BoolVar(&keysSymmetric, "symmetric", false, "generate a 32-byte symmetric key instead of an RSA key pair")
	keysGenerateCmd.Flags().BoolVarP(&keysForce, "force", "f", false, "overwrite existing keys")
	keysGenerateCmd.Flags().StringVar(&keysDir, "dir", "", "directory to write keys to (defaults to the user keys directory)")
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates an RSA key pair or a symmetric key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys generate command")
		spinner, cleanup := startSpinner("Generating keys...")
		defer cleanup()

		result, err := workflows.GenerateKeys(context.Background(), workflows.GenerateKeysOptions{
			Name:      keysName,
			KeysDir:   keysDir,
			Symmetric: keysSymmetric,
			Force:     keysForce,
			Logger:    Logger,
		})
		if err != nil {
			return reportFailure(spinner, "Failed to generate keys", err)
		}

		if keysSymmetric {
			spinner.FinalMSG = ui.Done("Symmetric key %s created", ui.Highlight.Sprint(result.Name)) +
				ui.Fields([2]string{"Key", ui.Path.Sprint(result.PrivateKeyPath)}) +
				ui.Hint("Pack with %s", ui.Code.Sprint("tynker bundle pack --key-file "+result.PrivateKeyPath))
			return nil
		}

		spinner.FinalMSG = ui.Done("Key pair %s created", ui.Highlight.Sprint(result.Name)) +
			ui.Fields(
				[2]string{"Private key", ui.Path.Sprint(result.PrivateKeyPath)},
				[2]string{"Public key", ui.Path.Sprint(result.PublicKeyPath)},
				[2]string{"Fingerprint", result.Fingerprint},
			) +
			ui.Hint("Share the public key; archives packed for it open only with the private key")
		return nil
	},
}
