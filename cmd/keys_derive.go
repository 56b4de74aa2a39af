package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/internal/ui"
	"github.com/tynkerbase/tynkerbase/internal/workflows"
)

var deriveSalt string

func init() {
	keysDeriveCmd.Flags().StringVar(&deriveSalt, "salt", "", "salt to derive with (a fresh one is generated if empty)")
}

var keysDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derives a credential from a passphrase and salt",
	Long: `Derives the tagged credential for a passphrase and salt. The passphrase is
prompted for, or read from ` + PassphraseEnv + `.

The same passphrase and salt always derive the same credential.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := readPassphrase(false)
		if err != nil {
			fmt.Print(failureMessage("Failed to read passphrase", err))
			return ErrReported
		}

		result, err := workflows.Derive(context.Background(), workflows.DeriveOptions{
			Secret: secret,
			Salt:   deriveSalt,
			Logger: Logger,
		})
		if err != nil {
			fmt.Print(failureMessage("Failed to derive credential", err))
			return ErrReported
		}

		if result.GeneratedSalt {
			fmt.Fprint(os.Stderr, ui.Caution("Generated salt %s; keep it to derive this credential again", ui.Highlight.Sprint(result.Salt)))
		}
		fmt.Println(result.Credential)
		return nil
	},
}
