package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/internal/archive"
	"github.com/tynkerbase/tynkerbase/internal/ui"
	"github.com/tynkerbase/tynkerbase/internal/utils"
	"github.com/tynkerbase/tynkerbase/internal/workflows"
)

var (
	packOutput        string
	packIgnore        []string
	packScheme        string
	packCompression   string
	packKeyDerivation string
	packKeyFile       string
	packPassphrase    bool
	packRecipient     string
	packDryRun        bool
)

func init() {
	bundlePackCmd.Flags().StringVarP(&packOutput, "output", "o", "", "archive path (defaults to .tynker/archives/ inside a project)")
	bundlePackCmd.Flags().StringSliceVarP(&packIgnore, "ignore", "i", nil, "additional ignore rules")
	bundlePackCmd.Flags().StringVarP(&packScheme, "scheme", "s", "", "symmetric, passphrase, asymmetric or hybrid")
	bundlePackCmd.Flags().StringVarP(&packCompression, "compression", "c", "", "zstd, lz4 or none (default zstd)")
	bundlePackCmd.Flags().StringVar(&packKeyDerivation, "kdf", "", "passphrase key derivation: hkdf-sha256 or legacy-hex-prefix")
	bundlePackCmd.Flags().StringVar(&packKeyFile, "key-file", "", "symmetric key file (32 raw bytes or 64 hex characters)")
	bundlePackCmd.Flags().BoolVarP(&packPassphrase, "passphrase", "p", false, "encrypt with a passphrase (prompted, or read from "+PassphraseEnv+")")
	bundlePackCmd.Flags().StringVarP(&packRecipient, "recipient", "r", "", "recipient public key (PEM)")
	bundlePackCmd.Flags().BoolVar(&packDryRun, "dry-run", false, "list the files that would be packed")
}

func resetPackCommandState() {
	packOutput = ""
	packIgnore = nil
	packScheme = ""
	packCompression = ""
	packKeyDerivation = ""
	packKeyFile = ""
	packPassphrase = false
	packRecipient = ""
	packDryRun = false
}

var bundlePackCmd = &cobra.Command{
	Use:   "pack [dir]",
	Short: "Bundles a directory into an encrypted archive",
	Long: `Bundles every file under the directory that survives the ignore rules,
compresses the bundle and encrypts it into a single archive.

Ignore rules come from the user config, the project config and --ignore.
The .tynker directory is always ignored.

Without --scheme, the scheme follows the key material given: --key-file
selects symmetric, --passphrase selects passphrase, and --recipient or an
existing default key pair selects hybrid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting pack command")

		opts := workflows.PackOptions{
			Output:        packOutput,
			Ignore:        packIgnore,
			Scheme:        packScheme,
			Compression:   packCompression,
			KeyDerivation: packKeyDerivation,
			RecipientPath: packRecipient,
			DryRun:        packDryRun,
			Logger:        Logger,
		}
		if len(args) == 1 {
			opts.Dir = args[0]
		}

		if packKeyFile != "" {
			key, err := workflows.LoadSymmetricKey(packKeyFile)
			if err != nil {
				fmt.Print(failureMessage("Failed to load key", err))
				return ErrReported
			}
			opts.Key = key
		}
		if (packPassphrase || packScheme == string(archive.SchemePassphrase)) && !packDryRun {
			passphrase, err := readPassphrase(true)
			if err != nil {
				fmt.Print(failureMessage("Failed to read passphrase", err))
				return ErrReported
			}
			opts.Passphrase = passphrase
		}

		spinner, cleanup := startSpinner("Packing files...")
		defer cleanup()

		result, err := workflows.Pack(context.Background(), opts)
		if err != nil {
			return reportFailure(spinner, "Failed to pack", err)
		}

		if result.DryRun {
			spinner.FinalMSG = ui.Done("%d files would be packed (%s, %s compression)",
				len(result.Files), utils.FormatBytes(result.PayloadSize), result.Compression) +
				strings.TrimPrefix(utils.FormatPaths(result.Files), "\n")
			return nil
		}

		Logger.Infof("Pack command completed: %s", result.ArchivePath)
		spinner.FinalMSG = ui.Done("Packed %d files into %s", len(result.Files), ui.Path.Sprint(result.ArchivePath)) +
			ui.Fields(
				[2]string{"Archive", result.ArchiveID},
				[2]string{"Scheme", string(result.Scheme)},
				[2]string{"Compression", result.Compression.String()},
				[2]string{"Size", fmt.Sprintf("%s -> %s", utils.FormatBytes(result.PayloadSize), utils.FormatBytes(result.ArchiveSize))},
			)
		return nil
	},
}
