package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/internal/archive"
	"github.com/tynkerbase/tynkerbase/internal/ui"
	"github.com/tynkerbase/tynkerbase/internal/utils"
	"github.com/tynkerbase/tynkerbase/internal/workflows"
)

var (
	unpackOutput          string
	unpackKeyFile         string
	unpackPrivateKey      string
	unpackPrivateKeyStdin bool
	unpackForce           bool
	unpackDryRun          bool
)

func init() {
	bundleUnpackCmd.Flags().StringVarP(&unpackOutput, "output", "o", "", "directory to restore into (defaults to the working directory)")
	bundleUnpackCmd.Flags().StringVar(&unpackKeyFile, "key-file", "", "symmetric key file for symmetric archives")
	bundleUnpackCmd.Flags().StringVar(&unpackPrivateKey, "private-key", "", "private key (PEM) for asymmetric and hybrid archives")
	bundleUnpackCmd.Flags().BoolVar(&unpackPrivateKeyStdin, "private-key-stdin", false, "read the private key from stdin")
	bundleUnpackCmd.Flags().BoolVarP(&unpackForce, "force", "f", false, "overwrite existing files")
	bundleUnpackCmd.Flags().BoolVar(&unpackDryRun, "dry-run", false, "decrypt and list the files without writing them")
}

func resetUnpackCommandState() {
	unpackOutput = ""
	unpackKeyFile = ""
	unpackPrivateKey = ""
	unpackPrivateKeyStdin = false
	unpackForce = false
	unpackDryRun = false
}

var bundleUnpackCmd = &cobra.Command{
	Use:   "unpack <archive>",
	Short: "Decrypts an archive and restores its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting unpack command")
		archivePath := args[0]

		header, err := workflows.Inspect(context.Background(), archivePath)
		if err != nil {
			fmt.Print(failureMessage("Failed to read archive", err))
			return ErrReported
		}

		opts := workflows.UnpackOptions{
			ArchivePath:    archivePath,
			OutputDir:      unpackOutput,
			PrivateKeyPath: unpackPrivateKey,
			Force:          unpackForce,
			DryRun:         unpackDryRun,
			Logger:         Logger,
		}

		switch header.Scheme {
		case archive.SchemeSymmetric:
			if unpackKeyFile != "" {
				if opts.Key, err = workflows.LoadSymmetricKey(unpackKeyFile); err != nil {
					fmt.Print(failureMessage("Failed to load key", err))
					return ErrReported
				}
			}
		case archive.SchemePassphrase:
			if opts.Passphrase, err = readPassphrase(false); err != nil {
				fmt.Print(failureMessage("Failed to read passphrase", err))
				return ErrReported
			}
		case archive.SchemeAsymmetric, archive.SchemeHybrid:
			if unpackPrivateKeyStdin {
				Logger.Debugf("Reading private key from stdin")
				if opts.PrivateKeyData, err = io.ReadAll(os.Stdin); err != nil {
					fmt.Print(failureMessage("Failed to read private key from stdin", err))
					return ErrReported
				}
			}
		}

		spinner, cleanup := startSpinner("Unpacking archive...")
		defer cleanup()

		result, err := workflows.Unpack(context.Background(), opts)
		if err != nil {
			return reportFailure(spinner, "Failed to unpack", err)
		}

		if result.DryRun {
			spinner.FinalMSG = ui.Done("%d files would be restored to %s", len(result.Files), ui.Path.Sprint(result.OutputDir)) +
				strings.TrimPrefix(utils.FormatPaths(result.Files), "\n")
			return nil
		}

		Logger.Infof("Unpack command completed: %s", result.OutputDir)
		spinner.FinalMSG = ui.Done("Restored %d files to %s", len(result.Files), ui.Path.Sprint(result.OutputDir)) +
			ui.Fields(
				[2]string{"Archive", result.ArchiveID},
				[2]string{"Scheme", string(result.Scheme)},
				[2]string{"Size", utils.FormatBytes(result.PayloadSize)},
			)
		return nil
	},
}
