package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/internal/ui"
	"github.com/tynkerbase/tynkerbase/internal/utils"
	"github.com/tynkerbase/tynkerbase/internal/workflows"
)

var bundleInspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Shows an archive's header without decrypting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := workflows.Inspect(context.Background(), args[0])
		if err != nil {
			fmt.Print(failureMessage("Failed to read archive", err))
			return ErrReported
		}

		fields := [][2]string{
			{"Archive", info.ArchiveID},
			{"Version", fmt.Sprint(info.Version)},
			{"Created", info.CreatedAt.Format("2006-01-02 15:04:05 UTC")},
			{"Scheme", string(info.Scheme)},
			{"Packet", info.State.String()},
			{"Compression", info.Compression.String()},
			{"Size", utils.FormatBytes(info.ArchiveSize)},
		}
		if info.Salt != "" {
			fields = append(fields, [2]string{"Salt", info.Salt}, [2]string{"KDF", string(info.KeyDerivation)})
		}
		if info.Fingerprint != "" {
			fields = append(fields, [2]string{"Recipient", info.Fingerprint})
		}

		fmt.Print(ui.Done("%s", ui.Path.Sprint(info.ArchivePath)) + ui.Fields(fields...))
		return nil
	},
}
