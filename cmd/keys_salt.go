package cmd

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/internal/digest"
)

var keysSaltCmd = &cobra.Command{
	Use:   "salt",
	Short: "Prints a fresh random salt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		salt, err := digest.GenerateSalt(rand.Reader)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to generate salt: %v", err)
		}
		fmt.Println(salt)
		return nil
	},
}
