package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/ui"
	"github.com/tynkerbase/tynkerbase/internal/utils"
)

// PassphraseEnv supplies the passphrase without a prompt.
const PassphraseEnv = "TYNKER_PASSPHRASE"

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// Final messages are built with the ui status helpers, which end in a newline.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := s.FinalMSG
		// Clear FinalMSG so s.Stop() doesn't print it.
		s.FinalMSG = ""

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// failureMessage renders err for the user with a hint where one helps.
func failureMessage(action string, err error) string {
	msg := ui.Failed("%s: %v", action, err)
	switch {
	case errors.Is(err, kerrors.ErrProjectNotInitialized):
		msg += ui.Hint("Run %s first", ui.Code.Sprint("tynker bundle init"))
	case errors.Is(err, kerrors.ErrProjectAlreadyInitialized):
		msg += ui.Hint("Edit %s to change the project settings", ui.Path.Sprint(utils.ProjectDirName+"/config.toml"))
	case errors.Is(err, kerrors.ErrMissingKeyMaterial):
		msg += ui.Hint("Pass %s, %s or %s, or run %s",
			ui.Flag.Sprint("--key-file"), ui.Flag.Sprint("--passphrase"), ui.Flag.Sprint("--recipient"), ui.Code.Sprint("tynker keys generate"))
	case errors.Is(err, kerrors.ErrKeyPairExists):
		msg += ui.Hint("Use %s to overwrite it", ui.Flag.Sprint("--force"))
	case errors.Is(err, kerrors.ErrFileExists):
		msg += ui.Hint("Use %s to overwrite, or choose another %s", ui.Flag.Sprint("--force"), ui.Flag.Sprint("--output"))
	case errors.Is(err, kerrors.ErrAuthenticationFailure):
		msg += ui.Hint("Check the key or passphrase; the archive may also have been modified")
	case errors.Is(err, kerrors.ErrNoFilesFound):
		msg += ui.Hint("Check the ignore rules in %s", ui.Path.Sprint(utils.ProjectDirName+"/config.toml"))
	}
	return msg
}

// reportFailure puts err on the spinner and returns ErrReported.
func reportFailure(s *spinner.Spinner, action string, err error) error {
	Logger.Debugf("%s: %v", action, err)
	s.FinalMSG = failureMessage(action, err)
	return ErrReported
}

// readPassphrase returns the passphrase from PassphraseEnv or a prompt.
// The prompt runs before any spinner starts.
func readPassphrase(confirm bool) (string, error) {
	if p := os.Getenv(PassphraseEnv); p != "" {
		Logger.Debugf("Using passphrase from %s", PassphraseEnv)
		return p, nil
	}
	passphrase, err := utils.ReadSecret("Passphrase: ")
	if err != nil {
		return "", err
	}
	if passphrase == "" {
		return "", fmt.Errorf("%w: empty passphrase", kerrors.ErrInvalidCredential)
	}
	if confirm && utils.IsTerminal() {
		again, err := utils.ReadSecret("Confirm passphrase: ")
		if err != nil {
			return "", err
		}
		if again != passphrase {
			return "", fmt.Errorf("%w: passphrases do not match", kerrors.ErrInvalidCredential)
		}
	}
	return passphrase, nil
}

// resetFlagState clears Changed on every flag so tests do not leak state.
func resetFlagState(cmds ...*cobra.Command) {
	for _, c := range cmds {
		visit := func(flag *pflag.Flag) {
			flag.Changed = false
		}
		c.Flags().VisitAll(visit)
		c.PersistentFlags().VisitAll(visit)
		resetFlagState(c.Commands()...)
	}
}
