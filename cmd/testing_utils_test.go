package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tynkerbase/tynkerbase/internal/configs"
	logger "github.com/tynkerbase/tynkerbase/internal/logging"
)

// setupTestEnvironment points the user settings at temporary directories and
// changes into workDir until the test ends.
func setupTestEnvironment(t *testing.T, workDir string) string {
	t.Helper()
	userDir := t.TempDir()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	originalUser := configs.UserTynkerSettings
	originalProject := configs.ProjectTynkerSettings

	if err := os.Chdir(workDir); err != nil {
		t.Fatalf("Failed to change to %s: %v", workDir, err)
	}
	configs.UserTynkerSettings = &configs.UserSettings{
		UserKeysPath:    filepath.Join(userDir, "keys"),
		UserConfigsPath: filepath.Join(userDir, "config"),
		Username:        "testuser",
	}

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
		configs.UserTynkerSettings = originalUser
		configs.ProjectTynkerSettings = originalProject
		ResetGlobalState()
	})
	return userDir
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	reader, writer, err := os.Pipe()
	if err != nil {
		return "", err
	}
	os.Stdout = writer
	os.Stderr = writer

	outputChan := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, reader)
		outputChan <- buf.String()
	}()

	runErr := fn()

	writer.Close()
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-outputChan, runErr
}

// runCLI executes args against a fresh root command.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ResetGlobalState()
	Logger = logger.Logger{}

	rootCmd := &cobra.Command{
		Use:           "tynker",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.AddCommand(BundleCmd)
	rootCmd.AddCommand(KeysCmd)
	rootCmd.SetArgs(args)

	return captureOutput(rootCmd.Execute)
}
