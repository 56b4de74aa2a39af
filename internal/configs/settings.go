package configs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/utils"
)

const appDirName = "tynkerbase"

type UserSettings struct {
	UserKeysPath    string
	UserConfigsPath string
	Username        string
}

type ProjectSettings struct {
	ProjectName       string
	ProjectPath       string
	ProjectConfigPath string
	ProjectAuditPath  string
}

var (
	UserTynkerSettings    *UserSettings
	ProjectTynkerSettings *ProjectSettings
)

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	// os.UserConfigDir honors XDG_CONFIG_HOME.
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(homeDir, ".config")
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	username, err := utils.GetUsername()
	if err != nil {
		username = "unknown"
	}

	// Independent of the current project, so it is safe to set here.
	UserTynkerSettings = &UserSettings{
		UserKeysPath:    filepath.Join(dataDir, appDirName, "keys"),
		UserConfigsPath: filepath.Join(configDir, appDirName),
		Username:        username,
	}
	ProjectTynkerSettings = &ProjectSettings{}
}

// NewProjectSettings derives the settings for the project rooted at projectPath.
func NewProjectSettings(projectPath string) *ProjectSettings {
	projectDir := filepath.Join(projectPath, utils.ProjectDirName)
	return &ProjectSettings{
		ProjectName:       utils.GetProjectName(projectPath),
		ProjectPath:       projectPath,
		ProjectConfigPath: filepath.Join(projectDir, "config.toml"),
		ProjectAuditPath:  filepath.Join(projectDir, "audit.jsonl"),
	}
}

// InitProjectSettings locates the project containing start and sets
// ProjectTynkerSettings.
func InitProjectSettings(start string) error {
	projectPath, err := utils.FindProjectRoot(start)
	if err != nil {
		return fmt.Errorf("error getting project root: %w", err)
	}
	if projectPath == "" {
		return fmt.Errorf("%w: no %s directory in %s or its parents", kerrors.ErrProjectNotInitialized, utils.ProjectDirName, start)
	}

	ProjectTynkerSettings = NewProjectSettings(projectPath)
	return nil
}

// PrivateKeyPath is where the key pair named name keeps its private key.
func (s *UserSettings) PrivateKeyPath(name string) string {
	return filepath.Join(s.UserKeysPath, name)
}

// PublicKeyPath is where the key pair named name keeps its public key.
func (s *UserSettings) PublicKeyPath(name string) string {
	return s.PrivateKeyPath(name) + ".pub"
}
