package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tynkerbase/tynkerbase/internal/utils"
)

// AlwaysIgnored is appended to every rule set so project metadata never
// enters a bundle.
const AlwaysIgnored = utils.ProjectDirName + "/"

// DefaultIgnoreRules seed a new project's config.
var DefaultIgnoreRules = []string{".git/", "node_modules/", "*.log"}

type UserConfig struct {
	User     User         `toml:"user"`
	Defaults UserDefaults `toml:"defaults"`
}

type User struct {
	Name string `toml:"name"`
	UUID string `toml:"user_uuid"`
}

// UserDefaults apply to every project unless the project or a flag overrides them.
type UserDefaults struct {
	Ignore        []string `toml:"ignore,omitempty"`
	Scheme        string   `toml:"scheme,omitempty"`
	Compression   string   `toml:"compression,omitempty"`
	KeyDerivation string   `toml:"key_derivation,omitempty"`
}

type ProjectConfig struct {
	Project Project `toml:"project"`
	Bundle  Bundle  `toml:"bundle"`
}

type Project struct {
	UUID string `toml:"project_uuid"`
	Name string `toml:"name"`
}

type Bundle struct {
	Ignore      []string `toml:"ignore"`
	Scheme      string   `toml:"scheme,omitempty"`
	Compression string   `toml:"compression,omitempty"`
	// Recipient is the public key file archives are sealed for by default.
	Recipient string `toml:"recipient,omitempty"`
}

func userConfigPath() string {
	return filepath.Join(UserTynkerSettings.UserConfigsPath, "config.toml")
}

// LoadUserConfig loads the user configuration. A missing file yields an
// empty config.
func LoadUserConfig() (*UserConfig, error) {
	config := &UserConfig{}

	if _, err := os.Stat(userConfigPath()); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(userConfigPath(), config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	return config, nil
}

// SaveUserConfig saves the user configuration.
func SaveUserConfig(config *UserConfig) error {
	if err := SaveTOML(userConfigPath(), config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}
	return nil
}

// GenerateUUID generates a random UUID string.
func GenerateUUID() string {
	return uuid.New().String()
}

// EnsureUserConfig loads the user config, assigning a UUID and name on first use.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, err
	}

	if config.User.UUID == "" || config.User.Name == "" {
		if config.User.UUID == "" {
			config.User.UUID = GenerateUUID()
		}
		if config.User.Name == "" {
			config.User.Name = UserTynkerSettings.Username
		}
		if err := SaveUserConfig(config); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// LoadProjectConfig loads the config of the project at projectPath.
func LoadProjectConfig(projectPath string) (*ProjectConfig, error) {
	configPath := NewProjectSettings(projectPath).ProjectConfigPath

	config := &ProjectConfig{}
	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}
	if _, err := uuid.Parse(config.Project.UUID); err != nil {
		return nil, fmt.Errorf("failed to load project config: invalid project_uuid %q: %w", config.Project.UUID, err)
	}
	return config, nil
}

// SaveProjectConfig saves config for the project at projectPath.
func SaveProjectConfig(projectPath string, config *ProjectConfig) error {
	if err := SaveTOML(NewProjectSettings(projectPath).ProjectConfigPath, config); err != nil {
		return fmt.Errorf("failed to save project config: %w", err)
	}
	return nil
}

// IgnoreRules merges rule lists in order, drops duplicates and appends
// AlwaysIgnored.
func IgnoreRules(lists ...[]string) []string {
	seen := make(map[string]bool)
	var rules []string
	for _, list := range append(lists, []string{AlwaysIgnored}) {
		for _, rule := range list {
			if seen[rule] {
				continue
			}
			seen[rule] = true
			rules = append(rules, rule)
		}
	}
	return rules
}

// FirstNonEmpty returns the first non-empty value, used to layer flag,
// project and user settings.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
