package configs

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/utils"
)

// withUserConfigDir points the user settings at a temp dir for one test.
func withUserConfigDir(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	old := UserTynkerSettings.UserConfigsPath
	UserTynkerSettings.UserConfigsPath = tempDir
	t.Cleanup(func() {
		UserTynkerSettings.UserConfigsPath = old
	})
	return tempDir
}

func TestGenerateUUID(t *testing.T) {
	id := GenerateUUID()
	if len(id) != 36 {
		t.Fatalf("Expected UUID length 36, got %d", len(id))
	}
	if id == GenerateUUID() {
		t.Fatal("Expected distinct UUIDs")
	}
}

func TestSaveAndLoadUserConfig(t *testing.T) {
	withUserConfigDir(t)

	config := &UserConfig{
		User: User{Name: "ada", UUID: "test-uuid-123"},
		Defaults: UserDefaults{
			Ignore:      []string{"*.tmp"},
			Scheme:      "hybrid",
			Compression: "lz4",
		},
	}

	if err := SaveUserConfig(config); err != nil {
		t.Fatalf("SaveUserConfig failed: %v", err)
	}

	loaded, err := LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, config) {
		t.Errorf("Expected %+v, got %+v", config, loaded)
	}
}

func TestLoadUserConfigNonExistent(t *testing.T) {
	withUserConfigDir(t)

	config, err := LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig failed: %v", err)
	}
	if config.User.UUID != "" {
		t.Errorf("Expected empty UUID, got %q", config.User.UUID)
	}
}

func TestEnsureUserConfig(t *testing.T) {
	withUserConfigDir(t)

	first, err := EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig failed: %v", err)
	}
	if first.User.UUID == "" {
		t.Fatal("Expected a generated UUID")
	}
	if first.User.Name == "" {
		t.Fatal("Expected a default name")
	}

	second, err := EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig failed: %v", err)
	}
	if second.User.UUID != first.User.UUID {
		t.Errorf("UUID changed between calls: %q -> %q", first.User.UUID, second.User.UUID)
	}
}

func TestLoadUserConfigRejectsUnknownKeys(t *testing.T) {
	dir := withUserConfigDir(t)
	content := "[user]\nname = \"ada\"\nemial = \"typo@example.com\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadUserConfig(); err == nil {
		t.Fatal("Expected error for unknown key")
	}
}

func TestSaveAndLoadProjectConfig(t *testing.T) {
	projectPath := t.TempDir()
	config := &ProjectConfig{
		Project: Project{UUID: GenerateUUID(), Name: "demo"},
		Bundle: Bundle{
			Ignore:    []string{"build/", "!build/keep.txt"},
			Scheme:    "passphrase",
			Recipient: "keys/demo.pub",
		},
	}

	if err := SaveProjectConfig(projectPath, config); err != nil {
		t.Fatalf("SaveProjectConfig failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectPath, utils.ProjectDirName, "config.toml")); err != nil {
		t.Fatalf("Expected config under %s: %v", utils.ProjectDirName, err)
	}

	loaded, err := LoadProjectConfig(projectPath)
	if err != nil {
		t.Fatalf("LoadProjectConfig failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, config) {
		t.Errorf("Expected %+v, got %+v", config, loaded)
	}
}

func TestLoadProjectConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadProjectConfig(t.TempDir()); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("invalid uuid", func(t *testing.T) {
		projectPath := t.TempDir()
		if err := SaveProjectConfig(projectPath, &ProjectConfig{Project: Project{UUID: "nope"}}); err != nil {
			t.Fatalf("SaveProjectConfig failed: %v", err)
		}
		if _, err := LoadProjectConfig(projectPath); err == nil {
			t.Error("Expected error for invalid project UUID")
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		projectPath := t.TempDir()
		configPath := filepath.Join(projectPath, utils.ProjectDirName, "config.toml")
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(configPath, []byte("[project\nname="), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadProjectConfig(projectPath); err == nil {
			t.Error("Expected error for malformed TOML")
		}
	})
}

func TestInitProjectSettings(t *testing.T) {
	projectPath := t.TempDir()
	if err := os.MkdirAll(filepath.Join(projectPath, utils.ProjectDirName), 0755); err != nil {
		t.Fatalf("failed to create project dir: %v", err)
	}
	nested := filepath.Join(projectPath, "src")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	old := ProjectTynkerSettings
	t.Cleanup(func() { ProjectTynkerSettings = old })

	if err := InitProjectSettings(nested); err != nil {
		t.Fatalf("InitProjectSettings failed: %v", err)
	}
	want, _ := filepath.Abs(projectPath)
	if ProjectTynkerSettings.ProjectPath != want {
		t.Errorf("Expected project path %s, got %s", want, ProjectTynkerSettings.ProjectPath)
	}
	if filepath.Base(ProjectTynkerSettings.ProjectAuditPath) != "audit.jsonl" {
		t.Errorf("Unexpected audit path %s", ProjectTynkerSettings.ProjectAuditPath)
	}
}

func TestInitProjectSettingsNotInitialized(t *testing.T) {
	err := InitProjectSettings(t.TempDir())
	// A .tynker directory above the temp dir would make this pass legitimately.
	if err != nil && !errors.Is(err, kerrors.ErrProjectNotInitialized) {
		t.Errorf("Expected ErrProjectNotInitialized, got %v", err)
	}
}

func TestKeyPaths(t *testing.T) {
	s := &UserSettings{UserKeysPath: filepath.Join("home", "keys")}
	if got := s.PrivateKeyPath("demo"); got != filepath.Join("home", "keys", "demo") {
		t.Errorf("unexpected private key path %s", got)
	}
	if got := s.PublicKeyPath("demo"); got != filepath.Join("home", "keys", "demo.pub") {
		t.Errorf("unexpected public key path %s", got)
	}
}

func TestIgnoreRules(t *testing.T) {
	got := IgnoreRules(
		[]string{"*.log", ".git/"},
		[]string{"build/", "*.log"},
		nil,
		[]string{"!build/keep.txt"},
	)
	want := []string{"*.log", ".git/", "build/", "!build/keep.txt", AlwaysIgnored}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "project", "user"); got != "project" {
		t.Errorf("Expected project, got %q", got)
	}
	if got := FirstNonEmpty("", ""); got != "" {
		t.Errorf("Expected empty, got %q", got)
	}
}
