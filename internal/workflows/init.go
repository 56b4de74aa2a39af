package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tynkerbase/tynkerbase/internal/audit"
	"github.com/tynkerbase/tynkerbase/internal/configs"
	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	logger "github.com/tynkerbase/tynkerbase/internal/logging"
	"github.com/tynkerbase/tynkerbase/internal/pathfilter"
	"github.com/tynkerbase/tynkerbase/internal/utils"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Dir is the directory to initialize. If empty, uses the working directory.
	Dir string

	// ProjectName is the name for the project. If empty, uses the directory name.
	ProjectName string

	// Ignore seeds the project's ignore rules. If nil, DefaultIgnoreRules are used.
	Ignore []string

	Logger logger.Logger
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// ProjectName is the name of the initialized project.
	ProjectName string

	// ProjectUUID is the unique identifier assigned to the project.
	ProjectUUID string

	// ProjectPath is the root path of the project.
	ProjectPath string

	// ConfigPath is the written project config file.
	ConfigPath string
}

// InitProject creates the .tynker directory and a project config.
//
// Returns ErrProjectAlreadyInitialized if a .tynker directory already exists.
// Returns ErrInvalidRule if any seeded ignore rule does not parse.
func InitProject(ctx context.Context, opts InitOptions) (*InitResult, error) {
	dir, err := resolveDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	tynkerDir := filepath.Join(dir, utils.ProjectDirName)
	if _, err := os.Stat(tynkerDir); err == nil {
		return nil, kerrors.ErrProjectAlreadyInitialized
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking project directory: %w", err)
	}

	ignore := opts.Ignore
	if ignore == nil {
		ignore = configs.DefaultIgnoreRules
	}
	if _, err := pathfilter.NewRuleSet(ignore); err != nil {
		return nil, err
	}

	userConfig, err := configs.EnsureUserConfig()
	if err != nil {
		return nil, fmt.Errorf("ensuring user config: %w", err)
	}
	opts.Logger.Debugf("User %s (%s)", userConfig.User.Name, userConfig.User.UUID)

	projectName := opts.ProjectName
	if projectName == "" {
		projectName = utils.GetProjectName(dir)
	}

	cleanupNeeded := false
	defer func() {
		if cleanupNeeded {
			os.RemoveAll(tynkerDir)
		}
	}()

	if err := os.MkdirAll(tynkerDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", utils.ProjectDirName, err)
	}
	cleanupNeeded = true

	projectConfig := &configs.ProjectConfig{
		Project: configs.Project{
			UUID: configs.GenerateUUID(),
			Name: projectName,
		},
		Bundle: configs.Bundle{
			Ignore: append([]string(nil), ignore...),
		},
	}
	if err := configs.SaveProjectConfig(dir, projectConfig); err != nil {
		return nil, fmt.Errorf("saving project config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	settings := configs.NewProjectSettings(dir)
	configs.ProjectTynkerSettings = settings
	opts.Logger.Infof("Wrote %s", settings.ProjectConfigPath)

	auditEntry := audit.LogWithUser(audit.OpInit)
	auditEntry.ProjectName = projectName
	auditEntry.ProjectUUID = projectConfig.Project.UUID
	audit.Log(settings.ProjectAuditPath, auditEntry)

	cleanupNeeded = false

	return &InitResult{
		ProjectName: projectName,
		ProjectUUID: projectConfig.Project.UUID,
		ProjectPath: dir,
		ConfigPath:  settings.ProjectConfigPath,
	}, nil
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	return abs, nil
}
