package workflows

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tynkerbase/tynkerbase/internal/archive"
	"github.com/tynkerbase/tynkerbase/internal/audit"
	"github.com/tynkerbase/tynkerbase/internal/bundle"
	"github.com/tynkerbase/tynkerbase/internal/configs"
	"github.com/tynkerbase/tynkerbase/internal/digest"
	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	logger "github.com/tynkerbase/tynkerbase/internal/logging"
	"github.com/tynkerbase/tynkerbase/internal/packet"
	"github.com/tynkerbase/tynkerbase/internal/pathfilter"
	"github.com/tynkerbase/tynkerbase/internal/secrets"
	"github.com/tynkerbase/tynkerbase/internal/utils"
)

// PackOptions configures the pack workflow.
type PackOptions struct {
	// Dir is the directory to bundle. If empty, uses the working directory.
	Dir string

	// Output is the archive path. If empty, the archive goes to
	// .tynker/archives inside a project, or the working directory otherwise.
	Output string

	// Ignore adds rules after the user and project rules.
	Ignore []string

	// Scheme, Compression and KeyDerivation override the project and user
	// defaults when set.
	Scheme        string
	Compression   string
	KeyDerivation string

	// Key is the raw key for the symmetric scheme.
	Key []byte

	// Passphrase is the secret for the passphrase scheme.
	Passphrase string

	// RecipientPath is a PEM public key for the asymmetric and hybrid schemes.
	RecipientPath string

	// DryRun lists the files that would be bundled without resolving keys or
	// writing anything.
	DryRun bool

	Random io.Reader
	Now    func() time.Time

	Logger logger.Logger
}

// PackResult contains the outcome of a pack operation.
type PackResult struct {
	ArchivePath string
	ArchiveID   string
	Scheme      archive.Scheme
	Compression packet.Compression

	// Files lists the bundled paths in bundle order.
	Files []string

	// PayloadSize is the encoded bundle size before compression.
	PayloadSize int

	// ArchiveSize is the size of the written archive file.
	ArchiveSize int

	// ProjectPath is empty when Dir is not inside a project.
	ProjectPath string

	DryRun bool
}

// Pack bundles the files under Dir that survive the merged ignore rules and
// seals them into an archive.
//
// Rules are merged in order: user defaults, project config, Ignore, then the
// .tynker directory. Scheme and compression are taken from the options, then
// the project config, then the user config.
//
// Returns ErrNoFilesFound if no file survives the rules.
// Returns ErrMissingKeyMaterial if the scheme's key material is absent.
func Pack(ctx context.Context, opts PackOptions) (*PackResult, error) {
	dir, err := resolveDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return nil, err
	}
	defaults := userConfig.Defaults

	projectPath, err := utils.FindProjectRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}
	projectConfig := &configs.ProjectConfig{}
	if projectPath != "" {
		if projectConfig, err = configs.LoadProjectConfig(projectPath); err != nil {
			return nil, err
		}
		opts.Logger.Debugf("Using project %s at %s", projectConfig.Project.Name, projectPath)
	}

	patterns := configs.IgnoreRules(defaults.Ignore, projectConfig.Bundle.Ignore, opts.Ignore)
	rules, err := pathfilter.NewRuleSet(patterns)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debugf("Ignore rules: %v", patterns)

	b, err := bundle.Load(ctx, dir, rules)
	if err != nil {
		return nil, err
	}
	if b.Len() == 0 {
		return nil, kerrors.ErrNoFilesFound
	}

	result := &PackResult{
		Files:       make([]string, 0, b.Len()),
		PayloadSize: b.EncodedSize(),
		ProjectPath: projectPath,
		DryRun:      opts.DryRun,
	}
	for _, e := range b.Entries {
		result.Files = append(result.Files, e.Path)
	}
	opts.Logger.Infof("Bundled %d files (%s)", b.Len(), utils.FormatBytes(result.PayloadSize))

	compression, err := packet.ParseCompression(configs.FirstNonEmpty(opts.Compression, projectConfig.Bundle.Compression, defaults.Compression))
	if err != nil {
		return nil, err
	}
	result.Compression = compression

	if opts.DryRun {
		return result, nil
	}

	recipient := opts.RecipientPath
	if recipient == "" && projectConfig.Bundle.Recipient != "" {
		recipient = projectConfig.Bundle.Recipient
		if !filepath.IsAbs(recipient) {
			recipient = filepath.Join(projectPath, recipient)
		}
	}

	sealOpts := archive.SealOptions{
		Key:           opts.Key,
		Passphrase:    opts.Passphrase,
		KeyDerivation: archive.KeyDerivation(configs.FirstNonEmpty(opts.KeyDerivation, defaults.KeyDerivation)),
		Compression:   compression,
		Random:        opts.Random,
		Now:           now,
	}

	sealOpts.Scheme, err = resolveScheme(configs.FirstNonEmpty(opts.Scheme, projectConfig.Bundle.Scheme, defaults.Scheme), opts, recipient)
	if err != nil {
		return nil, err
	}
	result.Scheme = sealOpts.Scheme

	switch sealOpts.Scheme {
	case archive.SchemeSymmetric:
		if len(opts.Key) == 0 {
			return nil, fmt.Errorf("%w: the symmetric scheme needs a key", kerrors.ErrMissingKeyMaterial)
		}
	case archive.SchemePassphrase:
		if opts.Passphrase == "" {
			return nil, fmt.Errorf("%w: the passphrase scheme needs a passphrase", kerrors.ErrMissingKeyMaterial)
		}
	case archive.SchemeAsymmetric, archive.SchemeHybrid:
		if recipient == "" {
			recipient = configs.UserTynkerSettings.PublicKeyPath(DefaultKeyName)
		}
		if sealOpts.PublicKey, err = secrets.LoadPublicKey(recipient); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: no public key at %s", kerrors.ErrMissingKeyMaterial, recipient)
			}
			return nil, err
		}
		opts.Logger.Debugf("Recipient %s", recipient)
	}

	if sealOpts.Scheme == archive.SchemeAsymmetric && result.PayloadSize > archive.DirectAsymmetricWarnSize {
		opts.Logger.WarnfAlways("Encrypting %s directly with RSA is slow; the hybrid scheme is faster", utils.FormatBytes(result.PayloadSize))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload := b.Marshal()
	a, err := archive.Seal(payload, sealOpts)
	if err != nil {
		return nil, err
	}
	result.ArchiveID = a.ID.String()

	result.ArchivePath = opts.Output
	if result.ArchivePath == "" {
		name := configs.FirstNonEmpty(projectConfig.Project.Name, utils.GetProjectName(dir))
		fileName := fmt.Sprintf("%s-%s%s", name, now().UTC().Format("20060102-150405"), archive.FileExtension)
		if projectPath != "" {
			result.ArchivePath = filepath.Join(projectPath, utils.ProjectDirName, "archives", fileName)
		} else {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("getting working directory: %w", err)
			}
			result.ArchivePath = filepath.Join(wd, fileName)
		}
	}

	if err := archive.WriteFile(result.ArchivePath, a); err != nil {
		return nil, err
	}
	if info, err := os.Stat(result.ArchivePath); err == nil {
		result.ArchiveSize = int(info.Size())
	}
	opts.Logger.Infof("Wrote %s", result.ArchivePath)

	auditEntry := audit.LogWithUser(audit.OpPack)
	auditEntry.ArchiveID = result.ArchiveID
	auditEntry.ArchivePath = result.ArchivePath
	auditEntry.Scheme = string(result.Scheme)
	auditEntry.FileCount = len(result.Files)
	auditEntry.PayloadSize = result.PayloadSize
	auditEntry.PayloadSHA256 = digest.SHA256Hex(payload)
	auditEntry.ProjectName = projectConfig.Project.Name
	auditEntry.ProjectUUID = projectConfig.Project.UUID
	if projectPath != "" {
		audit.Log(configs.NewProjectSettings(projectPath).ProjectAuditPath, auditEntry)
	}

	return result, nil
}

// resolveScheme picks a scheme when none is configured: an explicit key,
// then a passphrase, then a recipient, then the default key pair.
func resolveScheme(name string, opts PackOptions, recipient string) (archive.Scheme, error) {
	if name != "" {
		return archive.ParseScheme(name)
	}
	switch {
	case len(opts.Key) > 0:
		return archive.SchemeSymmetric, nil
	case opts.Passphrase != "":
		return archive.SchemePassphrase, nil
	case recipient != "":
		return archive.SchemeHybrid, nil
	}
	if _, err := os.Stat(configs.UserTynkerSettings.PublicKeyPath(DefaultKeyName)); err == nil {
		return archive.SchemeHybrid, nil
	}
	return "", fmt.Errorf("%w: pass a key, a passphrase or a recipient, or run `tynker keys generate`", kerrors.ErrMissingKeyMaterial)
}
