package workflows

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/tynkerbase/tynkerbase/internal/archive"
	"github.com/tynkerbase/tynkerbase/internal/audit"
	"github.com/tynkerbase/tynkerbase/internal/bundle"
	"github.com/tynkerbase/tynkerbase/internal/configs"
	"github.com/tynkerbase/tynkerbase/internal/digest"
	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	logger "github.com/tynkerbase/tynkerbase/internal/logging"
	"github.com/tynkerbase/tynkerbase/internal/secrets"
	"github.com/tynkerbase/tynkerbase/internal/utils"
)

// UnpackOptions configures the unpack workflow.
type UnpackOptions struct {
	ArchivePath string

	// OutputDir receives the files. If empty, uses the working directory.
	OutputDir string

	// Key is the raw key for symmetric archives.
	Key []byte

	// Passphrase is the secret for passphrase archives.
	Passphrase string

	// PrivateKeyPath is the recipient key for asymmetric and hybrid archives.
	// If empty, the default key pair is used.
	PrivateKeyPath string

	// PrivateKeyData contains PEM private key bytes when reading from stdin.
	// It takes precedence over PrivateKeyPath.
	PrivateKeyData []byte

	// Force overwrites existing files.
	Force bool

	// DryRun decrypts and lists the files without writing them.
	DryRun bool

	Logger logger.Logger
}

// UnpackResult contains the outcome of an unpack operation.
type UnpackResult struct {
	OutputDir string
	ArchiveID string
	Scheme    archive.Scheme
	Files     []string

	// PayloadSize is the decrypted bundle size.
	PayloadSize int

	DryRun bool
}

// Unpack opens an archive and writes its files below OutputDir.
//
// Returns ErrMissingKeyMaterial if the scheme's key material is absent.
// Returns ErrAuthenticationFailure if the key is wrong or the archive was
// tampered with.
// Returns ErrFileExists if a file would be overwritten and Force is not set.
// Returns ErrUnsafePath if an entry would land outside OutputDir.
func Unpack(ctx context.Context, opts UnpackOptions) (*UnpackResult, error) {
	outputDir, err := resolveDir(opts.OutputDir)
	if err != nil {
		return nil, err
	}

	a, err := archive.ReadFile(opts.ArchivePath)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debugf("Archive %s, scheme %s", a.ID, a.Scheme)

	openOpts := archive.OpenOptions{Key: opts.Key, Passphrase: opts.Passphrase}
	switch a.Scheme {
	case archive.SchemeSymmetric:
		if len(opts.Key) == 0 {
			return nil, fmt.Errorf("%w: this archive needs its symmetric key", kerrors.ErrMissingKeyMaterial)
		}
	case archive.SchemePassphrase:
		if opts.Passphrase == "" {
			return nil, fmt.Errorf("%w: this archive needs its passphrase", kerrors.ErrMissingKeyMaterial)
		}
	case archive.SchemeAsymmetric, archive.SchemeHybrid:
		if openOpts.PrivateKey, err = loadPrivateKey(opts); err != nil {
			return nil, err
		}
	}

	payload, err := a.Open(openOpts)
	if err != nil {
		return nil, err
	}

	b, err := bundle.Unmarshal(payload)
	if err != nil {
		return nil, err
	}

	result := &UnpackResult{
		OutputDir:   outputDir,
		ArchiveID:   a.ID.String(),
		Scheme:      a.Scheme,
		Files:       make([]string, 0, b.Len()),
		PayloadSize: len(payload),
		DryRun:      opts.DryRun,
	}
	for _, e := range b.Entries {
		target, err := bundle.SafeJoin(outputDir, e.Path)
		if err != nil {
			return nil, err
		}
		if !opts.Force && !opts.DryRun {
			if _, err := os.Stat(target); err == nil {
				return nil, fmt.Errorf("%w: %s (use --force to overwrite)", kerrors.ErrFileExists, e.Path)
			}
		}
		result.Files = append(result.Files, e.Path)
	}

	if opts.DryRun {
		return result, nil
	}

	if err := b.Save(ctx, outputDir); err != nil {
		return nil, err
	}
	opts.Logger.Infof("Restored %d files to %s", b.Len(), outputDir)

	auditEntry := audit.LogWithUser(audit.OpUnpack)
	auditEntry.ArchiveID = result.ArchiveID
	auditEntry.ArchivePath = opts.ArchivePath
	auditEntry.Scheme = string(a.Scheme)
	auditEntry.FileCount = b.Len()
	auditEntry.PayloadSize = len(payload)
	auditEntry.PayloadSHA256 = digest.SHA256Hex(payload)
	if root, err := utils.FindProjectRoot(outputDir); err == nil && root != "" {
		settings := configs.NewProjectSettings(root)
		if projectConfig, err := configs.LoadProjectConfig(root); err == nil {
			auditEntry.ProjectName = projectConfig.Project.Name
			auditEntry.ProjectUUID = projectConfig.Project.UUID
		}
		audit.Log(settings.ProjectAuditPath, auditEntry)
	}

	return result, nil
}

func loadPrivateKey(opts UnpackOptions) (*rsa.PrivateKey, error) {
	if len(opts.PrivateKeyData) > 0 {
		return secrets.ParsePrivateKeyPEM(opts.PrivateKeyData)
	}
	path := configs.FirstNonEmpty(opts.PrivateKeyPath, configs.UserTynkerSettings.PrivateKeyPath(DefaultKeyName))
	privateKey, err := secrets.LoadPrivateKey(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no private key at %s", kerrors.ErrMissingKeyMaterial, path)
	}
	return privateKey, err
}
