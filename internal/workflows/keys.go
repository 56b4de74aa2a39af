package workflows

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tynkerbase/tynkerbase/internal/archive"
	"github.com/tynkerbase/tynkerbase/internal/audit"
	"github.com/tynkerbase/tynkerbase/internal/configs"
	"github.com/tynkerbase/tynkerbase/internal/digest"
	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	logger "github.com/tynkerbase/tynkerbase/internal/logging"
	"github.com/tynkerbase/tynkerbase/internal/secrets"
	"github.com/tynkerbase/tynkerbase/internal/utils"
)

// DefaultKeyName names the key pair used when no name is given.
const DefaultKeyName = "default"

// SymmetricKeyExtension is appended to symmetric key files.
const SymmetricKeyExtension = ".key"

// GenerateKeysOptions configures the key generation workflow.
type GenerateKeysOptions struct {
	// Name is the key name. If empty, uses DefaultKeyName.
	Name string

	// KeysDir overrides the user keys directory.
	KeysDir string

	// Symmetric writes a hex-encoded 32-byte key instead of an RSA key pair.
	Symmetric bool

	// Force overwrites existing key files.
	Force bool

	// Random defaults to crypto/rand.Reader.
	Random io.Reader

	Logger logger.Logger
}

// GenerateKeysResult contains the outcome of a key generation.
type GenerateKeysResult struct {
	Name string

	// PrivateKeyPath is the private key, or the symmetric key file.
	PrivateKeyPath string

	// PublicKeyPath is empty for symmetric keys.
	PublicKeyPath string

	// Fingerprint is the hex BLAKE3 fingerprint of the public key.
	Fingerprint string
}

// GenerateKeys creates an RSA key pair, or a symmetric key file, under the
// user keys directory.
//
// Returns ErrKeyPairExists if the target files exist and Force is not set.
func GenerateKeys(ctx context.Context, opts GenerateKeysOptions) (*GenerateKeysResult, error) {
	name := configs.FirstNonEmpty(opts.Name, DefaultKeyName)
	if name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid key name %q", name)
	}
	random := opts.Random
	if random == nil {
		random = rand.Reader
	}
	keysDir := configs.FirstNonEmpty(opts.KeysDir, configs.UserTynkerSettings.UserKeysPath)

	result := &GenerateKeysResult{Name: name}
	if opts.Symmetric {
		result.PrivateKeyPath = filepath.Join(keysDir, name+SymmetricKeyExtension)
	} else {
		result.PrivateKeyPath = filepath.Join(keysDir, name)
		result.PublicKeyPath = result.PrivateKeyPath + ".pub"
	}

	if !opts.Force {
		for _, p := range []string{result.PrivateKeyPath, result.PublicKeyPath} {
			if p == "" {
				continue
			}
			if _, err := os.Stat(p); err == nil {
				return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyPairExists, p)
			}
		}
	}

	if opts.Symmetric {
		key, err := secrets.CreateSymmetricKey(random)
		if err != nil {
			return nil, err
		}
		if err := writeSymmetricKey(result.PrivateKeyPath, key); err != nil {
			return nil, err
		}
	} else {
		opts.Logger.Debugf("Generating %d-bit RSA key pair", secrets.RSAKeyBits)
		privateKey, err := secrets.GenerateKeyPair(random)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := secrets.SaveKeyPair(privateKey, result.PrivateKeyPath, result.PublicKeyPath); err != nil {
			return nil, err
		}
		result.Fingerprint = hex.EncodeToString(archive.Fingerprint(&privateKey.PublicKey))
	}
	opts.Logger.Infof("Wrote %s", result.PrivateKeyPath)

	auditEntry := audit.LogWithUser(audit.OpKeygen)
	auditEntry.KeyName = name
	audit.Log(currentAuditPath(), auditEntry)

	return result, nil
}

func writeSymmetricKey(path string, key []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	data := hex.EncodeToString(key) + "\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return fmt.Errorf("failed to write symmetric key: %w", err)
	}
	return nil
}

// ParseSymmetricKey accepts a raw 32-byte key or its hex encoding, with
// surrounding whitespace ignored for the hex form.
func ParseSymmetricKey(data []byte) ([]byte, error) {
	if len(data) == secrets.SymmetricKeySize {
		return data, nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == secrets.SymmetricKeySize*2 {
		key := make([]byte, secrets.SymmetricKeySize)
		if _, err := hex.Decode(key, trimmed); err == nil {
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: expected %d raw bytes or %d hex characters", kerrors.ErrInvalidKeyLength, secrets.SymmetricKeySize, secrets.SymmetricKeySize*2)
}

// LoadSymmetricKey reads a key file written by GenerateKeys.
func LoadSymmetricKey(path string) ([]byte, error) {
	// #nosec G304 -- key paths come from the user.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symmetric key: %w", err)
	}
	return ParseSymmetricKey(data)
}

// DeriveOptions configures the derive workflow.
type DeriveOptions struct {
	Secret string

	// Salt is used as given. If empty, a fresh salt is generated.
	Salt string

	Random io.Reader

	Logger logger.Logger
}

// DeriveResult contains a derived credential and the salt that produced it.
type DeriveResult struct {
	Salt          string
	Credential    string
	GeneratedSalt bool
}

// Derive turns a secret and salt into a tagged credential.
func Derive(ctx context.Context, opts DeriveOptions) (*DeriveResult, error) {
	result := &DeriveResult{Salt: opts.Salt}
	if result.Salt == "" {
		random := opts.Random
		if random == nil {
			random = rand.Reader
		}
		salt, err := digest.GenerateSalt(random)
		if err != nil {
			return nil, err
		}
		result.Salt = salt
		result.GeneratedSalt = true
	} else if !digest.IsSalt(result.Salt) {
		opts.Logger.Warnf("Salt %q was not produced by this tool", result.Salt)
	}
	result.Credential = digest.DeriveCredential(opts.Secret, result.Salt)
	return result, nil
}

// currentAuditPath is the audit log of the project containing the working
// directory, or "" outside a project.
func currentAuditPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return auditPathFor(wd)
}

func auditPathFor(dir string) string {
	root, err := utils.FindProjectRoot(dir)
	if err != nil || root == "" {
		return ""
	}
	return configs.NewProjectSettings(root).ProjectAuditPath
}
