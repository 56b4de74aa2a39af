package archive

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/tynkerbase/tynkerbase/internal/digest"
	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/packet"
	"github.com/tynkerbase/tynkerbase/internal/secrets"
)

// FormatVersion is the archive layout version.
const FormatVersion = 1

// FileExtension is appended to archive files written by the CLI.
const FileExtension = ".tyb"

// DirectAsymmetricWarnSize is the payload size above which direct RSA
// encryption is slow enough to warn about.
const DirectAsymmetricWarnSize = 64 << 10

// Scheme names how an archive's data key is protected.
type Scheme string

const (
	SchemeSymmetric  Scheme = "symmetric"
	SchemePassphrase Scheme = "passphrase"
	SchemeAsymmetric Scheme = "asymmetric"
	SchemeHybrid     Scheme = "hybrid"
)

// ParseScheme validates a scheme name.
func ParseScheme(name string) (Scheme, error) {
	switch s := Scheme(name); s {
	case SchemeSymmetric, SchemePassphrase, SchemeAsymmetric, SchemeHybrid:
		return s, nil
	default:
		return "", fmt.Errorf("unknown scheme %q (want symmetric, passphrase, asymmetric or hybrid)", name)
	}
}

// KeyDerivation names how a passphrase credential becomes a key.
type KeyDerivation string

const (
	KeyDerivationHKDF   KeyDerivation = "hkdf-sha256"
	KeyDerivationLegacy KeyDerivation = "legacy-hex-prefix"
)

// Archive is the on-disk container.
type Archive struct {
	Version       uint8         `cbor:"version"`
	ID            uuid.UUID     `cbor:"id"`
	Scheme        Scheme        `cbor:"scheme"`
	CreatedAt     int64         `cbor:"created_at"`
	Salt          string        `cbor:"salt,omitempty"`
	KeyDerivation KeyDerivation `cbor:"kdf,omitempty"`
	// Fingerprint is the BLAKE3 hash of the recipient's DER public key.
	Fingerprint []byte `cbor:"fingerprint,omitempty"`
	WrappedKey  []byte `cbor:"wrapped_key,omitempty"`
	Data        []byte `cbor:"data"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("archive: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("archive: CBOR decoder initialization failed: " + err.Error())
	}
}

// Fingerprint identifies a public key.
func Fingerprint(publicKey *rsa.PublicKey) []byte {
	sum := blake3.Sum256(secrets.MarshalPublicKeyDER(publicKey))
	return sum[:]
}

func associatedData(id uuid.UUID) []byte {
	return append(append([]byte(nil), packet.DefaultAssociatedData...), id[:]...)
}

// SealOptions selects the scheme and its key material.
type SealOptions struct {
	Scheme Scheme
	// Key is the raw key for SchemeSymmetric.
	Key []byte
	// Passphrase is the secret for SchemePassphrase.
	Passphrase    string
	KeyDerivation KeyDerivation
	// PublicKey is the recipient for SchemeAsymmetric and SchemeHybrid.
	PublicKey *rsa.PublicKey
	// Compression is applied before encryption. The zero value disables it.
	Compression packet.Compression
	// Random defaults to crypto/rand.Reader.
	Random io.Reader
	// Now defaults to time.Now.
	Now func() time.Time
}

// OpenOptions carries whichever key material the archive's scheme needs.
type OpenOptions struct {
	Key        []byte
	Passphrase string
	PrivateKey *rsa.PrivateKey
}

func passphraseKey(passphrase, salt string, kdf KeyDerivation) ([]byte, error) {
	credential := digest.DeriveCredential(passphrase, salt)
	switch kdf {
	case KeyDerivationHKDF, "":
		return digest.KeyFromCredential(credential)
	case KeyDerivationLegacy:
		return digest.LegacyKeyFromCredential(credential)
	default:
		return nil, fmt.Errorf("%w: unknown key derivation %q", kerrors.ErrInvalidArchive, kdf)
	}
}

// Seal compresses and encrypts payload under the chosen scheme.
func Seal(payload []byte, opts SealOptions) (*Archive, error) {
	random := opts.Random
	if random == nil {
		random = rand.Reader
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	id, err := uuid.NewRandomFromReader(random)
	if err != nil {
		return nil, fmt.Errorf("failed to generate archive ID: %w", err)
	}

	a := &Archive{
		Version:   FormatVersion,
		ID:        id,
		Scheme:    opts.Scheme,
		CreatedAt: now().UTC().Unix(),
	}

	packetOpts := []packet.Option{
		packet.WithRandom(random),
		packet.WithAssociatedData(associatedData(id)),
	}
	if opts.Compression != packet.CompressionNone {
		packetOpts = append(packetOpts, packet.WithCompression(opts.Compression))
	}
	data := packet.New(payload, packetOpts...)
	if opts.Compression != packet.CompressionNone {
		if err := data.Compress(); err != nil {
			return nil, fmt.Errorf("failed to compress payload: %w", err)
		}
	}

	switch opts.Scheme {
	case SchemeSymmetric:
		if err := data.EncryptSymmetric(opts.Key); err != nil {
			return nil, fmt.Errorf("failed to encrypt payload: %w", err)
		}

	case SchemePassphrase:
		if opts.Passphrase == "" {
			return nil, fmt.Errorf("%w: passphrase is empty", kerrors.ErrInvalidCredential)
		}
		salt, err := digest.GenerateSalt(random)
		if err != nil {
			return nil, err
		}
		kdf := opts.KeyDerivation
		if kdf == "" {
			kdf = KeyDerivationHKDF
		}
		key, err := passphraseKey(opts.Passphrase, salt, kdf)
		if err != nil {
			return nil, err
		}
		if err := data.EncryptSymmetric(key); err != nil {
			return nil, fmt.Errorf("failed to encrypt payload: %w", err)
		}
		a.Salt = salt
		a.KeyDerivation = kdf

	case SchemeAsymmetric:
		if opts.PublicKey == nil {
			return nil, fmt.Errorf("%w: no recipient public key", kerrors.ErrInvalidPublicKey)
		}
		if err := data.EncryptAsymmetric(opts.PublicKey); err != nil {
			return nil, fmt.Errorf("failed to encrypt payload: %w", err)
		}
		a.Fingerprint = Fingerprint(opts.PublicKey)

	case SchemeHybrid:
		if opts.PublicKey == nil {
			return nil, fmt.Errorf("%w: no recipient public key", kerrors.ErrInvalidPublicKey)
		}
		key, err := secrets.CreateSymmetricKey(random)
		if err != nil {
			return nil, err
		}
		if err := data.EncryptSymmetric(key); err != nil {
			return nil, fmt.Errorf("failed to encrypt payload: %w", err)
		}
		wrapped := packet.New(key, packet.WithRandom(random))
		if err := wrapped.EncryptAsymmetric(opts.PublicKey); err != nil {
			return nil, fmt.Errorf("failed to wrap data key: %w", err)
		}
		if a.WrappedKey, err = wrapped.MarshalBinary(); err != nil {
			return nil, err
		}
		a.Fingerprint = Fingerprint(opts.PublicKey)

	default:
		return nil, fmt.Errorf("%w: unknown scheme %q", kerrors.ErrInvalidArchive, opts.Scheme)
	}

	if a.Data, err = data.MarshalBinary(); err != nil {
		return nil, err
	}
	return a, nil
}

// Open decrypts and decompresses the archive's payload.
func (a *Archive) Open(opts OpenOptions) ([]byte, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	data, err := packet.Unmarshal(a.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data packet: %w", err)
	}
	if !bytes.Equal(data.AssociatedData(), associatedData(a.ID)) {
		return nil, fmt.Errorf("%w: data packet does not belong to archive %s", kerrors.ErrInvalidArchive, a.ID)
	}

	switch a.Scheme {
	case SchemeSymmetric:
		if err := data.DecryptSymmetric(opts.Key); err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}

	case SchemePassphrase:
		key, err := passphraseKey(opts.Passphrase, a.Salt, a.KeyDerivation)
		if err != nil {
			return nil, err
		}
		if err := data.DecryptSymmetric(key); err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}

	case SchemeAsymmetric:
		if err := a.checkRecipient(opts.PrivateKey); err != nil {
			return nil, err
		}
		if err := data.DecryptAsymmetric(opts.PrivateKey); err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}

	case SchemeHybrid:
		if err := a.checkRecipient(opts.PrivateKey); err != nil {
			return nil, err
		}
		wrapped, err := packet.Unmarshal(a.WrappedKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode wrapped key: %w", err)
		}
		if err := wrapped.DecryptAsymmetric(opts.PrivateKey); err != nil {
			return nil, fmt.Errorf("failed to unwrap data key: %w", err)
		}
		if err := data.DecryptSymmetric(wrapped.Payload()); err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}
	}

	if data.State() == packet.StateCompressed {
		if err := data.Decompress(); err != nil {
			return nil, fmt.Errorf("failed to decompress payload: %w", err)
		}
	}
	return data.Payload(), nil
}

func (a *Archive) checkRecipient(privateKey *rsa.PrivateKey) error {
	if privateKey == nil {
		return fmt.Errorf("%w: no private key", kerrors.ErrInvalidPrivateKey)
	}
	if !bytes.Equal(a.Fingerprint, Fingerprint(&privateKey.PublicKey)) {
		return fmt.Errorf("%w: archive %s was sealed for a different key", kerrors.ErrDecryptionFailure, a.ID)
	}
	return nil
}

func (a *Archive) validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{kerrors.ErrInvalidArchive}, args...)...)
	}

	if a.Version != FormatVersion {
		return invalid("unsupported version %d", a.Version)
	}
	if _, err := ParseScheme(string(a.Scheme)); err != nil {
		return invalid("%v", err)
	}
	if len(a.Data) == 0 {
		return invalid("missing data packet")
	}
	if (a.Scheme == SchemeHybrid) != (len(a.WrappedKey) > 0) {
		return invalid("wrapped key must be present exactly for the hybrid scheme")
	}
	if (a.Scheme == SchemePassphrase) != (a.Salt != "") {
		return invalid("salt must be present exactly for the passphrase scheme")
	}
	if a.Salt != "" && !digest.IsSalt(a.Salt) {
		return invalid("malformed salt")
	}
	recipient := a.Scheme == SchemeAsymmetric || a.Scheme == SchemeHybrid
	if recipient && len(a.Fingerprint) != 32 {
		return invalid("missing recipient fingerprint")
	}
	return nil
}

// wireArchive has no methods, so the encoder does not call back into MarshalBinary.
type wireArchive Archive

// MarshalBinary encodes the archive.
func (a *Archive) MarshalBinary() ([]byte, error) {
	data, err := encMode.Marshal((*wireArchive)(a))
	if err != nil {
		return nil, fmt.Errorf("failed to encode archive: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates an archive.
func Unmarshal(data []byte) (*Archive, error) {
	var a Archive
	if err := decMode.Unmarshal(data, (*wireArchive)(&a)); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidArchive, err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// WriteFile writes the archive to path with owner-only permissions.
func WriteFile(path string, a *Archive) error {
	data, err := a.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for archive at %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write archive at %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and validates the archive at path.
func ReadFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive at %s: %w", path, err)
	}
	a, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}
