package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
)

const (
	// CredentialPrefix tags derived credentials.
	CredentialPrefix = "tyb_key_"

	// SaltPrefix tags generated salts.
	SaltPrefix = "tyb_salt_"

	// SaltLength is the number of alphanumeric characters after SaltPrefix.
	SaltLength = 64

	// KeySize is the size of symmetric keys produced from credentials.
	KeySize = 32

	saltAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// hkdfInfo separates credential-derived packet keys from any other use of
// the same credential.
var hkdfInfo = []byte("tynkerbase.packet.key.v1")

// SHA256Hex returns the lowercase hex SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SHA384Hex returns the lowercase hex SHA-384 digest of data.
func SHA384Hex(data []byte) string {
	sum := sha512.Sum384(data)
	return hex.EncodeToString(sum[:])
}

// SHA512Hex returns the lowercase hex SHA-512 digest of data.
func SHA512Hex(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}

// DeriveCredential hashes secret and salt with SHA-512 and returns the
// tagged credential. Each input is framed with its big-endian uint64 length
// so that ("ab", "c") and ("a", "bc") never collide.
func DeriveCredential(secret, salt string) string {
	framed := make([]byte, 0, 16+len(secret)+len(salt))
	framed = appendFramed(framed, secret)
	framed = appendFramed(framed, salt)
	return CredentialPrefix + SHA512Hex(framed)
}

func appendFramed(buf []byte, value string) []byte {
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(value)))
	return append(buf, value...)
}

// GenerateSalt draws SaltLength characters uniformly from [0-9A-Za-z] using r.
// Bytes at or above the largest multiple of the alphabet size are rejected so
// that every character is equally likely.
func GenerateSalt(r io.Reader) (string, error) {
	const limit = 256 - (256 % len(saltAlphabet))

	var b strings.Builder
	b.Grow(len(SaltPrefix) + SaltLength)
	b.WriteString(SaltPrefix)

	buf := make([]byte, SaltLength)
	remaining := SaltLength
	for remaining > 0 {
		if _, err := io.ReadFull(r, buf[:remaining]); err != nil {
			return "", fmt.Errorf("failed to read random bytes for salt: %w", err)
		}
		accepted := 0
		for _, c := range buf[:remaining] {
			if int(c) >= limit {
				continue
			}
			b.WriteByte(saltAlphabet[int(c)%len(saltAlphabet)])
			accepted++
		}
		remaining -= accepted
	}

	return b.String(), nil
}

// IsSalt reports whether s is a well-formed tagged salt.
func IsSalt(s string) bool {
	payload, ok := strings.CutPrefix(s, SaltPrefix)
	if !ok || len(payload) != SaltLength {
		return false
	}
	for i := 0; i < len(payload); i++ {
		if !strings.ContainsRune(saltAlphabet, rune(payload[i])) {
			return false
		}
	}
	return true
}

// ParseCredential validates a tagged credential and returns its decoded digest.
func ParseCredential(credential string) ([]byte, error) {
	payload, ok := strings.CutPrefix(credential, CredentialPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", kerrors.ErrInvalidCredential, CredentialPrefix)
	}
	if len(payload) != sha512.Size*2 {
		return nil, fmt.Errorf("%w: expected %d hex characters, got %d", kerrors.ErrInvalidCredential, sha512.Size*2, len(payload))
	}
	if strings.ToLower(payload) != payload {
		return nil, fmt.Errorf("%w: digest must be lowercase hex", kerrors.ErrInvalidCredential)
	}
	digest, err := hex.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidCredential, err)
	}
	return digest, nil
}

// KeyFromCredential derives a 32-byte symmetric key from a tagged credential
// using HKDF-SHA256 over the decoded digest.
func KeyFromCredential(credential string) ([]byte, error) {
	digest, err := ParseCredential(credential)
	if err != nil {
		return nil, err
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, digest, nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("failed to expand credential: %w", err)
	}
	return key, nil
}

// LegacyKeyFromCredential returns the first 32 hex characters of the
// credential digest as raw key bytes.
func LegacyKeyFromCredential(credential string) ([]byte, error) {
	if _, err := ParseCredential(credential); err != nil {
		return nil, err
	}
	payload := strings.TrimPrefix(credential, CredentialPrefix)
	return []byte(payload[:KeySize]), nil
}
