package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// Packet state errors indicate an operation was attempted in the wrong state.
var (
	// ErrAlreadyCompressed indicates the packet payload is already compressed.
	ErrAlreadyCompressed = errors.New("packet is already compressed")

	// ErrNotCompressed indicates the packet payload is not compressed.
	ErrNotCompressed = errors.New("packet is not compressed")

	// ErrInvalidState indicates a compression stage was applied to ciphertext.
	ErrInvalidState = errors.New("invalid packet state for this operation")

	// ErrAlreadyEncrypted indicates the packet already holds ciphertext.
	ErrAlreadyEncrypted = errors.New("packet is already encrypted")

	// ErrNotEncrypted indicates the packet holds plaintext.
	ErrNotEncrypted = errors.New("packet is not encrypted")

	// ErrMissingNonce indicates a symmetric decrypt was attempted without a stored nonce.
	ErrMissingNonce = errors.New("packet has no nonce")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrAuthenticationFailure indicates the AEAD tag did not verify.
	ErrAuthenticationFailure = errors.New("authentication failed: wrong key or tampered data")

	// ErrEncryptionFailure indicates the asymmetric cipher rejected a block.
	ErrEncryptionFailure = errors.New("failed to encrypt payload")

	// ErrDecryptionFailure indicates an asymmetric ciphertext block was malformed.
	ErrDecryptionFailure = errors.New("failed to decrypt payload")

	// ErrInvalidKeyLength indicates the symmetric key has an unexpected length.
	ErrInvalidKeyLength = errors.New("invalid symmetric key length")

	// ErrInvalidPublicKey indicates the public key is malformed or unsupported.
	ErrInvalidPublicKey = errors.New("invalid or unsupported public key format")

	// ErrInvalidPrivateKey indicates the private key is malformed or unsupported.
	ErrInvalidPrivateKey = errors.New("invalid or unsupported private key format")

	// ErrInvalidCredential indicates a credential string is not in tyb_key_ format.
	ErrInvalidCredential = errors.New("invalid credential format")
)

// Format errors indicate malformed buffers, streams or envelopes.
var (
	// ErrTruncatedBuffer indicates a bundle buffer ended before a declared field.
	ErrTruncatedBuffer = errors.New("bundle buffer is truncated")

	// ErrInvalidText indicates a path was not valid UTF-8.
	ErrInvalidText = errors.New("invalid text encoding")

	// ErrCorruptStream indicates the compressed stream could not be decoded.
	ErrCorruptStream = errors.New("compressed stream is corrupt")

	// ErrInvalidEnvelope indicates a packet envelope could not be decoded or verified.
	ErrInvalidEnvelope = errors.New("invalid packet envelope")

	// ErrInvalidArchive indicates the archive structure is invalid.
	ErrInvalidArchive = errors.New("invalid archive structure")

	// ErrInvalidRule indicates an ignore rule could not be parsed.
	ErrInvalidRule = errors.New("invalid ignore rule")

	// ErrInvalidDateFormat indicates a date filter is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// File errors indicate issues with bundle sources and destinations.
var (
	// ErrNotADirectory indicates a bundle root is a file.
	ErrNotADirectory = errors.New("bundle root must be a directory")

	// ErrUnsafePath indicates a bundle entry would be written outside the output root.
	ErrUnsafePath = errors.New("bundle entry path escapes the output directory")

	// ErrNoFilesFound indicates the ignore rules excluded every file.
	ErrNoFilesFound = errors.New("no matching files found")

	// ErrProjectNotInitialized indicates no .tynker directory was found.
	ErrProjectNotInitialized = errors.New("project has not been initialized")

	// ErrProjectAlreadyInitialized indicates the .tynker directory already exists.
	ErrProjectAlreadyInitialized = errors.New("project has already been initialized")

	// ErrKeyPairExists indicates key generation would overwrite existing key files.
	ErrKeyPairExists = errors.New("key pair already exists")

	// ErrFileExists indicates unpacking would overwrite an existing file.
	ErrFileExists = errors.New("file already exists")

	// ErrMissingKeyMaterial indicates no key, passphrase or key pair was supplied for the scheme.
	ErrMissingKeyMaterial = errors.New("no key material for this scheme")
)

// FormatError describes a malformed field. It wraps one of the format sentinels.
type FormatError struct {
	Field    string
	Expected string
	Found    string
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %s: expected %s, found %s", e.Err, e.Field, e.Expected, e.Found)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Kind is the category discriminant carried by every error in this module.
type Kind int

const (
	KindUnknown Kind = iota
	KindState
	KindIntegrity
	KindFormat
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindIntegrity:
		return "integrity"
	case KindFormat:
		return "format"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

var kinds = []struct {
	kind      Kind
	sentinels []error
}{
	{KindState, []error{ErrAlreadyCompressed, ErrNotCompressed, ErrInvalidState, ErrAlreadyEncrypted, ErrNotEncrypted, ErrMissingNonce}},
	{KindIntegrity, []error{ErrAuthenticationFailure, ErrEncryptionFailure, ErrDecryptionFailure, ErrInvalidKeyLength, ErrInvalidPublicKey, ErrInvalidPrivateKey, ErrInvalidCredential}},
	{KindFormat, []error{ErrTruncatedBuffer, ErrInvalidText, ErrCorruptStream, ErrInvalidEnvelope, ErrInvalidArchive, ErrInvalidRule, ErrInvalidDateFormat}},
	{KindResource, []error{ErrNotADirectory, ErrUnsafePath, ErrNoFilesFound, ErrProjectNotInitialized, ErrProjectAlreadyInitialized, ErrKeyPairExists, ErrFileExists, ErrMissingKeyMaterial}},
}

// KindOf reports the category of err. Wrapped *fs.PathError values count as
// resource errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, group := range kinds {
		for _, sentinel := range group.sentinels {
			if errors.Is(err, sentinel) {
				return group.kind
			}
		}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindResource
	}
	return KindUnknown
}
