package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rsa"
	"fmt"
	"io"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
)

const (
	// SymmetricKeySize is the AES-256 key size.
	SymmetricKeySize = 32

	// NonceSize is the AES-GCM nonce size.
	NonceSize = 12

	// TagSize is the AES-GCM authentication tag size.
	TagSize = 16

	// pkcs1v15Overhead is the minimum padding PKCS#1 v1.5 adds to a block.
	pkcs1v15Overhead = 11
)

// CreateSymmetricKey generates a new random symmetric key.
func CreateSymmetricKey(random io.Reader) ([]byte, error) {
	symKey := make([]byte, SymmetricKeySize) // AES-256
	if _, err := io.ReadFull(random, symKey); err != nil {
		return nil, fmt.Errorf("failed to generate symmetric key: %w", err)
	}

	return symKey, nil
}

// NewNonce draws a fresh AES-GCM nonce from random.
func NewNonce(random io.Reader) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(random, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != SymmetricKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d bytes", kerrors.ErrInvalidKeyLength, SymmetricKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

// SealAEAD encrypts plaintext with AES-256-GCM and returns ciphertext||tag.
func SealAEAD(key, nonce, plaintext, associatedData []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", aead.NonceSize(), len(nonce))
	}

	return aead.Seal(nil, nonce, plaintext, associatedData), nil
}

// OpenAEAD verifies and decrypts ciphertext||tag produced by SealAEAD.
func OpenAEAD(key, nonce, sealed, associatedData []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", kerrors.ErrAuthenticationFailure, aead.NonceSize(), len(nonce))
	}
	if len(sealed) < aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext is %d bytes, shorter than the %d-byte tag", kerrors.ErrAuthenticationFailure, len(sealed), aead.Overhead())
	}

	plaintext, err := aead.Open(nil, nonce, sealed, associatedData)
	if err != nil {
		return nil, kerrors.ErrAuthenticationFailure
	}
	return plaintext, nil
}

// EncryptChunkSize is the largest plaintext block publicKey can encrypt.
func EncryptChunkSize(publicKey *rsa.PublicKey) int {
	return publicKey.Size() - pkcs1v15Overhead
}

// DecryptChunkSize is the size of each ciphertext block for privateKey.
func DecryptChunkSize(privateKey *rsa.PrivateKey) int {
	return privateKey.Size()
}

// EncryptWithPublicKey encrypts plaintext block by block with RSA PKCS#1 v1.5.
// Nothing is returned if any block fails.
func EncryptWithPublicKey(random io.Reader, plaintext []byte, publicKey *rsa.PublicKey) ([]byte, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("%w: public key is nil", kerrors.ErrEncryptionFailure)
	}

	chunkSize := EncryptChunkSize(publicKey)
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %d-byte modulus is too small", kerrors.ErrEncryptionFailure, publicKey.Size())
	}

	blocks := (len(plaintext) + chunkSize - 1) / chunkSize
	ciphertext := make([]byte, 0, blocks*publicKey.Size())

	for i := 0; i < len(plaintext); i += chunkSize {
		end := min(i+chunkSize, len(plaintext))
		block, err := rsa.EncryptPKCS1v15(random, publicKey, plaintext[i:end])
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", kerrors.ErrEncryptionFailure, i/chunkSize, err)
		}
		ciphertext = append(ciphertext, block...)
	}

	return ciphertext, nil
}

// DecryptWithPrivateKey decrypts ciphertext produced by EncryptWithPublicKey.
// Nothing is returned if any block fails.
func DecryptWithPrivateKey(ciphertext []byte, privateKey *rsa.PrivateKey) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("%w: private key is nil", kerrors.ErrDecryptionFailure)
	}

	chunkSize := DecryptChunkSize(privateKey)
	if len(ciphertext)%chunkSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of %d", kerrors.ErrDecryptionFailure, len(ciphertext), chunkSize)
	}

	plaintext := make([]byte, 0, len(ciphertext))
	for i := 0; i < len(ciphertext); i += chunkSize {
		// rand is nil: blinding uses the package default and the
		// random argument is ignored for PKCS#1 v1.5 decryption.
		block, err := rsa.DecryptPKCS1v15(nil, privateKey, ciphertext[i:i+chunkSize])
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", kerrors.ErrDecryptionFailure, i/chunkSize, err)
		}
		plaintext = append(plaintext, block...)
	}

	return plaintext, nil
}
