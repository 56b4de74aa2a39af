package secrets

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"path/filepath"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
)

// RSAKeyBits is the modulus size of generated key pairs.
const RSAKeyBits = 2048

// GenerateKeyPair creates a new RSA key pair.
func GenerateKeyPair(random io.Reader) (*rsa.PrivateKey, error) {
	privateKey, err := rsa.GenerateKey(random, RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	return privateKey, nil
}

// MarshalPublicKeyDER exports publicKey as PKCS#1 DER.
func MarshalPublicKeyDER(publicKey *rsa.PublicKey) []byte {
	return x509.MarshalPKCS1PublicKey(publicKey)
}

// ParsePublicKeyDER accepts PKCS#1 or PKIX DER.
func ParsePublicKeyDER(der []byte) (*rsa.PublicKey, error) {
	if pub, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return pub, nil
	}

	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPublicKey, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", kerrors.ErrInvalidPublicKey)
	}
	return rsaPub, nil
}

// ParsePrivateKeyDER accepts PKCS#1 or PKCS#8 DER.
func ParsePrivateKeyDER(der []byte) (*rsa.PrivateKey, error) {
	if priv, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return priv, nil
	}

	priv, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPrivateKey, err)
	}
	rsaPriv, ok := priv.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA private key", kerrors.ErrInvalidPrivateKey)
	}
	return rsaPriv, nil
}

// ParsePrivateKeyPEM parses PEM data holding a PKCS#1 or PKCS#8 RSA key.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || (block.Type != "RSA PRIVATE KEY" && block.Type != "PRIVATE KEY") {
		return nil, fmt.Errorf("%w: no PEM private key block", kerrors.ErrInvalidPrivateKey)
	}
	return ParsePrivateKeyDER(block.Bytes)
}

// LoadPrivateKey loads an RSA private key from a PEM file.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	privateKey, err := ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return privateKey, nil
}

// LoadPublicKey loads an RSA public key from a PEM file.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil || (block.Type != "PUBLIC KEY" && block.Type != "RSA PUBLIC KEY") {
		return nil, fmt.Errorf("%w: no PEM public key block in %s", kerrors.ErrInvalidPublicKey, path)
	}
	return ParsePublicKeyDER(block.Bytes)
}

// SaveKeyPair writes privateKey to privatePath and its public half to publicPath.
// The private key file is readable only by the owner.
func SaveKeyPair(privateKey *rsa.PrivateKey, privatePath, publicPath string) error {
	if err := os.MkdirAll(filepath.Dir(privatePath), 0700); err != nil {
		return fmt.Errorf("failed to create directory for private key at %s: %w", filepath.Dir(privatePath), err)
	}
	if err := os.MkdirAll(filepath.Dir(publicPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory for public key at %s: %w", filepath.Dir(publicPath), err)
	}

	privPem := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	if err := os.WriteFile(privatePath, privPem, 0600); err != nil {
		return fmt.Errorf("failed to write private key file at %s: %w", privatePath, err)
	}

	pubASN1, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}
	pubPem := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubASN1,
	})
	if err := os.WriteFile(publicPath, pubPem, 0644); err != nil {
		return fmt.Errorf("failed to write public key file at %s: %w", publicPath, err)
	}

	return nil
}
