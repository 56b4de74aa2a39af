package workflows

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/tynkerbase/tynkerbase/internal/digest"
	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/secrets"
)

func TestGenerateKeys(t *testing.T) {
	useTempUser(t)
	ctx := context.Background()

	result, err := GenerateKeys(ctx, GenerateKeysOptions{})
	if err != nil {
		t.Fatalf("GenerateKeys failed: %v", err)
	}
	if result.Name != DefaultKeyName {
		t.Errorf("expected name %q, got %q", DefaultKeyName, result.Name)
	}
	if len(result.Fingerprint) != 64 {
		t.Errorf("expected 64 hex character fingerprint, got %q", result.Fingerprint)
	}

	privateKey, err := secrets.LoadPrivateKey(result.PrivateKeyPath)
	if err != nil {
		t.Fatalf("LoadPrivateKey failed: %v", err)
	}
	publicKey, err := secrets.LoadPublicKey(result.PublicKeyPath)
	if err != nil {
		t.Fatalf("LoadPublicKey failed: %v", err)
	}
	if !privateKey.PublicKey.Equal(publicKey) {
		t.Error("public key does not match private key")
	}

	info, err := os.Stat(result.PrivateKeyPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected private key mode 0600, got %v", info.Mode().Perm())
	}

	if _, err := GenerateKeys(ctx, GenerateKeysOptions{}); !errors.Is(err, kerrors.ErrKeyPairExists) {
		t.Errorf("expected ErrKeyPairExists, got %v", err)
	}
	if _, err := GenerateKeys(ctx, GenerateKeysOptions{Force: true}); err != nil {
		t.Errorf("GenerateKeys with Force failed: %v", err)
	}
}

func TestGenerateKeysRejectsPathNames(t *testing.T) {
	useTempUser(t)
	for _, name := range []string{"../escape", "a/b", ".."} {
		if _, err := GenerateKeys(context.Background(), GenerateKeysOptions{Name: name, Symmetric: true}); err == nil {
			t.Errorf("expected error for key name %q", name)
		}
	}
}

func TestGenerateSymmetricKey(t *testing.T) {
	useTempUser(t)

	result, err := GenerateKeys(context.Background(), GenerateKeysOptions{Name: "team", Symmetric: true})
	if err != nil {
		t.Fatalf("GenerateKeys failed: %v", err)
	}
	if result.PublicKeyPath != "" || result.Fingerprint != "" {
		t.Errorf("symmetric keys have no public half: %+v", result)
	}
	if !strings.HasSuffix(result.PrivateKeyPath, "team"+SymmetricKeyExtension) {
		t.Errorf("unexpected key path %s", result.PrivateKeyPath)
	}

	key, err := LoadSymmetricKey(result.PrivateKeyPath)
	if err != nil {
		t.Fatalf("LoadSymmetricKey failed: %v", err)
	}
	if len(key) != secrets.SymmetricKeySize {
		t.Errorf("expected %d byte key, got %d", secrets.SymmetricKeySize, len(key))
	}
}

func TestParseSymmetricKey(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, 32)
	hexKey := strings.Repeat("ab", 32)

	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr bool
	}{
		{"Raw", raw, raw, false},
		{"Hex", []byte(hexKey), raw, false},
		{"HexWithNewline", []byte(hexKey + "\n"), raw, false},
		{"UppercaseHex", []byte(strings.ToUpper(hexKey)), raw, false},
		{"Short", []byte("abcd"), nil, true},
		{"BadHex", []byte(strings.Repeat("zz", 32)), nil, true},
		{"Empty", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSymmetricKey(tt.input)
			if tt.wantErr {
				if !errors.Is(err, kerrors.ErrInvalidKeyLength) {
					t.Errorf("expected ErrInvalidKeyLength, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %x, want %x", got, tt.want)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	ctx := context.Background()

	generated, err := Derive(ctx, DeriveOptions{Secret: "hunter2"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if !generated.GeneratedSalt || !digest.IsSalt(generated.Salt) {
		t.Errorf("expected a generated salt, got %+v", generated)
	}

	again, err := Derive(ctx, DeriveOptions{Secret: "hunter2", Salt: generated.Salt})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if again.GeneratedSalt {
		t.Error("salt was given, not generated")
	}
	if again.Credential != generated.Credential {
		t.Error("same secret and salt must derive the same credential")
	}
	if again.Credential != digest.DeriveCredential("hunter2", generated.Salt) {
		t.Error("credential differs from digest.DeriveCredential")
	}
}
