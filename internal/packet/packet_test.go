package packet

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"sync"
	"testing"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/secrets"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func testPrivateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := secrets.GenerateKeyPair(rand.Reader)
		if err != nil {
			t.Fatalf("failed to generate key pair: %v", err)
		}
		testKey = key
	})
	if testKey == nil {
		t.Fatal("test key pair unavailable")
	}
	return testKey
}

func testSymmetricKey(t *testing.T) []byte {
	t.Helper()
	key, err := secrets.CreateSymmetricKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to create symmetric key: %v", err)
	}
	return key
}

func TestNew(t *testing.T) {
	p := New([]byte("payload"))

	if p.State() != StatePlain {
		t.Errorf("expected plain state, got %s", p.State())
	}
	if p.Compression() != CompressionNone {
		t.Errorf("expected no compression, got %s", p.Compression())
	}
	if p.IsEncrypted() {
		t.Error("new packet should not be encrypted")
	}
	if p.Nonce() != nil {
		t.Error("new packet should not hold a nonce")
	}
	if !bytes.Equal(p.AssociatedData(), DefaultAssociatedData) {
		t.Errorf("expected default associated data, got %q", p.AssociatedData())
	}
	if p.MemSize() < len("payload") {
		t.Errorf("MemSize %d is smaller than the payload", p.MemSize())
	}
}

func TestCompressRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("tynkerbase bundle contents ", 512))

	for _, codec := range []Compression{CompressionZstd, CompressionLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			p := New(append([]byte(nil), payload...), WithCompression(codec))

			if err := p.Compress(); err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if p.State() != StateCompressed {
				t.Errorf("expected compressed state, got %s", p.State())
			}
			if p.Compression() != codec {
				t.Errorf("expected %s, got %s", codec, p.Compression())
			}
			if len(p.Payload()) >= len(payload) {
				t.Errorf("expected repetitive payload to shrink, got %d bytes from %d", len(p.Payload()), len(payload))
			}

			if err := p.Decompress(); err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(p.Payload(), payload) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestCompressEmptyPayload(t *testing.T) {
	for _, codec := range []Compression{CompressionZstd, CompressionLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			p := New(nil, WithCompression(codec))
			if err := p.Compress(); err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if len(p.Payload()) == 0 {
				t.Fatal("expected a compressed frame for empty input, got no bytes")
			}
			if err := p.Decompress(); err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if len(p.Payload()) != 0 {
				t.Errorf("expected empty payload, got %d bytes", len(p.Payload()))
			}
		})
	}
}

func TestCompressDeterministic(t *testing.T) {
	payload := []byte(strings.Repeat("abc", 1000))
	a := New(append([]byte(nil), payload...))
	b := New(append([]byte(nil), payload...))
	if err := a.Compress(); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if err := b.Compress(); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if !bytes.Equal(a.Payload(), b.Payload()) {
		t.Error("compression is not deterministic")
	}
}

func TestCompressStateErrors(t *testing.T) {
	key := testSymmetricKey(t)

	t.Run("already compressed", func(t *testing.T) {
		p := New([]byte("data"))
		if err := p.Compress(); err != nil {
			t.Fatalf("Compress failed: %v", err)
		}
		if err := p.Compress(); !errors.Is(err, kerrors.ErrAlreadyCompressed) {
			t.Errorf("expected ErrAlreadyCompressed, got %v", err)
		}
	})

	t.Run("decompress plain", func(t *testing.T) {
		p := New([]byte("data"))
		if err := p.Decompress(); !errors.Is(err, kerrors.ErrNotCompressed) {
			t.Errorf("expected ErrNotCompressed, got %v", err)
		}
	})

	t.Run("compress encrypted", func(t *testing.T) {
		p := New([]byte("data"))
		if err := p.EncryptSymmetric(key); err != nil {
			t.Fatalf("EncryptSymmetric failed: %v", err)
		}
		if err := p.Compress(); !errors.Is(err, kerrors.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("decompress encrypted compressed", func(t *testing.T) {
		p := New([]byte("data"))
		if err := p.Compress(); err != nil {
			t.Fatalf("Compress failed: %v", err)
		}
		if err := p.EncryptSymmetric(key); err != nil {
			t.Fatalf("EncryptSymmetric failed: %v", err)
		}
		if err := p.Decompress(); !errors.Is(err, kerrors.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestDecompressCorruptStream(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"Garbage", []byte("definitely not a compressed stream")},
		{"Empty", []byte{}},
		{"Nil", nil},
	}

	for _, codec := range []Compression{CompressionZstd, CompressionLZ4} {
		for _, tt := range tests {
			t.Run(codec.String()+"/"+tt.name, func(t *testing.T) {
				p := New([]byte("data"), WithCompression(codec))
				if err := p.Compress(); err != nil {
					t.Fatalf("Compress failed: %v", err)
				}
				p.payload = tt.payload

				if err := p.Decompress(); !errors.Is(err, kerrors.ErrCorruptStream) {
					t.Errorf("expected ErrCorruptStream, got %v", err)
				}
				if p.State() != StateCompressed {
					t.Errorf("failed decompress changed state to %s", p.State())
				}
			})
		}
	}
}

func TestSymmetricRoundTrip(t *testing.T) {
	key := testSymmetricKey(t)
	payload := []byte("hello, world")

	p := New(append([]byte(nil), payload...))
	if err := p.EncryptSymmetric(key); err != nil {
		t.Fatalf("EncryptSymmetric failed: %v", err)
	}
	if p.State() != StateEncrypted {
		t.Errorf("expected encrypted state, got %s", p.State())
	}
	if len(p.Nonce()) != secrets.NonceSize {
		t.Errorf("expected %d-byte nonce, got %d", secrets.NonceSize, len(p.Nonce()))
	}
	if len(p.Payload()) != len(payload)+secrets.TagSize {
		t.Errorf("expected %d payload bytes, got %d", len(payload)+secrets.TagSize, len(p.Payload()))
	}

	if err := p.DecryptSymmetric(key); err != nil {
		t.Fatalf("DecryptSymmetric failed: %v", err)
	}
	if !bytes.Equal(p.Payload(), payload) {
		t.Errorf("expected %q, got %q", payload, p.Payload())
	}
	if p.Nonce() != nil {
		t.Error("nonce should be cleared after decrypt")
	}
	if p.State() != StatePlain {
		t.Errorf("expected plain state, got %s", p.State())
	}
}

func TestFullPipeline(t *testing.T) {
	key := testSymmetricKey(t)
	payload := []byte(strings.Repeat("pipeline ", 300))

	p := New(append([]byte(nil), payload...))
	if err := p.Compress(); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if err := p.EncryptSymmetric(key); err != nil {
		t.Fatalf("EncryptSymmetric failed: %v", err)
	}
	if p.State() != StateEncryptedCompressed {
		t.Errorf("expected encrypted+compressed state, got %s", p.State())
	}
	if p.Compression() != CompressionZstd {
		t.Errorf("expected zstd, got %s", p.Compression())
	}

	if err := p.DecryptSymmetric(key); err != nil {
		t.Fatalf("DecryptSymmetric failed: %v", err)
	}
	if p.State() != StateCompressed {
		t.Errorf("expected compressed state, got %s", p.State())
	}
	if err := p.Decompress(); err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(p.Payload(), payload) {
		t.Error("pipeline round trip mismatch")
	}
}

func TestSymmetricFailures(t *testing.T) {
	key := testSymmetricKey(t)

	t.Run("wrong key", func(t *testing.T) {
		p := New([]byte("secret"))
		if err := p.EncryptSymmetric(key); err != nil {
			t.Fatalf("EncryptSymmetric failed: %v", err)
		}
		before := append([]byte(nil), p.Payload()...)

		if err := p.DecryptSymmetric(testSymmetricKey(t)); !errors.Is(err, kerrors.ErrAuthenticationFailure) {
			t.Errorf("expected ErrAuthenticationFailure, got %v", err)
		}
		if !bytes.Equal(p.Payload(), before) || !p.IsEncrypted() || p.Nonce() == nil {
			t.Error("failed decrypt modified the packet")
		}
	})

	t.Run("one byte tampered", func(t *testing.T) {
		p := New([]byte("secret"))
		if err := p.EncryptSymmetric(key); err != nil {
			t.Fatalf("EncryptSymmetric failed: %v", err)
		}
		p.payload[len(p.payload)/2] ^= 0x80

		if err := p.DecryptSymmetric(key); !errors.Is(err, kerrors.ErrAuthenticationFailure) {
			t.Errorf("expected ErrAuthenticationFailure, got %v", err)
		}
	})

	t.Run("different associated data", func(t *testing.T) {
		p := New([]byte("secret"), WithAssociatedData([]byte("a")))
		if err := p.EncryptSymmetric(key); err != nil {
			t.Fatalf("EncryptSymmetric failed: %v", err)
		}
		p.associatedData = []byte("b")

		if err := p.DecryptSymmetric(key); !errors.Is(err, kerrors.ErrAuthenticationFailure) {
			t.Errorf("expected ErrAuthenticationFailure, got %v", err)
		}
	})

	t.Run("double encrypt", func(t *testing.T) {
		p := New([]byte("secret"))
		if err := p.EncryptSymmetric(key); err != nil {
			t.Fatalf("EncryptSymmetric failed: %v", err)
		}
		if err := p.EncryptSymmetric(key); !errors.Is(err, kerrors.ErrAlreadyEncrypted) {
			t.Errorf("expected ErrAlreadyEncrypted, got %v", err)
		}
	})

	t.Run("decrypt plain", func(t *testing.T) {
		p := New([]byte("secret"))
		if err := p.DecryptSymmetric(key); !errors.Is(err, kerrors.ErrNotEncrypted) {
			t.Errorf("expected ErrNotEncrypted, got %v", err)
		}
	})

	t.Run("missing nonce", func(t *testing.T) {
		p := New([]byte("secret"))
		if err := p.EncryptAsymmetric(&testPrivateKey(t).PublicKey); err != nil {
			t.Fatalf("EncryptAsymmetric failed: %v", err)
		}
		if err := p.DecryptSymmetric(key); !errors.Is(err, kerrors.ErrMissingNonce) {
			t.Errorf("expected ErrMissingNonce, got %v", err)
		}
	})

	t.Run("short key", func(t *testing.T) {
		p := New([]byte("secret"))
		if err := p.EncryptSymmetric(key[:16]); !errors.Is(err, kerrors.ErrInvalidKeyLength) {
			t.Errorf("expected ErrInvalidKeyLength, got %v", err)
		}
		if p.IsEncrypted() {
			t.Error("failed encrypt changed state")
		}
	})
}

func TestNonceFromInjectedRandom(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, secrets.SymmetricKeySize)
	nonce := []byte("0123456789ab")

	p := New([]byte("deterministic"), WithRandom(bytes.NewReader(nonce)))
	if err := p.EncryptSymmetric(key); err != nil {
		t.Fatalf("EncryptSymmetric failed: %v", err)
	}
	if !bytes.Equal(p.Nonce(), nonce) {
		t.Errorf("expected nonce %q, got %q", nonce, p.Nonce())
	}

	want, err := secrets.SealAEAD(key, nonce, []byte("deterministic"), DefaultAssociatedData)
	if err != nil {
		t.Fatalf("SealAEAD failed: %v", err)
	}
	if !bytes.Equal(p.Payload(), want) {
		t.Error("ciphertext does not match a direct seal with the same nonce")
	}

	if err := p.DecryptSymmetric(key); err != nil {
		t.Fatalf("DecryptSymmetric failed: %v", err)
	}

	// The random source is now exhausted.
	if err := p.EncryptSymmetric(key); !errors.Is(err, kerrors.ErrEncryptionFailure) {
		t.Errorf("expected ErrEncryptionFailure, got %v", err)
	}
	if p.IsEncrypted() || string(p.Payload()) != "deterministic" {
		t.Error("failed encrypt modified the packet")
	}
}

func TestFreshNoncePerEncryption(t *testing.T) {
	key := testSymmetricKey(t)
	p := New([]byte("same payload"))

	if err := p.EncryptSymmetric(key); err != nil {
		t.Fatalf("EncryptSymmetric failed: %v", err)
	}
	first := append([]byte(nil), p.Nonce()...)
	if err := p.DecryptSymmetric(key); err != nil {
		t.Fatalf("DecryptSymmetric failed: %v", err)
	}
	if err := p.EncryptSymmetric(key); err != nil {
		t.Fatalf("EncryptSymmetric failed: %v", err)
	}
	if bytes.Equal(first, p.Nonce()) {
		t.Error("nonce was reused across encryptions")
	}
}

func TestAsymmetricRoundTrip(t *testing.T) {
	priv := testPrivateKey(t)

	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"exactly one block", 245},
		{"one past a block", 246},
		{"several kilobytes", 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make([]byte, tt.size)
			if _, err := rand.Read(payload); err != nil {
				t.Fatalf("failed to fill payload: %v", err)
			}

			p := New(append([]byte(nil), payload...))
			if err := p.EncryptAsymmetric(&priv.PublicKey); err != nil {
				t.Fatalf("EncryptAsymmetric failed: %v", err)
			}
			if len(p.Payload())%priv.Size() != 0 {
				t.Errorf("ciphertext length %d is not a multiple of %d", len(p.Payload()), priv.Size())
			}
			if p.Nonce() != nil {
				t.Error("asymmetric encryption should not set a nonce")
			}

			if err := p.DecryptAsymmetric(priv); err != nil {
				t.Fatalf("DecryptAsymmetric failed: %v", err)
			}
			if !bytes.Equal(p.Payload(), payload) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestAsymmetricFailures(t *testing.T) {
	priv := testPrivateKey(t)

	t.Run("ciphertext not a block multiple", func(t *testing.T) {
		p := New([]byte("secret"))
		if err := p.EncryptAsymmetric(&priv.PublicKey); err != nil {
			t.Fatalf("EncryptAsymmetric failed: %v", err)
		}
		p.payload = p.payload[:len(p.payload)-1]

		if err := p.DecryptAsymmetric(priv); !errors.Is(err, kerrors.ErrDecryptionFailure) {
			t.Errorf("expected ErrDecryptionFailure, got %v", err)
		}
		if !p.IsEncrypted() {
			t.Error("failed decrypt changed state")
		}
	})

	t.Run("symmetric packet", func(t *testing.T) {
		p := New([]byte("secret"))
		if err := p.EncryptSymmetric(testSymmetricKey(t)); err != nil {
			t.Fatalf("EncryptSymmetric failed: %v", err)
		}
		if err := p.DecryptAsymmetric(priv); !errors.Is(err, kerrors.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("double encrypt", func(t *testing.T) {
		p := New([]byte("secret"))
		if err := p.EncryptAsymmetric(&priv.PublicKey); err != nil {
			t.Fatalf("EncryptAsymmetric failed: %v", err)
		}
		if err := p.EncryptAsymmetric(&priv.PublicKey); !errors.Is(err, kerrors.ErrAlreadyEncrypted) {
			t.Errorf("expected ErrAlreadyEncrypted, got %v", err)
		}
	})
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StatePlain:               "plain",
		StateCompressed:          "compressed",
		StateEncrypted:           "encrypted",
		StateEncryptedCompressed: "encrypted+compressed",
		State(9):                 "unknown(9)",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", uint8(state), got, want)
		}
	}
}

func TestParseCompression(t *testing.T) {
	for _, codec := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		got, err := ParseCompression(codec.String())
		if err != nil {
			t.Errorf("ParseCompression(%q) failed: %v", codec, err)
		}
		if got != codec {
			t.Errorf("ParseCompression(%q) = %s", codec, got)
		}
	}
	if _, err := ParseCompression("brotli"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}
