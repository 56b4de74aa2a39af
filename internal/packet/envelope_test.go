package packet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	key := testSymmetricKey(t)

	p := New([]byte("envelope payload"), WithAssociatedData([]byte("ctx")))
	if err := p.Compress(); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if err := p.EncryptSymmetric(key); err != nil {
		t.Fatalf("EncryptSymmetric failed: %v", err)
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.State() != StateEncryptedCompressed {
		t.Errorf("expected encrypted+compressed, got %s", decoded.State())
	}
	if !bytes.Equal(decoded.Nonce(), p.Nonce()) {
		t.Error("nonce not preserved")
	}
	if !bytes.Equal(decoded.AssociatedData(), []byte("ctx")) {
		t.Errorf("associated data not preserved: %q", decoded.AssociatedData())
	}

	if err := decoded.DecryptSymmetric(key); err != nil {
		t.Fatalf("DecryptSymmetric failed: %v", err)
	}
	if err := decoded.Decompress(); err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if string(decoded.Payload()) != "envelope payload" {
		t.Errorf("unexpected payload %q", decoded.Payload())
	}
}

func TestEnvelopeDeterministic(t *testing.T) {
	p := New([]byte("same"))
	a, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	b, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("envelope encoding is not deterministic")
	}
}

func TestEnvelopeRejects(t *testing.T) {
	valid := envelope{
		Version:        envelopeVersion,
		State:          StatePlain,
		Compression:    CompressionNone,
		AssociatedData: DefaultAssociatedData,
		Payload:        []byte("data"),
		Checksum:       checksum([]byte("data")),
	}

	tests := []struct {
		name   string
		mutate func(*envelope)
	}{
		{"unknown version", func(e *envelope) { e.Version = 7 }},
		{"invalid state", func(e *envelope) { e.State = State(42) }},
		{"checksum mismatch", func(e *envelope) { e.Payload = []byte("date") }},
		{"nonce on plain packet", func(e *envelope) { e.Nonce = make([]byte, 12) }},
		{"short nonce", func(e *envelope) {
			e.State = StateEncrypted
			e.Nonce = make([]byte, 5)
		}},
		{"compressed without algorithm", func(e *envelope) { e.State = StateCompressed }},
		{"plain with algorithm", func(e *envelope) { e.Compression = CompressionLZ4 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := valid
			tt.mutate(&env)
			data, err := cbor.Marshal(env)
			if err != nil {
				t.Fatalf("failed to encode envelope: %v", err)
			}

			if _, err := Unmarshal(data); !errors.Is(err, kerrors.ErrInvalidEnvelope) {
				t.Errorf("expected ErrInvalidEnvelope, got %v", err)
			}
		})
	}

	t.Run("not cbor", func(t *testing.T) {
		if _, err := Unmarshal([]byte{0xff, 0x00}); !errors.Is(err, kerrors.ErrInvalidEnvelope) {
			t.Errorf("expected ErrInvalidEnvelope, got %v", err)
		}
	})
}

func TestEnvelopeKeepsRandomSource(t *testing.T) {
	nonce := []byte("abcdefghijkl")
	src := New([]byte("x"))
	data, err := src.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	p, err := Unmarshal(data, WithRandom(bytes.NewReader(nonce)))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if err := p.EncryptSymmetric(testSymmetricKey(t)); err != nil {
		t.Fatalf("EncryptSymmetric failed: %v", err)
	}
	if !bytes.Equal(p.Nonce(), nonce) {
		t.Errorf("expected nonce from injected source, got %x", p.Nonce())
	}
}
