package packet

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/secrets"
)

const envelopeVersion = 1

type envelope struct {
	Version        uint8       `cbor:"version"`
	State          State       `cbor:"state"`
	Compression    Compression `cbor:"compression"`
	AssociatedData []byte      `cbor:"associated_data"`
	Nonce          []byte      `cbor:"nonce,omitempty"`
	Payload        []byte      `cbor:"payload"`
	Checksum       []byte      `cbor:"checksum"`
}

// encMode uses Core Deterministic Encoding so equal packets encode to
// identical bytes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("packet: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("packet: CBOR decoder initialization failed: " + err.Error())
	}
}

func checksum(payload []byte) []byte {
	sum := blake3.Sum256(payload)
	return sum[:]
}

// MarshalBinary encodes the packet as a versioned CBOR envelope.
func (p *Packet) MarshalBinary() ([]byte, error) {
	env := envelope{
		Version:        envelopeVersion,
		State:          p.state,
		Compression:    p.Compression(),
		AssociatedData: p.associatedData,
		Nonce:          p.nonce,
		Payload:        p.payload,
		Checksum:       checksum(p.payload),
	}
	data, err := encMode.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode packet envelope: %w", err)
	}
	return data, nil
}

// UnmarshalBinary replaces p with the packet encoded in data. The random
// source of p is kept.
func (p *Packet) UnmarshalBinary(data []byte) error {
	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrInvalidEnvelope, err)
	}

	if env.Version != envelopeVersion {
		return fmt.Errorf("%w: unsupported version %d", kerrors.ErrInvalidEnvelope, env.Version)
	}
	if !env.State.valid() {
		return fmt.Errorf("%w: invalid state %d", kerrors.ErrInvalidEnvelope, env.State)
	}

	codec := CompressionZstd
	switch {
	case env.State.compressed() && env.Compression != CompressionZstd && env.Compression != CompressionLZ4:
		return fmt.Errorf("%w: %s packet with compression %s", kerrors.ErrInvalidEnvelope, env.State, env.Compression)
	case env.State.compressed():
		codec = env.Compression
	case env.Compression != CompressionNone:
		return fmt.Errorf("%w: %s packet with compression %s", kerrors.ErrInvalidEnvelope, env.State, env.Compression)
	}

	switch {
	case !env.State.encrypted() && len(env.Nonce) != 0:
		return fmt.Errorf("%w: %s packet carries a nonce", kerrors.ErrInvalidEnvelope, env.State)
	case len(env.Nonce) != 0 && len(env.Nonce) != secrets.NonceSize:
		return fmt.Errorf("%w: nonce is %d bytes, expected %d", kerrors.ErrInvalidEnvelope, len(env.Nonce), secrets.NonceSize)
	}

	if !bytes.Equal(env.Checksum, checksum(env.Payload)) {
		return fmt.Errorf("%w: payload checksum mismatch", kerrors.ErrInvalidEnvelope)
	}

	random := p.random
	if random == nil {
		random = rand.Reader
	}
	*p = Packet{
		payload:        env.Payload,
		state:          env.State,
		codec:          codec,
		associatedData: env.AssociatedData,
		random:         random,
	}
	if p.payload == nil {
		p.payload = []byte{}
	}
	if p.associatedData == nil {
		p.associatedData = []byte{}
	}
	if len(env.Nonce) != 0 {
		p.nonce = env.Nonce
	}
	return nil
}

// Unmarshal decodes a packet envelope into a new Packet.
func Unmarshal(data []byte, opts ...Option) (*Packet, error) {
	p := New(nil, opts...)
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return p, nil
}
