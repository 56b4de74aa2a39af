package packet

import (
	"crypto/rand"
	"fmt"
	"io"
	"unsafe"
)

// DefaultAssociatedData is bound to every symmetric encryption unless
// overridden with WithAssociatedData.
var DefaultAssociatedData = []byte("tynkerbase.packet.v1")

// State is the stage a packet's payload is in.
type State uint8

const (
	StatePlain State = iota
	StateCompressed
	// StateEncrypted holds ciphertext of a plain payload.
	StateEncrypted
	// StateEncryptedCompressed holds ciphertext of a compressed payload.
	StateEncryptedCompressed
)

func (s State) String() string {
	switch s {
	case StatePlain:
		return "plain"
	case StateCompressed:
		return "compressed"
	case StateEncrypted:
		return "encrypted"
	case StateEncryptedCompressed:
		return "encrypted+compressed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

func (s State) valid() bool {
	return s <= StateEncryptedCompressed
}

func (s State) encrypted() bool {
	return s == StateEncrypted || s == StateEncryptedCompressed
}

// compressed reports whether the payload, once decrypted, is compressed.
func (s State) compressed() bool {
	return s == StateCompressed || s == StateEncryptedCompressed
}

func (s State) sealed() State {
	if s == StateCompressed {
		return StateEncryptedCompressed
	}
	return StateEncrypted
}

func (s State) opened() State {
	if s == StateEncryptedCompressed {
		return StateCompressed
	}
	return StatePlain
}

// Packet is a payload plus the record of what has been done to it.
// A Packet is not safe for concurrent use.
type Packet struct {
	payload        []byte
	state          State
	codec          Compression
	associatedData []byte
	nonce          []byte
	random         io.Reader
}

// Option configures a Packet at construction.
type Option func(*Packet)

// WithAssociatedData replaces the default associated data.
func WithAssociatedData(associatedData []byte) Option {
	return func(p *Packet) {
		p.associatedData = append([]byte(nil), associatedData...)
	}
}

// WithRandom sets the source for nonces and RSA padding.
func WithRandom(random io.Reader) Option {
	return func(p *Packet) {
		p.random = random
	}
}

// WithCompression selects the algorithm Compress uses.
func WithCompression(codec Compression) Option {
	return func(p *Packet) {
		p.codec = codec
	}
}

// New wraps payload in a plain packet. The packet takes ownership of payload.
func New(payload []byte, opts ...Option) *Packet {
	p := &Packet{
		payload:        payload,
		state:          StatePlain,
		codec:          CompressionZstd,
		associatedData: DefaultAssociatedData,
		random:         rand.Reader,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.payload == nil {
		p.payload = []byte{}
	}
	return p
}

// Payload returns the current payload. The slice is owned by the packet.
func (p *Packet) Payload() []byte {
	return p.payload
}

func (p *Packet) State() State {
	return p.state
}

// Compression reports the algorithm the payload is compressed with, or
// CompressionNone.
func (p *Packet) Compression() Compression {
	if p.state.compressed() {
		return p.codec
	}
	return CompressionNone
}

func (p *Packet) IsEncrypted() bool {
	return p.state.encrypted()
}

// Nonce returns the symmetric nonce, or nil when none is held.
func (p *Packet) Nonce() []byte {
	return p.nonce
}

func (p *Packet) AssociatedData() []byte {
	return p.associatedData
}

// MemSize approximates the bytes held by the packet, including buffers.
func (p *Packet) MemSize() int {
	return int(unsafe.Sizeof(*p)) + cap(p.payload) + cap(p.associatedData) + cap(p.nonce)
}
