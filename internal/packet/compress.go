package packet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
)

// Compression identifies the algorithm a payload is compressed with.
// Values are stored in packet envelopes.
type Compression uint8

const (
	CompressionNone Compression = 0
	// CompressionZstd is zstd at its best-compression level with a 4 MiB window.
	CompressionZstd Compression = 1
	// CompressionLZ4 is an LZ4 frame at level 9.
	CompressionLZ4 Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses the String form of a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "zstd", "":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression algorithm: %q", name)
	}
}

const zstdWindowSize = 4 << 20

// zstd.Encoder and zstd.Decoder are safe for concurrent use with
// EncodeAll and DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithWindowSize(zstdWindowSize),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		panic("packet: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("packet: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses the payload as a single frame.
func (p *Packet) Compress() error {
	switch p.state {
	case StateCompressed:
		return kerrors.ErrAlreadyCompressed
	case StateEncrypted, StateEncryptedCompressed:
		return fmt.Errorf("%w: cannot compress a %s packet", kerrors.ErrInvalidState, p.state)
	}

	compressed, err := compress(p.codec, p.payload)
	if err != nil {
		return err
	}

	p.payload = compressed
	p.state = StateCompressed
	return nil
}

// Decompress reverses Compress.
func (p *Packet) Decompress() error {
	switch p.state {
	case StatePlain:
		return kerrors.ErrNotCompressed
	case StateEncrypted, StateEncryptedCompressed:
		return fmt.Errorf("%w: cannot decompress a %s packet", kerrors.ErrInvalidState, p.state)
	}

	plain, err := decompress(p.codec, p.payload)
	if err != nil {
		return err
	}

	p.payload = plain
	p.state = StatePlain
	return nil
}

func compress(codec Compression, data []byte) ([]byte, error) {
	switch codec {
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case CompressionLZ4:
		return compressLZ4(data)
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", codec)
	}
}

func decompress(codec Compression, data []byte) ([]byte, error) {
	// Both codecs emit a frame even for empty input.
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty %s stream", kerrors.ErrCorruptStream, codec)
	}

	switch codec {
	case CompressionZstd:
		plain, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", kerrors.ErrCorruptStream, err)
		}
		if plain == nil {
			plain = []byte{}
		}
		return plain, nil
	case CompressionLZ4:
		return decompressLZ4(data)
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", codec)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	plain, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", kerrors.ErrCorruptStream, err)
	}
	return plain, nil
}
