package workflows

import (
	"context"
	"encoding/hex"
	"os"
	"time"

	"github.com/tynkerbase/tynkerbase/internal/archive"
	"github.com/tynkerbase/tynkerbase/internal/packet"
)

// InspectResult describes an archive without decrypting it.
type InspectResult struct {
	ArchivePath   string
	ArchiveID     string
	Version       uint8
	Scheme        archive.Scheme
	CreatedAt     time.Time
	Salt          string
	KeyDerivation archive.KeyDerivation

	// Fingerprint is the hex recipient fingerprint, empty for key and
	// passphrase archives.
	Fingerprint string

	// State and Compression describe the data packet.
	State       packet.State
	Compression packet.Compression

	ArchiveSize int
	DataSize    int
}

// Inspect reads and validates an archive's header.
func Inspect(ctx context.Context, archivePath string) (*InspectResult, error) {
	a, err := archive.ReadFile(archivePath)
	if err != nil {
		return nil, err
	}
	data, err := packet.Unmarshal(a.Data)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{
		ArchivePath:   archivePath,
		ArchiveID:     a.ID.String(),
		Version:       a.Version,
		Scheme:        a.Scheme,
		CreatedAt:     time.Unix(a.CreatedAt, 0).UTC(),
		Salt:          a.Salt,
		KeyDerivation: a.KeyDerivation,
		Fingerprint:   hex.EncodeToString(a.Fingerprint),
		State:         data.State(),
		Compression:   data.Compression(),
		DataSize:      len(data.Payload()),
	}
	if info, err := os.Stat(archivePath); err == nil {
		result.ArchiveSize = int(info.Size())
	}
	return result, nil
}
