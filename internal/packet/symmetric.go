package packet

import (
	"fmt"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/secrets"
)

// EncryptSymmetric seals the payload with AES-256-GCM under a fresh nonce.
// key must be 32 bytes.
func (p *Packet) EncryptSymmetric(key []byte) error {
	if p.state.encrypted() {
		return kerrors.ErrAlreadyEncrypted
	}
	if len(key) != secrets.SymmetricKeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d bytes", kerrors.ErrInvalidKeyLength, secrets.SymmetricKeySize, len(key))
	}

	nonce, err := secrets.NewNonce(p.random)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrEncryptionFailure, err)
	}

	sealed, err := secrets.SealAEAD(key, nonce, p.payload, p.associatedData)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrEncryptionFailure, err)
	}

	p.payload = sealed
	p.nonce = nonce
	p.state = p.state.sealed()
	return nil
}

// DecryptSymmetric verifies and opens a payload sealed by EncryptSymmetric.
// On success the nonce is cleared.
func (p *Packet) DecryptSymmetric(key []byte) error {
	if !p.state.encrypted() {
		return kerrors.ErrNotEncrypted
	}
	if p.nonce == nil {
		return kerrors.ErrMissingNonce
	}
	if len(key) != secrets.SymmetricKeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d bytes", kerrors.ErrInvalidKeyLength, secrets.SymmetricKeySize, len(key))
	}

	plain, err := secrets.OpenAEAD(key, p.nonce, p.payload, p.associatedData)
	if err != nil {
		return err
	}

	p.payload = plain
	p.nonce = nil
	p.state = p.state.opened()
	return nil
}
