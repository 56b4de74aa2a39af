package packet

import (
	"crypto/rsa"
	"fmt"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/secrets"
)

// EncryptAsymmetric encrypts the payload with publicKey in k-11 byte blocks.
// It is meant for small payloads such as wrapped keys.
func (p *Packet) EncryptAsymmetric(publicKey *rsa.PublicKey) error {
	if p.state.encrypted() {
		return kerrors.ErrAlreadyEncrypted
	}

	ciphertext, err := secrets.EncryptWithPublicKey(p.random, p.payload, publicKey)
	if err != nil {
		return err
	}

	p.payload = ciphertext
	p.state = p.state.sealed()
	return nil
}

// DecryptAsymmetric reverses EncryptAsymmetric.
func (p *Packet) DecryptAsymmetric(privateKey *rsa.PrivateKey) error {
	if !p.state.encrypted() {
		return kerrors.ErrNotEncrypted
	}
	if p.nonce != nil {
		return fmt.Errorf("%w: packet was sealed with the symmetric cipher", kerrors.ErrInvalidState)
	}

	plain, err := secrets.DecryptWithPrivateKey(p.payload, privateKey)
	if err != nil {
		return err
	}

	p.payload = plain
	p.state = p.state.opened()
	return nil
}
