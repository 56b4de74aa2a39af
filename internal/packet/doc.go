// Package packet implements the secure packet: a byte payload that moves
// through compression and encryption stages under a strict state machine.
//
// # States
//
// A packet is in exactly one of four states:
//
//	StatePlain               -> Compress -> StateCompressed
//	StatePlain               -> Encrypt  -> StateEncrypted
//	StateCompressed          -> Encrypt  -> StateEncryptedCompressed
//	StateEncrypted           -> Decrypt  -> StatePlain
//	StateEncryptedCompressed -> Decrypt  -> StateCompressed
//	StateCompressed          -> Decompress -> StatePlain
//
// Any other transition returns a sentinel error from internal/errors and
// leaves the packet untouched. The usual pipeline is
// New -> Compress -> EncryptSymmetric on the way out, and
// DecryptSymmetric -> Decompress on the way back.
//
// # Ciphers
//
// EncryptSymmetric seals the payload with AES-256-GCM under a fresh
// 12-byte nonce, which the packet keeps until a successful decrypt.
// EncryptAsymmetric encrypts the payload block by block with RSA. It
// carries no nonce and does not authenticate the associated data.
//
// # Transport
//
// MarshalBinary and UnmarshalBinary encode a packet as a versioned CBOR
// envelope with a BLAKE3 checksum of the payload.
package packet
