// Package secrets provides the cryptographic primitives behind tynkerbase
// packets.
//
// # Encryption Architecture
//
// Packets are protected by a hybrid scheme:
//
//  1. A random 256-bit symmetric key encrypts the payload with AES-256-GCM
//  2. The recipient's RSA public key encrypts the symmetric key
//  3. The recipient decrypts the symmetric key with their private key, then the payload
//
// # Symmetric Cipher
//
// SealAEAD uses a caller-supplied 12-byte nonce and appends the 16-byte
// authentication tag to the ciphertext. Callers must never reuse a nonce
// under the same key; the packet package draws a fresh one from a secure
// random source on every encryption.
//
// # Asymmetric Cipher
//
// RSA PKCS#1 v1.5 only accepts inputs shorter than the modulus, so
// EncryptWithPublicKey splits plaintext into blocks of k-11 bytes and each
// block encrypts to exactly k bytes (245 and 256 for 2048-bit keys).
// DecryptWithPrivateKey rejects ciphertext whose length is not a multiple
// of k. This is far slower than the symmetric cipher and is meant for
// small payloads such as wrapped keys.
//
// # Key Management
//
// Key pairs are 2048-bit RSA. Public keys are exported as DER for
// out-of-band transfer; PEM files are written and read by SaveKeyPair,
// LoadPrivateKey and LoadPublicKey.
package secrets
