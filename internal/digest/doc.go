// Package digest provides one-way hash helpers and the credential format
// used to derive symmetric keys from a secret and a public salt.
//
// Credentials and salts are self-identifying strings:
//
//	tyb_key_<128 lowercase hex characters>   (SHA-512 of the framed inputs)
//	tyb_salt_<64 characters from [0-9A-Za-z]>
//
// A credential is turned into a 32-byte symmetric key with KeyFromCredential,
// which runs HKDF-SHA256 over the decoded digest bytes. LegacyKeyFromCredential
// reproduces the older behaviour of using the first 32 hex characters as raw
// key bytes; it halves the effective key space and exists only so archives
// produced that way can still be opened.
package digest
