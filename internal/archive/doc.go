// Package archive stores a sealed bundle in a single file.
//
// An archive is a versioned CBOR record holding a data packet and, depending
// on the scheme, what the reader needs to recover its key:
//
//	symmetric   data sealed with a raw 32-byte key the reader already has
//	passphrase  data sealed with a key derived from a passphrase and the stored salt
//	asymmetric  data encrypted directly with the recipient's RSA public key
//	hybrid      data sealed with a random key, which is RSA-wrapped for the recipient
//
// The data packet's associated data includes the archive ID, so a data
// packet moved into a different archive fails authentication.
package archive
