// Package errors provides typed error values for tynkerbase.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category, and KindOf maps any error back to one:
//
//   - State errors: an operation was attempted in the wrong packet state
//     (ErrAlreadyCompressed, ErrNotEncrypted, ErrMissingNonce, ...)
//   - Integrity errors: ciphertext did not authenticate or decrypt
//     (ErrAuthenticationFailure, ErrDecryptionFailure)
//   - Format errors: a buffer, stream or envelope is malformed
//     (ErrTruncatedBuffer, ErrInvalidText, ErrCorruptStream)
//   - Resource errors: filesystem access failed while loading or saving
//
// # Usage
//
// Format errors carry the offending field together with what was expected
// and what was found:
//
//	return &errors.FormatError{
//	    Field:    "content length",
//	    Expected: fmt.Sprintf("<= %d bytes", remaining),
//	    Found:    fmt.Sprintf("%d bytes", contentLen),
//	    Err:      errors.ErrTruncatedBuffer,
//	}
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrAuthenticationFailure) {
//	    // wrong key or tampered archive
//	}
package errors
