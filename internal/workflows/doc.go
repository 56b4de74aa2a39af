// Package workflows provides high-level orchestration for tynker commands.
//
// Workflows coordinate multiple operations across packages (configs, bundle,
// archive, audit) to implement complete user-facing features. Each workflow
// handles a single command's business logic, independent of CLI concerns like
// flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading configuration (user and project)
//   - Resolving key material
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - InitProject: Creates the .tynker directory and project config
//   - GenerateKeys: Creates an RSA key pair or a symmetric key file
//   - Derive: Turns a secret and salt into a credential
//   - Pack: Bundles a directory and seals it into an archive
//   - Unpack: Opens an archive and restores its files
//   - Inspect: Reads an archive header without decrypting it
//   - Log: Reads and filters the project audit log
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Unpack(ctx, opts)
//	if errors.Is(err, kerrors.ErrAuthenticationFailure) {
//	    // wrong key or tampered archive
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Pack and Unpack check it between files.
package workflows
