// Package utils provides shared helpers for the tynker CLI and workflows.
//
// # Filesystem Utilities
//
//   - FindProjectRoot: walks up from a directory to the nearest .tynker
//   - GetProjectName: the directory name of a project root
//
// # System Utilities
//
//   - GetUsername, GetHostname
//   - SanitizeName: normalizes project names for use in file names
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - FormatBytes: formats a byte count with a binary unit
//
// # Terminal Utilities
//
//   - ReadSecret: reads a passphrase from the terminal without echo, or
//     the first line of piped stdin
//   - IsTerminal: checks whether stdin is a terminal
package utils
