// Package audit records tynker operations in a project-level log.
//
// Pack, unpack, key generation and project initialization each append one
// JSON object per line to:
//
//	.tynker/audit.jsonl
//
// Each entry carries a UTC timestamp with microseconds, the user's name and
// UUID, the operation name, and operation details such as the archive ID,
// scheme, file count and the SHA-256 of the bundle payload.
//
// Logging is best-effort: a failed write never fails the operation.
// ReadEntries skips malformed lines so a torn final write does not hide
// earlier history.
package audit
