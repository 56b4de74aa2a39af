// Package logger provides leveled console logging for tynkerbase commands.
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always written to stderr.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Bundled %d files", count)
//
// Workflows build a Logger from their options; commands build one in their
// PersistentPreRun.
package logger
