// Package ui formats text for tynker's terminal output.
//
// Formatters are semantic: pick the one matching the content, not the color.
//
//	ui.Code.Sprint("tynker bundle pack")     // commands
//	ui.Path.Sprint(".tynker/config.toml")    // file paths
//	ui.Highlight.Sprint("hybrid")            // user values such as schemes or IDs
//	ui.Muted.Sprint("4.2 KiB")               // secondary detail
//
// Status lines prefix a message with a colored marker:
//
//	ui.Done("Packed %d files", n)     // ✓ Packed 3 files
//	ui.Failed("Unpack failed")        // ✗ Unpack failed
//	ui.Hint("Run %s", cmd)            // → Run ...
//	ui.Caution("Large payload")       // ⚠ Large payload
//
// Colors are disabled when NO_COLOR is set or the terminal cannot show
// them. Code, Highlight and Muted then fall back to `backticks`,
// 'quotes' and (parentheses).
package ui
