// Package configs manages user and project configuration for tynker.
//
// Configuration is stored in TOML at two levels:
//
//   - User config: $XDG_CONFIG_HOME/tynkerbase/config.toml
//   - Project config: <project>/.tynker/config.toml
//
// # User Configuration
//
// The user config stores the user's identity (name and a UUID generated on
// first use) and defaults applied to every project: extra ignore rules, the
// sealing scheme, the compression algorithm and the key derivation used
// for passphrase archives.
//
// # Project Configuration
//
// The project config stores the project identity (name and UUID) and the
// bundle settings: ignore rules, and optional scheme and compression
// overrides.
//
// # Settings
//
// UserTynkerSettings holds the user's config and key directories and is
// initialized at startup. Keys live under $XDG_DATA_HOME/tynkerbase/keys.
//
// Call InitProjectSettings before accessing ProjectTynkerSettings. It walks
// up the directory tree to find the nearest .tynker directory.
package configs
