// Package depo holds application-wide constants shared across the
// deposition engine, its storage layer, and the CLI.
package depo

const (
	// DefaultAppName is the canonical application name, used for config
	// discovery and user-facing identifiers.
	DefaultAppName = "deposition"

	// DefaultConfigPath is searched for a config file when no explicit
	// path is given.
	DefaultConfigPath = "$HOME/.config/deposition"

	// DefaultCacheDir backs answer caching and other scratch state.
	DefaultCacheDir = "$HOME/.cache/deposition"

	// DefaultDatabaseDir is where embedded database files are created.
	DefaultDatabaseDir = "./data"

	// DefaultDatabaseDSN is the embedded libSQL DSN used when none is
	// configured.
	DefaultDatabaseDSN = "file:./data/deposition.db"

	// DefaultDatabaseType selects the embedded libSQL driver.
	DefaultDatabaseType = "libsql"

	// DefaultPromptDir is searched for prompt template overrides. When
	// the directory does not exist the compiled-in templates are used.
	DefaultPromptDir = "./prompts"
)
