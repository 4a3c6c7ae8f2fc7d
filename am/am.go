// Package am loads the namedargs configuration ("am" as in "I am configured as").
//
// Values merge in precedence order: built-in defaults, ~/.namedargs/namedargs.toml,
// the nearest namedargs.toml found walking up from the working directory, then
// NAMEDARGS_* environment variables.
package am

import "time"

const (
	// ConfigFileName is the project and user configuration file name.
	ConfigFileName = "namedargs.toml"

	// UserDirName is the per-user configuration directory under $HOME.
	UserDirName = ".namedargs"

	// EnvPrefix prefixes every environment override (NAMEDARGS_GENERATE_OUTPUT).
	EnvPrefix = "NAMEDARGS"

	// DefaultDirPermissions is used for directories created by namedargs.
	DefaultDirPermissions = 0750
)

// Input sources accepted by generate.source.
const (
	InputManifest = "manifest"
	InputGo       = "go"
)

// Config represents the namedargs configuration
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" toml:"generate" yaml:"generate" json:"generate"`
	Ledger   LedgerConfig   `mapstructure:"ledger" toml:"ledger" yaml:"ledger" json:"ledger"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch" yaml:"watch" json:"watch"`
}

// GenerateConfig configures what is collected and where artifacts are written
type GenerateConfig struct {
	// Source is manifest or go.
	Source string `mapstructure:"source" toml:"source" yaml:"source" json:"source"`
	// Inputs are manifest files or Go package patterns.
	Inputs    []string `mapstructure:"inputs" toml:"inputs" yaml:"inputs" json:"inputs"`
	Languages []string `mapstructure:"languages" toml:"languages" yaml:"languages" json:"languages"`
	Output    string   `mapstructure:"output" toml:"output" yaml:"output" json:"output"`
	// Directive marks exported declarations in Go source.
	Directive string `mapstructure:"directive" toml:"directive" yaml:"directive" json:"directive"`
	// Clean removes the output directory before writing.
	Clean bool `mapstructure:"clean" toml:"clean" yaml:"clean" json:"clean"`
	// AllowDeferred lets a run succeed with unresolved symbols left over.
	AllowDeferred bool `mapstructure:"allow_deferred" toml:"allow_deferred" yaml:"allow_deferred" json:"allow_deferred"`
}

// LedgerConfig configures the SQLite generation ledger
type LedgerConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" toml:"path" yaml:"path" json:"path"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
}

// Debounce returns the debounce period, falling back to the default when unset.
func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(w.DebounceMS) * time.Millisecond
}
