package am

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/teranos/namedargs/collect/gosrc"
)

// DefaultDebounceMS is the watch debounce when watch.debounce_ms is unset.
const DefaultDebounceMS = 300

// DefaultDirective marks declarations exported by the Go source collector.
const DefaultDirective = gosrc.DefaultDirective

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Generation defaults
	v.SetDefault("generate.source", InputManifest)
	v.SetDefault("generate.inputs", []string{})
	v.SetDefault("generate.languages", []string{"kotlin"})
	v.SetDefault("generate.output", filepath.Join("build", "namedargs"))
	v.SetDefault("generate.directive", DefaultDirective)
	v.SetDefault("generate.clean", false)
	v.SetDefault("generate.allow_deferred", false)

	// Ledger defaults (opt-in)
	v.SetDefault("ledger.enabled", false)
	v.SetDefault("ledger.path", DefaultLedgerPath())

	// Watch defaults
	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
}

// BindEnvVars binds the settings most often overridden in CI to their
// environment variables. AutomaticEnv covers the rest once a key is known.
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("generate.output", EnvPrefix+"_GENERATE_OUTPUT")
	v.BindEnv("generate.allow_deferred", EnvPrefix+"_GENERATE_ALLOW_DEFERRED")
	v.BindEnv("ledger.enabled", EnvPrefix+"_LEDGER_ENABLED")
	v.BindEnv("ledger.path", EnvPrefix+"_LEDGER_PATH")
}

// UserDir returns ~/.namedargs, or "" when the home directory is unknown.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserDirName)
}

// DefaultLedgerPath returns ~/.namedargs/ledger.db, or ledger.db in the
// working directory when the home directory is unknown.
func DefaultLedgerPath() string {
	dir := UserDir()
	if dir == "" {
		return "ledger.db"
	}
	return filepath.Join(dir, "ledger.db")
}
