package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teranos/namedargs/am"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/ledger"
	"github.com/teranos/namedargs/logger"
)

// generateFlags are shared by generate, check and watch.
type generateFlags struct {
	config        string
	source        string
	languages     []string
	output        string
	clean         bool
	allowDeferred bool
	ledger        bool
}

func addConfigFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config", "c", "", "Config file (default: nearest namedargs.toml, then ~/.namedargs/namedargs.toml)")
}

func addGenerateFlags(cmd *cobra.Command, f *generateFlags) {
	addConfigFlag(cmd, &f.config)
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Input source: manifest or go")
	cmd.Flags().StringSliceVarP(&f.languages, "lang", "l", nil, "Languages to generate (kotlin, typescript, go)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output root directory")
	cmd.Flags().BoolVar(&f.clean, "clean", false, "Remove language directories under the output root first")
	cmd.Flags().BoolVar(&f.allowDeferred, "allow-deferred", false, "Succeed even when declarations reference unresolved types")
	cmd.Flags().BoolVar(&f.ledger, "ledger", false, "Record the run in the generation ledger")
}

// loadConfig loads the configuration file selected by path, or the merged
// configuration when path is empty. The result is a copy callers may modify.
func loadConfig(path string) (*am.Config, error) {
	var (
		cfg *am.Config
		err error
	)
	if path != "" {
		cfg, err = am.LoadFromFile(path)
	} else {
		cfg, err = am.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	c := *cfg
	c.Generate.Inputs = append([]string(nil), cfg.Generate.Inputs...)
	c.Generate.Languages = append([]string(nil), cfg.Generate.Languages...)
	return &c, nil
}

// generateConfig loads the configuration and applies explicitly set flags and
// positional inputs on top.
func generateConfig(cmd *cobra.Command, f *generateFlags, args []string) (*am.Config, error) {
	cfg, err := loadConfig(f.config)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Generate.Source = f.source
	}
	if flags.Changed("lang") {
		cfg.Generate.Languages = f.languages
	}
	if flags.Changed("output") {
		cfg.Generate.Output = f.output
	}
	if flags.Changed("clean") {
		cfg.Generate.Clean = f.clean
	}
	if flags.Changed("allow-deferred") {
		cfg.Generate.AllowDeferred = f.allowDeferred
	}
	if flags.Changed("ledger") {
		cfg.Ledger.Enabled = f.ledger
	}
	if len(args) > 0 {
		cfg.Generate.Inputs = args
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// openStore opens the ledger when it is enabled. The returned close function
// is never nil.
func openStore(cfg *am.Config) (*ledger.Store, func(), error) {
	if !cfg.Ledger.Enabled {
		return nil, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Ledger.Path), am.DefaultDirPermissions); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create ledger directory for %s", cfg.Ledger.Path)
	}

	log := logger.ComponentLogger("ledger")
	db, err := ledger.OpenWithMigrations(cfg.Ledger.Path, log)
	if err != nil {
		return nil, nil, err
	}
	return ledger.NewStore(db, log), func() { db.Close() }, nil
}
