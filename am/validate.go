package am

import (
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/render"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Generate.Source {
	case InputManifest, InputGo:
	default:
		return errors.WithHint(
			errors.Newf("generate.source must be %q or %q, got %q", InputManifest, InputGo, c.Generate.Source),
			"set generate.source in namedargs.toml or pass --source")
	}

	if len(c.Generate.Languages) == 0 {
		return errors.New("generate.languages cannot be empty")
	}
	if _, err := render.ForLanguages(c.Generate.Languages); err != nil {
		return errors.Wrap(err, "generate.languages")
	}

	if c.Generate.Output == "" {
		return errors.New("generate.output cannot be empty")
	}

	// The directive is only read from Go source
	if c.Generate.Source == InputGo && c.Generate.Directive == "" {
		return errors.New("generate.directive cannot be empty when generate.source is go")
	}

	if c.Ledger.Enabled && c.Ledger.Path == "" {
		return errors.New("ledger.path cannot be empty when enabled")
	}

	// 0 means use the default debounce, negative is invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return nil
}
