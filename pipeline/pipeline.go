// Package pipeline wires configuration, collectors, the processor, sinks and
// the ledger into a single generation pass.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/namedargs/am"
	"github.com/teranos/namedargs/collect/gosrc"
	"github.com/teranos/namedargs/collect/manifest"
	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/ledger"
	"github.com/teranos/namedargs/logger"
	"github.com/teranos/namedargs/processor"
	"github.com/teranos/namedargs/render"
	"github.com/teranos/namedargs/sink"
)

// Outcome is the result of a generation pass.
type Outcome struct {
	Result *processor.Result
	// Files are the written paths relative to the output root.
	Files []string
	// RunID is set when the pass was recorded in the ledger.
	RunID string
}

// Pipeline runs generation passes for one configuration.
type Pipeline struct {
	cfg    *am.Config
	store  *ledger.Store
	logger *zap.SugaredLogger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore records every pass in the ledger.
func WithStore(s *ledger.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New validates cfg and returns a Pipeline for it.
func New(cfg *am.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.OrNop(p.logger)
	return p, nil
}

// Collect loads the configured inputs.
func (p *Pipeline) Collect(ctx context.Context) (decl.Symbols, error) {
	inputs := p.cfg.Generate.Inputs
	if len(inputs) == 0 {
		return decl.Symbols{}, errors.WithHint(
			errors.New("no inputs to collect"),
			"pass inputs as arguments or set generate.inputs in namedargs.toml")
	}

	switch p.cfg.Generate.Source {
	case am.InputGo:
		return gosrc.New(
			gosrc.WithDirective(p.cfg.Generate.Directive),
			gosrc.WithLogger(p.logger.Named("gosrc")),
		).Load(ctx, inputs...)
	default:
		return manifest.New(manifest.WithLogger(p.logger.Named("manifest"))).Load(inputs...)
	}
}

// Generate collects the inputs and writes artifacts under root. Deferred
// symbols fail the pass unless generate.allow_deferred is set; the artifacts
// of ready symbols are written either way.
func (p *Pipeline) Generate(ctx context.Context, root string) (*Outcome, error) {
	generators, err := render.ForLanguages(p.cfg.Generate.Languages)
	if err != nil {
		return nil, err
	}
	files := sink.NewFiles(root, generators,
		sink.WithClean(p.cfg.Generate.Clean),
		sink.WithLogger(p.logger.Named("sink")))

	out := &Outcome{}
	var target sink.Sink = files
	if p.store != nil {
		run, err := p.store.StartRun(ctx, p.cfg.Generate.Source, p.cfg.Generate.Inputs, p.cfg.Generate.Languages)
		if err != nil {
			return nil, errors.Wrap(err, "start ledger run")
		}
		out.RunID = run.ID
		target = p.store.Sink(run.ID, files)
	}

	res, runErr := p.run(ctx, target)
	out.Result = res
	out.Files = files.Written()

	if p.store != nil {
		if err := p.store.FinishRun(ctx, out.RunID, res, runErr); err != nil {
			p.logger.Warnw("Failed to finish ledger run", logger.FieldRunID, out.RunID, logger.FieldError, err)
		}
	}
	if runErr != nil {
		return out, runErr
	}
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, target sink.Sink) (*processor.Result, error) {
	symbols, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}

	res, err := processor.New(target, processor.WithLogger(p.logger.Named("processor"))).Run(ctx, symbols)
	if err != nil {
		return res, err
	}

	if res.Deferred.Len() > 0 && !p.cfg.Generate.AllowDeferred {
		return res, errors.WithHint(
			errors.Wrapf(errors.ErrDeferred, "%d declarations reference unresolved types: %s",
				res.Deferred.Len(), strings.Join(Names(res.Deferred), ", ")),
			"fix the referenced types or set generate.allow_deferred to write the rest")
	}
	return res, nil
}

// WatchPaths returns the files or directories whose changes affect the
// generated output, with a filter for directory events.
func (p *Pipeline) WatchPaths(ctx context.Context) ([]string, func(string) bool, error) {
	if p.cfg.Generate.Source != am.InputGo {
		return p.cfg.Generate.Inputs, func(string) bool { return false }, nil
	}

	dirs, err := gosrc.New(gosrc.WithLogger(p.logger.Named("gosrc"))).Dirs(ctx, p.cfg.Generate.Inputs...)
	if err != nil {
		return nil, nil, err
	}
	isSource := func(path string) bool {
		return strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go")
	}
	return dirs, isSource, nil
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() *am.Config {
	return p.cfg
}

// Names returns the qualified names of the top-level symbols.
func Names(s decl.Symbols) []string {
	names := make([]string, 0, s.Len())
	for _, fn := range s.Functions {
		names = append(names, fn.QualifiedName())
	}
	for _, c := range s.Classes {
		names = append(names, c.QualifiedName())
	}
	return names
}

// Elapsed formats d for summaries.
func Elapsed(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

// OutputRoot returns the absolute output directory.
func (p *Pipeline) OutputRoot() (string, error) {
	root, err := filepath.Abs(p.cfg.Generate.Output)
	if err != nil {
		return "", errors.Wrapf(err, "resolve output %s", p.cfg.Generate.Output)
	}
	return root, nil
}
