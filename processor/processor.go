// Package processor runs one generation pass: gate, classify, emit, write.
//
// A pass is single-threaded and deterministic. Function symbols are processed
// in the given order, then class symbols; inside a class the constructor comes
// first, then member functions, then nested classes. The processor never
// retries: deferred symbols are returned to the caller, and the first sink
// failure ends the pass.
package processor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/namedargs/classify"
	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/logger"
	"github.com/teranos/namedargs/sink"
)

// Result summarizes a pass.
type Result struct {
	// Written are the keys of the units handed to the sink, in order.
	Written []emit.Key
	// Skips are declarations the classifier found ineligible.
	Skips []classify.Skip
	// Ignored counts callables without parameters or public visibility.
	Ignored int
	// Deferred are symbols the gate handed back for a later pass.
	Deferred decl.Symbols
	Duration time.Duration
}

// Processor drives a pass over collected symbols.
type Processor struct {
	sink   sink.Sink
	gate   Gate
	logger *zap.SugaredLogger
}

// Option configures a Processor.
type Option func(*Processor)

// WithGate replaces the readiness gate. The default is ResolvedGate.
func WithGate(g Gate) Option {
	return func(p *Processor) { p.gate = g }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Processor) { p.logger = l }
}

// New creates a processor writing to s.
func New(s sink.Sink, opts ...Option) *Processor {
	p := &Processor{sink: s, gate: ResolvedGate}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.OrNop(p.logger)
	return p
}

// Run processes symbols. On error the returned Result describes the work done
// before the failure.
func (p *Processor) Run(ctx context.Context, symbols decl.Symbols) (*Result, error) {
	start := time.Now()
	res := &Result{}

	ready, deferred := p.gate(symbols)
	res.Deferred = deferred
	for _, fn := range deferred.Functions {
		p.logger.Infow("Deferring declaration with unresolved types", logger.FieldSymbol, fn.QualifiedName())
	}
	for _, cls := range deferred.Classes {
		p.logger.Infow("Deferring declaration with unresolved types", logger.FieldSymbol, cls.QualifiedName())
	}

	classified := classify.Symbols(ready)
	res.Skips = classified.Skips
	for _, s := range classified.Skips {
		p.logger.Debugw("Skipping declaration",
			logger.FieldSymbol, s.Symbol,
			logger.FieldReason, string(s.Reason))
	}

	for _, c := range classified.Callables {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		unit, err := emit.Emit(c)
		if err != nil {
			res.Duration = time.Since(start)
			return res, errors.Wrapf(err, "emit %s", c.Source().QualifiedName())
		}
		if unit == nil {
			res.Ignored++
			p.logger.Debugw("No parameters or not public, nothing to generate",
				logger.FieldSymbol, c.Source().QualifiedName())
			continue
		}

		if err := p.sink.Write(ctx, unit); err != nil {
			res.Duration = time.Since(start)
			return res, errors.Wrapf(err, "write %s", unit.Key)
		}
		res.Written = append(res.Written, unit.Key)
		p.logger.Debugw("Generated unit",
			logger.FieldCarrier, unit.Carrier.Name,
			logger.FieldWrapper, unit.Wrapper.Name,
			logger.FieldPackage, unit.Key.Package,
			logger.FieldKind, unit.Wrapper.Call.Kind.String())
	}

	res.Duration = time.Since(start)
	p.logger.Infow("Generation pass complete",
		logger.FieldCount, len(res.Written),
		"skipped", len(res.Skips),
		"ignored", res.Ignored,
		"deferred", deferred.Len(),
		logger.FieldDurationMS, res.Duration.Milliseconds())
	return res, nil
}
