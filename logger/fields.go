package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across namedargs.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldComponent = "component"
	FieldOperation = "operation"

	// Declarations
	FieldPackage  = "package"
	FieldSymbol   = "symbol"
	FieldKind     = "kind"
	FieldReason   = "reason"
	FieldCarrier  = "carrier"
	FieldWrapper  = "wrapper"
	FieldLanguage = "language"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount      = "count"
	FieldTotalCount = "total_count"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	p := processor.New(sink, logger.ComponentLogger("processor"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
