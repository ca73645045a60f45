// Package errs defines the error kinds from spec.md §7: ParseError,
// PlanError and SourceError are fatal-to-their-scope errors returned up
// to the shell; EvalDiagnostic and ChannelClosed never surface as Go
// errors (diagnostics are logged, channel closure is an ordinary signal).
package errs

import errorkit "gopkg.in/src-d/go-errors.v1"

// ParseKind is raised when the parser cannot produce a Statement. Offset
// is the byte offset of the farthest point reached.
var ParseKind = errorkit.NewKind("parse error at offset %d: expected %s, got %q")

// PlanKind is raised when a Query cannot be lowered to a Plan: an
// unresolved relation or a duplicate projection key.
var PlanKind = errorkit.NewKind("%s")

// SourceKind wraps a failure from the external stream service. It
// terminates the owning StreamScan task; it does not abort the process.
var SourceKind = errorkit.NewKind("source error: %s")

// NewParseError builds a ParseKind error for the given offset, expected
// token class, and actual input prefix.
func NewParseError(offset int, expected, actual string) error {
	return ParseKind.New(offset, expected, actual)
}

// NewPlanError builds a PlanKind error with a literal message, matching
// the diagnostics spec.md §4.3 names verbatim (e.g. "unrecognized
// relation <ident>").
func NewPlanError(msg string) error {
	return PlanKind.New(msg)
}

// NewSourceError wraps an external stream-service failure.
func NewSourceError(msg string) error {
	return SourceKind.New(msg)
}
