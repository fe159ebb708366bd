// Package diagnostics implements the backend's accumulate-and-continue error
// model: every pass keeps lowering/optimizing/encoding past a reported error
// so it can surface as many problems as possible in one run, and the
// process's exit code is the final diagnostic count — grounded on the
// teacher's internal/errors/errors.go (SentraError/SourceLocation shape) and
// wired to go.uber.org/multierr for accumulation instead of a hand-rolled
// slice-of-errors type.
package diagnostics

import (
	"fmt"

	"go.uber.org/multierr"
)

// Kind classifies a diagnostic, mirroring the distinct error kinds a
// class-based object language's backend reports (the teacher's ErrorType
// enum, specialized to this backend's own set of conditions).
type Kind string

const (
	KindSyntax            Kind = "SyntaxError"
	KindCompile           Kind = "CompileError"
	KindUnknownInterface   Kind = "UnknownInterface"
	KindMissingMethod      Kind = "ClassMissingMethod"
	KindMissingClassMethod Kind = "ClassMissingClassMethod"
	KindMissingClassVar    Kind = "ClassMissingClassVar"
	KindInterfaceMismatch  Kind = "InterfaceMismatch"
	KindContext            Kind = "ContextError"
	KindEncoding           Kind = "EncodingError"
)

// Location is a position in the source the tree was lowered from.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" && l.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Kind Kind
	Loc  Location
	Msg  string
}

func (d *Diagnostic) Error() string {
	if loc := d.Loc.String(); loc != "" {
		return fmt.Sprintf("%s: %s: %s", loc, d.Kind, d.Msg)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Msg)
}

// Sink accumulates diagnostics across an entire pass run without stopping
// it; the exit code of the CLI is Count() at the end.
type Sink struct {
	err error
}

// Report records a diagnostic and keeps going.
func (s *Sink) Report(kind Kind, loc Location, format string, args ...any) {
	s.err = multierr.Append(s.err, &Diagnostic{Kind: kind, Loc: loc, Msg: fmt.Sprintf(format, args...)})
}

// Errors returns every diagnostic reported so far, in report order.
func (s *Sink) Errors() []error {
	return multierr.Errors(s.err)
}

// Count returns the number of diagnostics reported; the CLI's exit code.
func (s *Sink) Count() int {
	return len(s.Errors())
}

// Err returns the accumulated multierror, or nil if nothing was reported.
func (s *Sink) Err() error {
	return s.err
}

// AssertionFailure is panicked (never returned as an error) for an internal
// invariant violation — a condition the backend's own passes should have
// made impossible, as opposed to a problem with the input. main recovers it
// once, prints it distinctly from the diagnostic count, and exits with a
// distinguished status.
type AssertionFailure struct {
	Msg string
}

func (a *AssertionFailure) Error() string {
	return "internal assertion failed: " + a.Msg
}

// Assert panics with an AssertionFailure if cond is false.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(&AssertionFailure{Msg: fmt.Sprintf(format, args...)})
	}
}
