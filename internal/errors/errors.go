// Package errors collects the sentinel errors this filter can return plus
// small wrapping helpers, mirroring how configuration and runtime failures
// are reported across the rest of this module.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch is not itself returned to callers; it documents the
	// permanent-NoMatch state a VM settles into once a pattern is proven
	// absent from the rest of a stream.
	ErrNoMatch = errors.New("replace_filter: pattern not present")

	// ErrLookBehind is returned when the regex adapter reports a match
	// ending before bytes already handed to downstream — the one semantic
	// runtime invariant violation unique to this filter.
	ErrLookBehind = errors.New("replace_filter: match ends before already-emitted data")

	// ErrVMFailure wraps an unexpected adapter-side failure (KindError).
	ErrVMFailure = errors.New("replace_filter: regex VM failure")

	// ErrDuplicateDirective is reported by config.Setup when a config file
	// declares replace_filter more than once at its top level.
	ErrDuplicateDirective = errors.New("replace_filter: duplicate directive at this scope")

	// ErrUnknownFlag is returned by regex.ParseFlags for an unrecognised
	// flag letter.
	ErrUnknownFlag = errors.New("replace_filter: unknown flag")

	// ErrPoolExhausted is returned when a bounded buffer pool cannot
	// satisfy a request within its configured cap.
	ErrPoolExhausted = errors.New("replace_filter: buffer pool exhausted")

	// ErrInvalidConfig wraps a config file that cannot be parsed as YAML or
	// JSON, surfaced from config.Setup.
	ErrInvalidConfig = errors.New("replace_filter: invalid configuration")

	// ErrEmptyPattern is returned when a replace_filter directive omits
	// its pattern argument.
	ErrEmptyPattern = errors.New("replace_filter: empty pattern")
)

// Wrap wraps an error with additional context. Returns nil if err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with formatted context. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether err matches target anywhere in its chain.
func Is(err, target error) bool { return errors.Is(err, target) }

// As attempts to extract a specific error type from err's chain.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// MultiError aggregates multiple independent failures, used at
// configuration time where several bad directives should all be reported
// together instead of stopping at the first one.
type MultiError struct {
	errs []error
}

// Add appends err to the set if non-nil.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errs = append(m.errs, err)
	}
}

// HasErrors reports whether any error has been added.
func (m *MultiError) HasErrors() bool { return len(m.errs) > 0 }

// Errors returns every collected error, in the order added.
func (m *MultiError) Errors() []error { return m.errs }

// Unwrap exposes the collected errors to errors.Is/errors.As, so a sentinel
// buried in one of several aggregated failures is still found.
func (m *MultiError) Unwrap() []error { return m.errs }

// Error implements the error interface.
func (m *MultiError) Error() string {
	switch len(m.errs) {
	case 0:
		return ""
	case 1:
		return m.errs[0].Error()
	default:
		return fmt.Sprintf("%d configuration errors: %v", len(m.errs), m.errs)
	}
}

// ErrorOrNil returns nil if no errors were added, otherwise returns m.
func (m *MultiError) ErrorOrNil() error {
	if m.HasErrors() {
		return m
	}
	return nil
}
