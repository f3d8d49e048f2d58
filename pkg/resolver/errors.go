package resolver

import (
	"errors"
	"fmt"

	"github.com/entrhq/smartfind/pkg/locator"
)

// ErrNoCandidates is returned when Resolve is called with an empty candidate
// list. It is a programming error in the caller.
var ErrNoCandidates = errors.New("resolver: no candidate locators supplied")

// OutcomeKind classifies the result of a Resolve call.
type OutcomeKind int

const (
	// Unknown is any error the resolver did not produce.
	Unknown OutcomeKind = iota
	Resolved
	NotFound
	DriverFailure
	Misconfigured
	SuggestionUnavailable
	SuggestionUnparsable
	InvalidInput
)

func (k OutcomeKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case NotFound:
		return "not found"
	case DriverFailure:
		return "driver failure"
	case Misconfigured:
		return "configuration error"
	case SuggestionUnavailable:
		return "suggestion unavailable"
	case SuggestionUnparsable:
		return "suggestion unparsable"
	case InvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// KindOf maps the error returned by Resolve to its outcome kind. A nil error
// is Resolved.
func KindOf(err error) OutcomeKind {
	if err == nil {
		return Resolved
	}

	var (
		notFound    *NotFoundError
		driverErr   *DriverError
		configErr   *ConfigurationError
		unavailable *SuggestionUnavailableError
		unparsable  *SuggestionUnparsableError
	)
	switch {
	case errors.As(err, &notFound):
		return NotFound
	case errors.As(err, &driverErr):
		return DriverFailure
	case errors.As(err, &configErr):
		return Misconfigured
	case errors.As(err, &unavailable):
		return SuggestionUnavailable
	case errors.As(err, &unparsable):
		return SuggestionUnparsable
	case errors.Is(err, ErrNoCandidates):
		return InvalidInput
	default:
		return Unknown
	}
}

// NotFoundError reports that no locator, including a suggested one, matched.
type NotFoundError struct {
	// Failed is the rendered first candidate, the key healing was keyed on.
	Failed string
	// Attempted lists every locator probed, in order, including a
	// suggestion if one was tried.
	Attempted []locator.Locator
	Reason    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("element not found: %s (attempted %s): %s",
		e.Failed, locator.Join(e.Attempted), e.Reason)
}

// DriverError reports that the page itself failed while resolving. It is
// never retried.
type DriverError struct {
	Op  string
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver failure during %s: %v", e.Op, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports that healing could not run because the
// suggestion service is not configured. No request was made.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// SuggestionUnavailableError reports that the suggestion service failed.
type SuggestionUnavailableError struct {
	Failed string
	Err    error
}

func (e *SuggestionUnavailableError) Error() string {
	return fmt.Sprintf("suggestion unavailable for %s: %v", e.Failed, e.Err)
}

func (e *SuggestionUnavailableError) Unwrap() error {
	return e.Err
}

// SuggestionUnparsableError reports a suggestion that could not be turned
// into a locator.
type SuggestionUnparsableError struct {
	Failed string
	Raw    string
	Err    error
}

func (e *SuggestionUnparsableError) Error() string {
	return fmt.Sprintf("suggestion unparsable for %s: %q", e.Failed, e.Raw)
}

func (e *SuggestionUnparsableError) Unwrap() error {
	return e.Err
}
