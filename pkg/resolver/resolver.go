// Package resolver finds exactly one live element from a ranked list of
// candidate locators, and falls back to a suggested locator when every
// candidate misses.
//
// A Resolver holds no per-call state and may be shared by any number of
// workers, each resolving against its own page.
package resolver

import (
	"context"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/locator"
	"github.com/entrhq/smartfind/pkg/logging"
	"github.com/entrhq/smartfind/pkg/report"
	"github.com/entrhq/smartfind/pkg/suggest"
)

// Suggester proposes a replacement locator for a failed one.
type Suggester interface {
	// Validate reports missing configuration without making a request.
	Validate() error
	Suggest(ctx context.Context, failedLocator, markup string) (string, error)
}

// SuggestionLog records every suggestion obtained.
type SuggestionLog interface {
	Record(failedLocator, suggestedLocator string) error
}

// Resolution is a successfully resolved element.
type Resolution struct {
	Element driver.Element
	// Locator is the locator that matched.
	Locator locator.Locator
	// Healed is set when Locator came from the suggestion service.
	Healed bool
}

// Resolver resolves candidate lists against a page.
type Resolver struct {
	suggester Suggester
	log       SuggestionLog
	sink      report.Sink
	logger    *logging.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSuggester enables healing through s. Without it, exhausting the
// candidates ends in a *NotFoundError.
func WithSuggester(s Suggester) Option {
	return func(r *Resolver) {
		r.suggester = s
	}
}

// WithSuggestionLog sets where obtained suggestions are recorded.
func WithSuggestionLog(l SuggestionLog) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// WithReportSink sets the sink that receives suggestion log write failures.
func WithReportSink(s report.Sink) Option {
	return func(r *Resolver) {
		r.sink = s
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Discard("resolver")
	}
	if r.sink == nil {
		r.sink = report.NopSink{}
	}
	return r
}

// Single builds a one-locator candidate list.
func Single(strategy locator.Strategy, value string) []locator.Locator {
	return []locator.Locator{locator.Of(strategy, value)}
}

type probeResult int

const (
	found probeResult = iota
	missed
	failed
)

func probe(ctx context.Context, page driver.Page, loc locator.Locator) (driver.Element, probeResult, error) {
	el, err := page.FindElement(ctx, loc)
	switch {
	case err == nil && el != nil:
		return el, found, nil
	case err == nil || driver.IsNotFound(err):
		return nil, missed, nil
	default:
		return nil, failed, err
	}
}

// Resolve returns the element matched by the first candidate that matches,
// probing candidates in order and never beyond the first match.
//
// When every candidate misses and a suggester is configured, the page markup
// and the first candidate's rendered form are sent to the suggester, the
// answer is recorded in the suggestion log, parsed, and tried once.
//
// Errors are one of *NotFoundError, *DriverError, *ConfigurationError,
// *SuggestionUnavailableError, *SuggestionUnparsableError, or
// ErrNoCandidates; KindOf classifies them.
func (r *Resolver) Resolve(ctx context.Context, page driver.Page, candidates []locator.Locator) (*Resolution, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	for _, loc := range candidates {
		el, result, err := probe(ctx, page, loc)
		switch result {
		case found:
			r.logger.Debugf("resolved %s", loc)
			return &Resolution{Element: el, Locator: loc}, nil
		case failed:
			return nil, &DriverError{Op: "find " + loc.String(), Err: err}
		}
		r.logger.Debugf("no match for %s", loc)
	}

	attempted := append([]locator.Locator(nil), candidates...)
	failedKey := candidates[0].String()

	if r.suggester == nil {
		return nil, &NotFoundError{Failed: failedKey, Attempted: attempted, Reason: "every candidate missed and healing is disabled"}
	}

	markup, err := page.Markup(ctx)
	if err != nil {
		return nil, &DriverError{Op: "capture markup", Err: err}
	}

	if err := r.suggester.Validate(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	raw, err := r.suggester.Suggest(ctx, failedKey, markup)
	if err != nil {
		r.logger.Warnf("suggestion request for %s failed: %v", failedKey, err)
		return nil, &SuggestionUnavailableError{Failed: failedKey, Err: err}
	}

	r.logger.Infof("suggestion for [%s]: %s", failedKey, raw)
	r.record(failedKey, raw)

	suggested, err := suggest.ParseSuggestion(raw)
	if err != nil {
		return nil, &SuggestionUnparsableError{Failed: failedKey, Raw: raw, Err: err}
	}

	attempted = append(attempted, suggested)
	el, result, err := probe(ctx, page, suggested)
	switch result {
	case found:
		r.logger.Infof("healed %s with %s", failedKey, suggested)
		return &Resolution{Element: el, Locator: suggested, Healed: true}, nil
	case failed:
		return nil, &DriverError{Op: "find " + suggested.String(), Err: err}
	default:
		return nil, &NotFoundError{Failed: failedKey, Attempted: attempted, Reason: "suggested locator " + suggested.String() + " matched nothing"}
	}
}

// record appends to the suggestion log. A failed write is reported but never
// changes the outcome of the resolution.
func (r *Resolver) record(failedKey, suggestion string) {
	if r.log == nil {
		return
	}
	if err := r.log.Record(failedKey, suggestion); err != nil {
		r.logger.Errorf("failed to record suggestion for %s: %v", failedKey, err)
		report.AttachText(r.sink, "suggestion log error", err.Error())
	}
}
