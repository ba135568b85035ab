package prompt

import "time"

// ContextProvider is a named source of dynamic facts injected into the
// system prompt at assembly time.
type ContextProvider interface {
	// Title is the section heading the fact is rendered under.
	Title() string

	// Info returns the fact text. Implementations must be pure: no I/O, no
	// failure, and stable output for the provider's lifetime.
	Info() string
}

// CurrentDateProvider exposes the date frozen at construction time. The date
// is NOT refreshed per call: a long-lived provider reports a stale date after
// midnight rollover. Callers that want per-call freshness construct a new
// provider per call.
type CurrentDateProvider struct {
	title string
	date  string
}

// NewCurrentDateProvider freezes the current wall-clock date.
func NewCurrentDateProvider(title string) *CurrentDateProvider {
	return NewCurrentDateProviderAt(title, time.Now())
}

// NewCurrentDateProviderAt freezes the given time's date.
func NewCurrentDateProviderAt(title string, t time.Time) *CurrentDateProvider {
	return &CurrentDateProvider{
		title: title,
		date:  t.Format("2006-01-02"),
	}
}

// Title returns the section heading.
func (p *CurrentDateProvider) Title() string {
	return p.title
}

// Info returns the frozen date fact.
func (p *CurrentDateProvider) Info() string {
	return "Current date in format YYYY-MM-DD: " + p.date
}

// Date returns the frozen date string.
func (p *CurrentDateProvider) Date() string {
	return p.date
}

// Verify interface
var _ ContextProvider = (*CurrentDateProvider)(nil)
