package scraper

import (
	"context"

	"rpp_scraper/models"
)

// Driver is the browser-automation contract the session controller drives.
// Implementations own one browser session; Close must be safe to call on
// every exit path.
type Driver interface {
	// NavigateTo opens the portal entry page and performs any login the
	// portal requires.
	NavigateTo(ctx context.Context, url string) error

	// SubmitAddress types the address into the locality search box and
	// returns the autocomplete suggestions in display order.
	SubmitAddress(ctx context.Context, address string) ([]string, error)

	// SelectSuggestion clicks the suggestion at the given index.
	SelectSuggestion(ctx context.Context, index int) error

	// WaitForResultsReady blocks until the property view is loaded.
	WaitForResultsReady(ctx context.Context) (bool, error)

	// DetectAmbiguousResult reports whether the portal landed on a
	// multi-result search page instead of a single resolved property.
	DetectAmbiguousResult(ctx context.Context) (bool, error)

	// ExtractRawFields walks every data tab and returns the raw field
	// mapping for the current property.
	ExtractRawFields(ctx context.Context) (models.RawRecord, error)

	// CurrentURL returns the resolved property URL.
	CurrentURL() string

	Close() error
}

// DriverFactory builds a fresh driver for one attempt. Each attempt gets
// its own browser session with no carried-over state.
type DriverFactory func() (Driver, error)
