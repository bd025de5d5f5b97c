// Package page abstracts "a loaded, interactive playlist page" away from
// any particular rendering engine. Scrapers only see the Page interface;
// how the document got rendered (static fetch, headless browser) is the
// implementation's business.
package page

import (
	"context"
	"errors"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoSuchControl is returned by the Click helpers when the requested
// control is not on the page. Callers treat this as non-fatal: playlist
// pages render in several variants and a missing control just means the
// current variant is already showing what we need.
var ErrNoSuchControl = errors.New("no such control on page")

type Page interface {
	// Navigate loads url, replacing the page's document. The timeout
	// bounds the whole load; hitting it is a hard failure for this url.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Document is the currently rendered content.
	Document() *goquery.Document
	URL() string

	// ClickAnchor follows the first anchor whose href ends in suffix.
	ClickAnchor(ctx context.Context, suffix string) error
	// ClickText activates the first clickable-looking node whose exact
	// trimmed text equals text.
	ClickText(ctx context.Context, text string) error
	// ClickLabel activates the control carrying the accessible label.
	ClickLabel(ctx context.Context, label string) error

	Close() error
}

type Browser interface {
	NewPage() (Page, error)
}
