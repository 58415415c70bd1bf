// Package browser drives a headless browser for portals that only serve data
// to rendered pages.
package browser

import "context"

// Driver starts isolated browser sessions.
type Driver interface {
	// NewSession starts a session bound to ctx; cancelling ctx kills it.
	NewSession(ctx context.Context) (Session, error)
}

// Session is one browser tab. It is not safe for concurrent navigation.
type Session interface {
	// Intercept returns a channel receiving the body of every response whose
	// URL contains urlMarker. Register before Navigate.
	Intercept(urlMarker string) <-chan []byte
	// Navigate loads url and waits for the load event.
	Navigate(url string) error
	// Evaluate runs expr in the page, awaiting a returned promise, and
	// decodes the result into out.
	Evaluate(expr string, out any) error
	Close()
}

// DefaultBlockedURLs keeps heavy static assets from loading.
var DefaultBlockedURLs = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.ico", "*.webp",
	"*.woff", "*.woff2", "*.ttf", "*.css", "*.mp4",
}
