// Package assets tracks the external scripts and stylesheets a rendered
// document depends on, loading each one into the host environment at most
// once.
package assets

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/ansuz/internal/outline"
)

// FetchFunc loads one asset into the environment. Implementations decide
// what loading means: injecting a tag, downloading to a cache, or nothing.
type FetchFunc func(a outline.Asset) error

// Loader remembers which asset URLs have already been loaded so repeated
// update cycles over the same document never load twice. Safe for
// concurrent use.
type Loader struct {
	mu     sync.Mutex
	loaded map[string]struct{}
	fetch  FetchFunc
	log    *slog.Logger
}

// NewLoader creates a Loader. fetch may be nil, in which case assets are
// only tracked.
func NewLoader(fetch FetchFunc, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		loaded: make(map[string]struct{}),
		fetch:  fetch,
		log:    logger,
	}
}

// EnsureLoaded loads every asset not yet seen. A failed fetch is not marked
// loaded, so the next cycle retries it.
func (l *Loader) EnsureLoaded(assets []outline.Asset) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, a := range assets {
		if _, ok := l.loaded[a.URL]; ok {
			continue
		}
		if l.fetch != nil {
			if err := l.fetch(a); err != nil {
				return fmt.Errorf("load asset %s: %w", a.URL, err)
			}
		}
		l.loaded[a.URL] = struct{}{}
		l.log.Debug("assets: loaded", slog.String("kind", string(a.Kind)), slog.String("url", a.URL))
	}
	return nil
}

// Loaded returns the URLs loaded so far, in no particular order.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.loaded))
	for url := range l.loaded {
		out = append(out, url)
	}
	return out
}
