package layout

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/twinfer/combo/internal/cel"
)

// Loader reads layout files and keeps their compiled decoders.
type Loader struct {
	cache      map[string]cacheEntry
	cacheMutex sync.RWMutex
	logger     *slog.Logger
	options    options
	now        func() time.Time
}

type cacheEntry struct {
	decoder  *Decoder
	loadedAt time.Time
}

// newProgramPool builds the CEL pools of loaders and decoders.
var newProgramPool = cel.NewProgramPool

// Global loader for the convenience functions.
var (
	globalLoader     *Loader
	globalLoaderOnce sync.Once
)

func getGlobalLoader() *Loader {
	globalLoaderOnce.Do(func() {
		globalLoader = NewLoader()
	})
	return globalLoader
}

// NewLoader creates a loader with the given options.
func NewLoader(opts ...Option) *Loader {
	o := applyOptions(opts)
	if o.pool == nil {
		pool, err := newProgramPool()
		if err != nil {
			// Left nil: every Compile retries and reports the error.
			o.logger.Warn("Shared CEL pool unavailable", "error", err)
		}
		o.pool = pool
	}
	return &Loader{
		cache:   make(map[string]cacheEntry),
		logger:  o.logger,
		options: o,
		now:     time.Now,
	}
}

// DecodeFile decodes data with the layout at path using a shared loader.
func DecodeFile(ctx context.Context, data []byte, path string) (map[string]any, error) {
	return getGlobalLoader().Decode(ctx, data, path)
}

// Load returns the decoder for the layout file at path, compiling it unless
// a fresh one is cached.
func (l *Loader) Load(path string) (*Decoder, error) {
	if l.options.enableCaching {
		l.cacheMutex.RLock()
		entry, ok := l.cache[path]
		l.cacheMutex.RUnlock()
		if ok && (l.options.cacheTimeout <= 0 || l.now().Sub(entry.loadedAt) < l.options.cacheTimeout) {
			return entry.decoder, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	lay, err := ParseLayout(data)
	if err != nil {
		return nil, err
	}
	dec, err := Compile(lay, l.compileOptions()...)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Compiled layout", "path", path, "id", lay.Meta.ID, "fields", len(lay.Seq))

	if l.options.enableCaching {
		l.cacheMutex.Lock()
		l.cache[path] = cacheEntry{decoder: dec, loadedAt: l.now()}
		l.cacheMutex.Unlock()
	}
	return dec, nil
}

func (l *Loader) compileOptions() []Option {
	o := l.options
	return []Option{func(dst *options) { *dst = o }}
}

// Decode decodes data with the layout at path.
func (l *Loader) Decode(ctx context.Context, data []byte, path string) (map[string]any, error) {
	dec, err := l.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	return dec.Decode(ctx, data)
}

// DecodeJSON decodes data with the layout at path and returns indented JSON.
func (l *Loader) DecodeJSON(ctx context.Context, data []byte, path string) ([]byte, error) {
	dec, err := l.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	return dec.DecodeJSON(ctx, data)
}

// Validate loads the layout at path without decoding anything.
func (l *Loader) Validate(path string) error {
	_, err := l.Load(path)
	return err
}

// Cached reports how many decoders the loader holds.
func (l *Loader) Cached() int {
	l.cacheMutex.RLock()
	defer l.cacheMutex.RUnlock()
	return len(l.cache)
}

// ClearCache drops every cached decoder.
func (l *Loader) ClearCache() {
	l.cacheMutex.Lock()
	defer l.cacheMutex.Unlock()
	l.cache = make(map[string]cacheEntry)
}
