package layout

import (
	"log/slog"
	"time"

	"github.com/twinfer/combo/internal/cel"
)

// options holds configuration shared by Compile and Loader.
type options struct {
	logger        *slog.Logger
	trace         bool
	pool          *cel.ProgramPool
	enableCaching bool
	cacheTimeout  time.Duration
}

// Option is a function that configures layout compilation and loading.
type Option func(*options)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTrace logs every field read at debug level through combo.Trace.
func WithTrace(enabled bool) Option {
	return func(o *options) {
		o.trace = enabled
	}
}

// WithProgramPool shares a CEL program pool between decoders.
func WithProgramPool(pool *cel.ProgramPool) Option {
	return func(o *options) {
		o.pool = pool
	}
}

// WithCaching keeps compiled layouts for timeout. A zero timeout keeps them
// until ClearCache.
func WithCaching(timeout time.Duration) Option {
	return func(o *options) {
		o.enableCaching = true
		o.cacheTimeout = timeout
	}
}

// WithoutCaching compiles the layout file on every load.
func WithoutCaching() Option {
	return func(o *options) {
		o.enableCaching = false
	}
}

func defaultOptions() options {
	return options{
		logger:        slog.Default(),
		enableCaching: true,
		cacheTimeout:  5 * time.Minute,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
