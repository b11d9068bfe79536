package combo

import (
	"context"
	"log/slog"
)

// Trace wraps p so that every invocation is logged at debug level: the entry
// index, and on exit the new index plus either the result or the error
// payload. A nil logger falls back to slog.Default().
func Trace[S Source](p *Parser[S], name string, logger *slog.Logger) *Parser[S] {
	mustParser("trace", p)
	if logger == nil {
		logger = slog.Default()
	}
	if name == "" {
		name = p.Name()
	}
	log := logger.With("parser", name, "binary", p.Binary())
	ctx := context.Background()
	traced := New[S](func(s State[S]) State[S] {
		log.DebugContext(ctx, "Entering parser", "index", s.Index)
		next := p.Run(s)
		if next.IsError {
			log.DebugContext(ctx, "Parser failed", "index", next.Index, "error", next.Error)
			return next
		}
		log.DebugContext(ctx, "Parser succeeded", "index", next.Index, "result", next.Result)
		return next
	}, WithRecover[S](func(s State[S]) State[S] {
		log.DebugContext(ctx, "Passing failure through", "index", s.Index, "error", s.Error)
		return p.Run(s)
	}))
	return traced.Named(name)
}
