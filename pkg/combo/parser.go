package combo

// Handler is a step function: it receives a successful state and returns its
// successor, which may be a success or a failure.
type Handler[S Source] func(State[S]) State[S]

// Recover receives a failed state entering a parser and may transform it or
// heal it back into a success.
type Recover[S Source] func(State[S]) State[S]

// MapFunc transforms a payload. It also sees the index and the source of the
// state carrying the payload.
type MapFunc[S Source] func(value any, index int, source S) any

// ChainFunc picks the parser to continue with from the previous result.
type ChainFunc[S Source] func(value any, index int, source S) *Parser[S]

// Parser is a composable parsing step over sources of type S.
//
// A parser is built once and may be invoked any number of times, from any
// number of goroutines: it holds no mutable state of its own.
type Parser[S Source] struct {
	handler Handler[S]
	recover Recover[S]
	name    string
}

// Option configures a parser built by New.
type Option[S Source] func(*Parser[S])

// WithRecover installs a handler for failed states entering the parser.
// Without it a failed state is returned unchanged.
func WithRecover[S Source](fn Recover[S]) Option[S] {
	return func(p *Parser[S]) {
		p.recover = fn
	}
}

// WithName names the parser, see Named.
func WithName[S Source](name string) Option[S] {
	return func(p *Parser[S]) {
		p.name = name
	}
}

// New wraps a step function into a parser.
func New[S Source](handler Handler[S], opts ...Option[S]) *Parser[S] {
	if handler == nil {
		configPanic("parser", "handler must be a valid function")
	}
	p := &Parser[S]{handler: handler}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse starts a fresh parse of source at offset 0.
func (p *Parser[S]) Parse(source S) State[S] {
	return p.handler(Initial(source))
}

// Run continues from a previous state. A failed state is handed to the
// recover function when one is installed and returned unchanged otherwise.
func (p *Parser[S]) Run(s State[S]) State[S] {
	if s.IsError {
		if p.recover != nil {
			return p.recover(s)
		}
		return s
	}
	return p.handler(s)
}

// Map returns a parser replacing the result of p with fn(result, index,
// source). Failures pass through untouched.
func (p *Parser[S]) Map(fn MapFunc[S]) *Parser[S] {
	return New[S](func(s State[S]) State[S] {
		next := p.Run(s)
		if next.IsError {
			return next
		}
		return Ok(next, fn(next.Result, next.Index, next.Source), next.Index)
	})
}

// MapError returns a parser replacing the error payload of a failed p with
// fn(error, index, source). On success the state p produced is returned, so
// the cursor advance made by p is kept.
func (p *Parser[S]) MapError(fn MapFunc[S]) *Parser[S] {
	return New[S](func(s State[S]) State[S] {
		next := p.Run(s)
		if !next.IsError {
			return next
		}
		return Fail(next, fn(next.Error, next.Index, next.Source))
	})
}

// Chain returns a parser that runs p, then asks fn for the next parser based
// on p's result and runs it from p's final state.
func (p *Parser[S]) Chain(fn ChainFunc[S]) *Parser[S] {
	return New[S](func(s State[S]) State[S] {
		next := p.Run(s)
		if next.IsError {
			return next
		}
		cont := fn(next.Result, next.Index, next.Source)
		mustParser("chain", cont)
		return cont.Run(next)
	})
}

// Named returns a copy of p carrying a name, used by Trace and in logs.
func (p *Parser[S]) Named(name string) *Parser[S] {
	cp := *p
	cp.name = name
	return &cp
}

// Name returns the name given with Named.
func (p *Parser[S]) Name() string {
	return p.name
}

// Binary reports whether p works on bit-indexed byte buffers rather than
// text.
func (p *Parser[S]) Binary() bool {
	var zero S
	_, ok := any(zero).([]byte)
	return ok
}
