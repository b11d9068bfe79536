// Package combo is a parser combinator engine generic over its input.
//
// # Overview
//
// A parser consumes a State and returns a new State: either a success
// carrying a result and an advanced cursor, or a failure carrying an error
// payload. Parsers are composed with three operators and a set of
// combinators:
//
//   - Map, MapError, Chain: transform a result, transform an error, bind
//     the next parser to a previous result
//   - Sequence, OneOf, Many, OneOrMore, Times, Between, Separated
//   - Lazy for recursive grammars, Contextual for imperative sequencing
//   - Failure and Success as constant parsers
//
// The engine works for any Source. Package text instantiates it over
// strings (byte offsets) and package binary over byte buffers (bit
// offsets); both add their primitive matchers.
//
// # Errors
//
// Malformed input is never a Go error inside the engine: it travels as a
// failed State, and once a state is failed every Map or Chain downstream
// passes it through untouched. Only a parser built with WithRecover gets to
// inspect, rewrite or heal an incoming failure. Top-level callers check
// State.IsError, or call State.Err to get a *ParseError.
//
// Misuse of the API while building a grammar (no parsers, a nil parser, a
// repetition count below one, a contextual procedure yielding nil) panics
// with a *ConfigError.
//
// # Concurrency
//
// Parsing is synchronous. A built parser may be shared between goroutines:
// sources are never written, every step builds fresh states, and Lazy
// memoizes its thunk through sync.Once.
package combo
