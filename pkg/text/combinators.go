package text

import "github.com/twinfer/combo/pkg/combo"

type (
	// Parser is a parser over strings; State.Index is a byte offset.
	Parser = combo.Parser[string]
	// State is the record text parsers thread.
	State = combo.State[string]
	// Procedure drives a Contextual text parser.
	Procedure = combo.Procedure[string]
)

// New wraps a step function into a text parser.
func New(handler func(State) State, opts ...combo.Option[string]) *Parser {
	return combo.New(combo.Handler[string](handler), opts...)
}

// Sequence runs parsers in order, see combo.SequenceOf.
func Sequence(parsers ...*Parser) *Parser { return combo.SequenceOf(parsers) }

// SequenceOf is Sequence over a slice.
func SequenceOf(parsers []*Parser) *Parser { return combo.SequenceOf(parsers) }

// OneOf returns the first alternative that succeeds, see combo.OneOfList.
func OneOf(parsers ...*Parser) *Parser { return combo.OneOfList(parsers) }

// OneOfList is OneOf over a slice.
func OneOfList(parsers []*Parser) *Parser { return combo.OneOfList(parsers) }

// Many applies p as many times as possible.
func Many(p *Parser) *Parser { return combo.Many(p) }

// OneOrMore applies p at least once.
func OneOrMore(p *Parser) *Parser { return combo.OneOrMore(p) }

// Times applies p exactly n times.
func Times(p *Parser, n int) *Parser { return combo.Times(p, n) }

// Between keeps the result of content enclosed by left and right (or left
// twice).
func Between(left, content *Parser, right ...*Parser) *Parser {
	return combo.Between(left, content, right...)
}

// ParseBetween fixes the delimiters of Between.
func ParseBetween(left *Parser, right ...*Parser) func(*Parser) *Parser {
	return combo.ParseBetween(left, right...)
}

// Separated collects content results separated by sep.
func Separated(sep, content *Parser) *Parser { return combo.Separated(sep, content) }

// ParseSeparated fixes the separator of Separated.
func ParseSeparated(sep *Parser) func(*Parser) *Parser { return combo.ParseSeparated(sep) }

// Lazy builds its parser on first use and keeps it.
func Lazy(thunk func() *Parser) *Parser { return combo.Lazy(thunk) }

// LazyUncached builds its parser on every use.
func LazyUncached(thunk func() *Parser) *Parser { return combo.LazyUncached(thunk) }

// Fail always fails with payload.
func Fail(payload any) *Parser { return combo.Failure[string](payload) }

// Success always succeeds with value.
func Success(value any) *Parser { return combo.Success[string](value) }

// Contextual builds a parser from an imperative procedure.
func Contextual(proc Procedure) *Parser { return combo.Contextual(proc) }
