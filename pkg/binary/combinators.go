package binary

import (
	"fmt"

	"github.com/twinfer/combo/pkg/combo"
)

type (
	// Parser is a parser over byte buffers; State.Index is a bit offset.
	Parser = combo.Parser[[]byte]
	// State is the record binary parsers thread.
	State = combo.State[[]byte]
	// Procedure drives a Contextual binary parser.
	Procedure = combo.Procedure[[]byte]
)

// New wraps a step function into a binary parser.
func New(handler func(State) State, opts ...combo.Option[[]byte]) *Parser {
	return combo.New[[]byte](combo.Handler[[]byte](handler), opts...)
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
func Fail(payload any) *Parser { return combo.Failure[[]byte](payload) }

// Success always succeeds with value.
func Success(value any) *Parser { return combo.Success[[]byte](value) }

// Contextual builds a parser from an imperative procedure.
func Contextual(proc Procedure) *Parser { return combo.Contextual(proc) }

// EOF succeeds, without moving, once every bit of the buffer has been read.
var EOF = combo.New[[]byte](func(s State) State {
	if s.Index >= len(s.Source)*8 {
		return combo.Ok(s, nil, s.Index)
	}
	return combo.Fail(s, fmt.Sprintf("Expected End Of Input (eoi/eof/end) but found %d unread bits @ index %d",
		len(s.Source)*8-s.Index, s.Index))
})
