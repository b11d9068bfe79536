package text

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinfer/combo/pkg/combo"
)

func TestSequence_Text(t *testing.T) {
	p := Sequence(Digits, Letters)
	assertState(t, p.Parse("123abc"), "123abc", 6, []any{"123", "abc"})
	assertFailure(t, p.Parse("abc123"), "abc123", 0, "match: Tried to match '^\\d+', but got 'abc123' @ index 0")
	assert.Panics(t, func() { Sequence() })
	assert.Panics(t, func() { SequenceOf(nil) })
}

func TestOneOf_Text(t *testing.T) {
	p := OneOf(Digits, Letters)
	assertState(t, p.Parse("123abc"), "123abc", 3, "123")
	assertState(t, p.Parse("abc123"), "abc123", 3, "abc")
	assertFailure(t, p.Parse(" 123abc"), " 123abc", 0, "oneOf: Unable to match with any parser @ index 0")
	assert.Panics(t, func() { OneOf() })
	assert.Panics(t, func() { OneOfList([]*Parser{}) })
}

func TestRepetition_Text(t *testing.T) {
	assertState(t, Many(Match("42 ")).Parse("abc"), "abc", 0, []any{})
	assertState(t, OneOrMore(Match("42 ")).Parse("42 42 "), "42 42 ", 6, []any{"42 ", "42 "})
	assertFailure(t, OneOrMore(Match("42 ")).Parse("abc"), "abc", 0, "oneOrMore: Unable to match any input parser @ index 0")
	assertState(t, Times(Match("42 "), 2).Parse("42 42 42 "), "42 42 42 ", 6, []any{"42 ", "42 "})
	assert.Panics(t, func() { Times(Match("x"), 0) })
}

func TestBetween_Text(t *testing.T) {
	for name, p := range map[string]*Parser{
		"Between":      Between(Match(`"`), Letters),
		"ParseBetween": ParseBetween(Match(`"`))(Letters),
	} {
		t.Run(name, func(t *testing.T) {
			assertState(t, p.Parse(`"abc"`), `"abc"`, 5, "abc")
			assertFailure(t, p.Parse(`"abc`), `"abc`, 0, "match: Tried to match '\"', but got '' @ index 4")
			assertFailure(t, p.Parse(`abc"`), `abc"`, 0, "match: Tried to match '\"', but got 'a' @ index 0")
		})
	}

	brackets := Between(Match("["), Letters, Match("]"))
	assertState(t, brackets.Parse("[abc]"), "[abc]", 5, "abc")
	assertFailure(t, brackets.Parse("[abc"), "[abc", 0, "match: Tried to match ']', but got '' @ index 4")
}

func TestSeparated_TrailingSeparator(t *testing.T) {
	p := Separated(Match(","), Digits)
	assertState(t, p.Parse("1,2,3"), "1,2,3", 5, []any{"1", "2", "3"})
	assertState(t, p.Parse("1,2,3,"), "1,2,3,", 6, []any{"1", "2", "3"})
	assertFailure(t, p.Parse("abc"), "abc", 0, "separated: Unable to capture any results @ index 0")

	wide := ParseSeparated(Match(" | "))(Digits)
	assertState(t, wide.Parse("1 | 2 | 3 | "), "1 | 2 | 3 | ", 12, []any{"1", "2", "3"})
}

func TestLazy_Text(t *testing.T) {
	built := 0
	p := Lazy(func() *Parser {
		built++
		return Match("abc")
	})
	assertState(t, p.Parse("abc"), "abc", 3, "abc")
	assertState(t, p.Parse("abc"), "abc", 3, "abc")
	assertFailure(t, p.Parse("123"), "123", 0, "match: Tried to match 'abc', but got '123' @ index 0")
	assert.Equal(t, 1, built)

	uncached := 0
	u := LazyUncached(func() *Parser {
		uncached++
		return Match("abc")
	})
	u.Parse("abc")
	u.Parse("123")
	assert.Equal(t, 2, uncached)
}

func TestFailSuccess_Text(t *testing.T) {
	r := map[string]any{"type": "int", "value": 42}
	assertState(t, Success(r).Parse("abc"), "abc", 0, r)
	assertFailure(t, Fail(r).Parse("abc"), "abc", 0, r)
}

type declaration struct {
	VarName         string
	Data            any
	Type            string
	DeclarationType string
}

// declarationParser reads lines such as "VAR theAnswer INT 42", choosing the
// value parser from the declared type.
func declarationParser() *Parser {
	declType := OneOf(Match("VAR "), Match("GLOBAL_VAR ")).Map(func(v any, _ int, _ string) any {
		return strings.ToLower(strings.TrimSpace(v.(string)))
	})
	typ := OneOf(Match(" INT "), Match(" STRING "), Match(" BOOL ")).Map(func(v any, _ int, _ string) any {
		return strings.ToLower(strings.TrimSpace(v.(string)))
	})
	str := Between(Match(`"`), Letters)
	num := Digits.Map(func(v any, _ int, _ string) any {
		n, _ := strconv.Atoi(v.(string))
		return n
	})
	boolean := OneOf(Match("true"), Match("false")).Map(func(v any, _ int, _ string) any {
		return v == "true"
	})

	return Contextual(func(yield func(*Parser) any) any {
		d := declaration{DeclarationType: yield(declType).(string)}
		d.VarName = yield(Letters).(string)
		d.Type = yield(typ).(string)
		switch d.Type {
		case "int":
			d.Data = yield(num)
		case "string":
			d.Data = yield(str)
		case "bool":
			d.Data = yield(boolean)
		}
		return d
	})
}

func TestContextual_Declarations(t *testing.T) {
	p := declarationParser()

	tests := []struct {
		input string
		want  declaration
	}{
		{"VAR theAnswer INT 42", declaration{"theAnswer", 42, "int", "var"}},
		{`GLOBAL_VAR greeting STRING "Hello"`, declaration{"greeting", "Hello", "string", "global_var"}},
		{"VAR skyIsBlue BOOL true", declaration{"skyIsBlue", true, "bool", "var"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := p.Parse(tt.input)
			require.False(t, s.IsError, "%v", s.Error)
			assert.Equal(t, tt.want, s.Result)
			assert.Equal(t, len(tt.input), s.Index)
		})
	}

	t.Run("TypeMismatch", func(t *testing.T) {
		s := p.Parse("VAR x INT abc")
		assert.True(t, s.IsError)
		assert.Equal(t, "match: Tried to match '^\\d+', but got 'abc' @ index 10", s.Error)
	})
}

func TestRecover_Text(t *testing.T) {
	explain := New(func(s State) State { return s }, combo.WithRecover[string](func(s State) State {
		return combo.Fail(s, fmt.Sprintf("Last error was: %v", s.Error))
	}))

	healed := explain.Run(Sequence(Digits, Letters).Parse("12"))
	assert.True(t, healed.IsError)
	assert.Equal(t, 0, healed.Index)
	assert.Equal(t, "Last error was: match: Tried to match '^[A-Za-z]+', but got '' @ index 2", healed.Error)

	passed := Digits.Run(Sequence(Digits, Letters).Parse("12"))
	assert.Equal(t, "match: Tried to match '^[A-Za-z]+', but got '' @ index 2", passed.Error)
}
