package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinators_Binary(t *testing.T) {
	data := AsBinary("1110 0101")

	assertState(t, Many(One).Parse(data), 3, []any{1, 1, 1})
	assertState(t, Many(Zero).Parse(data), 0, []any{})
	assertFailure(t, OneOrMore(Zero).Parse(data), 0, "oneOrMore: Unable to match any input parser @ index 0")
	assertState(t, OneOf(Zero, One).Parse(data), 1, 1)
	assertFailure(t, OneOf(Match([]byte{0}), Zero).Parse(data), 0, "oneOf: Unable to match with any parser @ index 0")
	assertFailure(t, Times(One, 4).Parse(data), 0, "times: Unable to match the input parser 4 times @ index 0")
	assertState(t, Between(One, Uint(2, false), Zero).Parse(data), 4, uint32(3))
	assertState(t, ParseBetween(One, One)(One).Parse(data), 3, 1)
	assertFailure(t, ParseBetween(One)(Uint(2, false)).Parse(data), 0, "one: expected 1 but got 0 @ index 3")
	// The trailing separator at bit 5 is consumed.
	assertState(t, Separated(Zero, One).Parse(AsBinary("10101")), 6, []any{1, 1, 1})
	assertState(t, ParseSeparated(Zero)(One).Parse(AsBinary("1011")), 3, []any{1, 1})
	assertState(t, Success(42).Parse(data), 0, 42)
	assertFailure(t, Fail("nope").Parse(data), 0, "nope")
}

func TestSequence_BinaryShortCircuits(t *testing.T) {
	calls := 0
	counting := New(func(s State) State {
		calls++
		return Bit.Run(s)
	})
	got := Sequence(Zero, counting, counting).Parse(AsBinary("1"))
	assertFailure(t, got, 0, "zero: expected 0 but got 1 @ index 0")
	assert.Zero(t, calls)
}

func TestContextual_LengthPrefixed(t *testing.T) {
	nibble := Uint(4, false)
	record := Contextual(func(yield func(*Parser) any) any {
		n := int(yield(nibble).(uint32))
		if n == 0 {
			return []any{}
		}
		return yield(Times(nibble, n))
	})

	assertState(t, record.Parse([]byte{0x2a, 0xb0}), 12, []any{uint32(10), uint32(11)})
	assertState(t, record.Parse([]byte{0x00}), 4, []any{})
	assertFailure(t, record.Parse([]byte{0x3a}), 4, "times: Unable to match the input parser 3 times @ index 4")
}

func TestLazy_Binary(t *testing.T) {
	// bits := 1 bits | 0
	var ones *Parser
	ones = Lazy(func() *Parser {
		return OneOf(Sequence(One, ones).Map(func(v any, _ int, _ []byte) any {
			return 1 + v.([]any)[1].(int)
		}), Zero.Map(func(any, int, []byte) any { return 0 }))
	})
	assertState(t, ones.Parse(AsBinary("1110")), 4, 3)

	built := 0
	u := LazyUncached(func() *Parser {
		built++
		return Bit
	})
	u.Parse([]byte{0})
	u.Parse([]byte{0})
	assert.Equal(t, 2, built)
}

func TestParser_BinaryTag(t *testing.T) {
	assert.True(t, Bit.Binary())
	assert.True(t, Uint8.Binary())
}

func TestSliceForms_Binary(t *testing.T) {
	data := AsBinary("1011")

	assertState(t, SequenceOf([]*Parser{One, Zero}).Parse(data), 2, []any{1, 0})
	assert.Panics(t, func() { SequenceOf(nil) })
	assertState(t, OneOfList([]*Parser{Zero, One}).Parse(data), 1, 1)
	assertFailure(t, OneOfList([]*Parser{Zero}).Parse(data), 0, "oneOf: Unable to match with any parser @ index 0")
}
