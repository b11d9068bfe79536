package combo

import "fmt"

// SequenceOf runs parsers one after another and collects their results in
// order. The first failure aborts the sequence; it is reported at the state
// the sequence started from, carrying the failing parser's payload verbatim.
func SequenceOf[S Source](parsers []*Parser[S]) *Parser[S] {
	mustParsers("sequence", parsers)
	ps := append([]*Parser[S](nil), parsers...)
	return New[S](func(s State[S]) State[S] {
		next := s
		results := make([]any, 0, len(ps))
		for _, p := range ps {
			next = p.Run(next)
			if next.IsError {
				return Fail(s, next.Error)
			}
			results = append(results, next.Result)
		}
		return Ok(next, results, next.Index)
	})
}

// Sequence is the variadic form of SequenceOf.
func Sequence[S Source](parsers ...*Parser[S]) *Parser[S] {
	return SequenceOf(parsers)
}

// OneOfList tries parsers in order, each from the same entry state, and
// returns the first success. Partial consumption by a failing alternative is
// discarded.
func OneOfList[S Source](parsers []*Parser[S]) *Parser[S] {
	mustParsers("oneOf", parsers)
	ps := append([]*Parser[S](nil), parsers...)
	return New[S](func(s State[S]) State[S] {
		for _, p := range ps {
			if next := p.Run(s); !next.IsError {
				return next
			}
		}
		return Fail(s, fmt.Sprintf("oneOf: Unable to match with any parser @ index %d", s.Index))
	})
}

// OneOf is the variadic form of OneOfList.
func OneOf[S Source](parsers ...*Parser[S]) *Parser[S] {
	return OneOfList(parsers)
}

// repeat applies p until it fails and returns the collected results together
// with the state after the last success.
func repeat[S Source](p *Parser[S], s State[S]) ([]any, State[S]) {
	next := s
	results := []any{}
	for {
		test := p.Run(next)
		if test.IsError {
			return results, next
		}
		next = test
		results = append(results, next.Result)
	}
}

// Many applies p as many times as possible. It never fails; zero matches
// yield an empty result at the entry index. p must consume input on success,
// otherwise Many loops forever.
func Many[S Source](p *Parser[S]) *Parser[S] {
	mustParser("many", p)
	return New[S](func(s State[S]) State[S] {
		results, next := repeat(p, s)
		return Ok(next, results, next.Index)
	})
}

// OneOrMore is Many requiring at least one match.
func OneOrMore[S Source](p *Parser[S]) *Parser[S] {
	mustParser("oneOrMore", p)
	return New[S](func(s State[S]) State[S] {
		results, next := repeat(p, s)
		if len(results) == 0 {
			return Fail(s, fmt.Sprintf("oneOrMore: Unable to match any input parser @ index %d", s.Index))
		}
		return Ok(next, results, next.Index)
	})
}

// maxReserve bounds the capacity Times reserves before reading any input.
const maxReserve = 64

// Times applies p exactly n times.
func Times[S Source](p *Parser[S], n int) *Parser[S] {
	mustParser("times", p)
	if n < 1 {
		configPanic("times", "times argument must be at least 1, %d given", n)
	}
	return New[S](func(s State[S]) State[S] {
		next := s
		results := make([]any, 0, min(n, maxReserve))
		for i := 0; i < n; i++ {
			next = p.Run(next)
			if next.IsError {
				return Fail(s, fmt.Sprintf("times: Unable to match the input parser %d times @ index %d", n, s.Index))
			}
			results = append(results, next.Result)
		}
		return Ok(next, results, next.Index)
	})
}

// Between matches left, content and right in sequence and keeps only the
// content's result. Without right, left closes the content as well.
func Between[S Source](left, content *Parser[S], right ...*Parser[S]) *Parser[S] {
	closing := left
	if len(right) > 0 {
		closing = right[0]
	}
	return Sequence(left, content, closing).Map(func(v any, _ int, _ S) any {
		return v.([]any)[1]
	})
}

// ParseBetween fixes the delimiters of Between and returns a function that
// wraps any content parser with them.
func ParseBetween[S Source](left *Parser[S], right ...*Parser[S]) func(content *Parser[S]) *Parser[S] {
	return func(content *Parser[S]) *Parser[S] {
		return Between(left, content, right...)
	}
}

// Separated collects content results separated by sep. It needs at least one
// content match. A separator after the last element is consumed although it
// contributes nothing to the result.
func Separated[S Source](sep, content *Parser[S]) *Parser[S] {
	mustParser("separated", sep)
	mustParser("separated", content)
	return New[S](func(s State[S]) State[S] {
		results := []any{}
		next := s
		for {
			test := content.Run(next)
			if test.IsError {
				break
			}
			results = append(results, test.Result)
			next = test
			after := sep.Run(test)
			if after.IsError {
				break
			}
			next = after
		}
		if len(results) == 0 {
			return Fail(s, fmt.Sprintf("separated: Unable to capture any results @ index %d", s.Index))
		}
		return Ok(next, results, next.Index)
	})
}

// ParseSeparated fixes the separator of Separated.
func ParseSeparated[S Source](sep *Parser[S]) func(content *Parser[S]) *Parser[S] {
	return func(content *Parser[S]) *Parser[S] {
		return Separated(sep, content)
	}
}

// Failure always fails with payload and leaves the cursor in place.
func Failure[S Source](payload any) *Parser[S] {
	return New[S](func(s State[S]) State[S] {
		return Fail(s, payload)
	})
}

// Success always succeeds with value and leaves the cursor in place.
func Success[S Source](value any) *Parser[S] {
	return New[S](func(s State[S]) State[S] {
		return Ok(s, value, s.Index)
	})
}
