package text

import (
	"fmt"
	"unicode/utf8"

	"github.com/twinfer/combo/pkg/combo"
)

var (
	// Letters matches one or more ASCII letters.
	Letters = MatchRegexp(`^[A-Za-z]+`)
	// Digits matches one or more decimal digits.
	Digits = MatchRegexp(`^\d+`)
	// Spaces matches one or more whitespace characters.
	Spaces = MatchRegexp(`^\s+`)

	// EOF succeeds, without moving, only at the end of the input.
	EOF = combo.New[string](func(s State) State {
		if s.Index >= len(s.Source) {
			return combo.Ok(s, nil, s.Index)
		}
		r, _ := utf8.DecodeRuneInString(s.Source[s.Index:])
		return combo.Fail(s, fmt.Sprintf("Expected End Of Input (eoi/eof/end) but found '%c' @ index %d", r, s.Index))
	})
	// EOI is EOF.
	EOI = EOF
	// End is EOF.
	End = EOF
)
