package binary

import (
	"fmt"
	"strings"

	"github.com/twinfer/combo/pkg/combo"
)

// bitAt returns the bit at bit offset index, or false when the owning byte is
// past the end of source.
func bitAt(source []byte, index int) (int, bool) {
	byteIndex := index / 8
	if index < 0 || byteIndex >= len(source) {
		return 0, false
	}
	return int(source[byteIndex]>>(7-uint(index%8))) & 1, true
}

var (
	// Bit reads one bit and yields it as an int, 0 or 1.
	Bit = combo.New[[]byte](func(s State) State {
		b, ok := bitAt(s.Source, s.Index)
		if !ok {
			return combo.Fail(s, fmt.Sprintf("bit: Unexpected end of input @ index %d", s.Index))
		}
		return combo.Ok(s, b, s.Index+1)
	})
	// Zero reads one bit and requires it to be unset.
	Zero = expectBit("zero", 0)
	// One reads one bit and requires it to be set.
	One = expectBit("one", 1)
)

func expectBit(op string, want int) *Parser {
	return combo.New[[]byte](func(s State) State {
		b, ok := bitAt(s.Source, s.Index)
		if !ok {
			return combo.Fail(s, fmt.Sprintf("bit: Unexpected end of input @ index %d", s.Index))
		}
		if b != want {
			return combo.Fail(s, fmt.Sprintf("%s: expected %d but got %d @ index %d", op, want, b, s.Index))
		}
		return combo.Ok(s, b, s.Index+1)
	})
}

// Match returns a parser accepting the bytes of expr at the byte holding the
// cursor. See MatchWindow.
func Match(expr []byte) *Parser {
	return MatchWindow(expr, 0, -1)
}

// MatchWindow matches expr[offset:offset+length] against the buffer starting
// at byte index/8; a negative length runs to the end of expr. The comparison
// is byte aligned whatever the sub-byte position of the cursor. On success the
// result is the matched window and the cursor advances by its length in bits.
func MatchWindow(expr []byte, offset, length int) *Parser {
	if offset < 0 {
		offset = 0
	}
	if offset > len(expr) {
		offset = len(expr)
	}
	end := len(expr)
	if length >= 0 && offset+length < end {
		end = offset + length
	}
	want := append([]byte(nil), expr[offset:end]...)
	return combo.New[[]byte](func(s State) State {
		got := window(s.Source, s.Index/8, len(want))
		if string(got) != string(want) {
			return combo.Fail(s, fmt.Sprintf("match: Tried to match '%s', but got '%s' @ index %d",
				hexList(want), hexList(got), s.Index))
		}
		return combo.Ok(s, want, s.Index+len(want)*8)
	})
}

// window is up to n bytes of source from byte offset at.
func window(source []byte, at, n int) []byte {
	if at >= len(source) {
		return nil
	}
	if rest := source[at:]; len(rest) > n {
		return rest[:n]
	}
	return source[at:]
}

// hexList renders bytes as "<0a, ff>".
func hexList(bs []byte) string {
	var b strings.Builder
	b.WriteByte('<')
	for i, v := range bs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%02x", v)
	}
	b.WriteByte('>')
	return b.String()
}
