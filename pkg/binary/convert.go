package binary

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
)

// AsBinary packs a string of bits into bytes, eight per byte, first bit most
// significant. Whitespace is ignored and every character other than '1'
// counts as a zero bit. A trailing partial byte is padded with zeros.
func AsBinary(bits string) []byte {
	bools := make([]bool, 0, len(bits))
	for _, r := range bits {
		if unicode.IsSpace(r) {
			continue
		}
		bools = append(bools, r == '1')
	}
	return AsBinaryBools(bools)
}

// AsBinaryBools is AsBinary over booleans.
func AsBinaryBools(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, set := range bits {
		if set {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

// ToCharCode encodes each character of s as one byte, keeping the low eight
// bits of its code point. Bytes that are not valid UTF-8 are copied as they
// are.
func ToCharCode(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			out = append(out, s[i])
		} else {
			out = append(out, byte(r))
		}
		i += size
	}
	return out
}

// FromStream reads what is left of a kaitai stream into a buffer that
// binary parsers can consume.
func FromStream(stream *kaitai.Stream) ([]byte, error) {
	data, err := stream.ReadBytesFull()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}
	return data, nil
}
