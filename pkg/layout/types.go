package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/twinfer/combo/pkg/binary"
)

// fieldType is a parsed type name such as "u12", "s64be" or "bit".
type fieldType struct {
	signed    bool
	bits      int
	bigEndian bool
}

// parseType reads a type name. bN and uN are unsigned N-bit integers, sN is
// signed, and an optional be or le suffix overrides the layout's bit-endian.
func parseType(name string, bigEndian bool) (fieldType, error) {
	if name == "bit" {
		return fieldType{bits: 1, bigEndian: bigEndian}, nil
	}
	t := fieldType{bigEndian: bigEndian}
	rest := name
	switch {
	case strings.HasSuffix(rest, "be"):
		t.bigEndian = true
		rest = strings.TrimSuffix(rest, "be")
	case strings.HasSuffix(rest, "le"):
		t.bigEndian = false
		rest = strings.TrimSuffix(rest, "le")
	}
	if len(rest) < 2 {
		return fieldType{}, fmt.Errorf("unknown type %q", name)
	}
	switch rest[0] {
	case 'b', 'u':
	case 's':
		t.signed = true
	default:
		return fieldType{}, fmt.Errorf("unknown type %q", name)
	}
	n, err := strconv.Atoi(rest[1:])
	if err != nil || n < 1 {
		return fieldType{}, fmt.Errorf("unknown type %q", name)
	}
	t.bits = n
	return t, nil
}

// parser returns the binary parser reading one value of t. Widths up to 32
// bits decode to uint32 or int32, wider ones to *big.Int.
func (t fieldType) parser() *binary.Parser {
	switch {
	case t.bits <= binary.MaxNativeBits && t.signed:
		return binary.Int(t.bits, t.bigEndian)
	case t.bits <= binary.MaxNativeBits:
		return binary.Uint(t.bits, t.bigEndian)
	case t.signed:
		return binary.BigInt(t.bits, t.bigEndian)
	default:
		return binary.BigUint(t.bits, t.bigEndian)
	}
}
