package binary

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/twinfer/combo/pkg/combo"
)

// MaxNativeBits is the widest field Uint and Int accept. Wider fields need
// BigUint or BigInt.
const MaxNativeBits = 32

// Uint reads an unsigned integer of 1 to 32 bits and yields it as a uint32.
func Uint(bits int, bigEndian bool) *Parser {
	if bits < 1 || bits > MaxNativeBits {
		panic(&combo.ConfigError{Op: "uint", Message: widthMessage(bits)})
	}
	return readBits(bits).Map(func(v any, _ int, _ []byte) any {
		return uint32(FoldUnsigned(ordered(v, bigEndian)))
	})
}

// Int reads a two's complement integer of 1 to 32 bits and yields it as an
// int32.
func Int(bits int, bigEndian bool) *Parser {
	if bits < 1 || bits > MaxNativeBits {
		panic(&combo.ConfigError{Op: "int", Message: widthMessage(bits)})
	}
	return readBits(bits).Map(func(v any, _ int, _ []byte) any {
		return int32(FoldSigned(ordered(v, bigEndian)))
	})
}

// BigUint reads an unsigned integer of any positive width and yields it as a
// *big.Int.
func BigUint(bits int, bigEndian bool) *Parser {
	if bits < 1 {
		panic(&combo.ConfigError{Op: "biguint", Message: bigWidthMessage(bits)})
	}
	return readBits(bits).Map(func(v any, _ int, _ []byte) any {
		return FoldBigUnsigned(ordered(v, bigEndian))
	})
}

// BigInt reads a two's complement integer of any positive width and yields it
// as a *big.Int.
func BigInt(bits int, bigEndian bool) *Parser {
	if bits < 1 {
		panic(&combo.ConfigError{Op: "bigint", Message: bigWidthMessage(bits)})
	}
	return readBits(bits).Map(func(v any, _ int, _ []byte) any {
		return FoldBigSigned(ordered(v, bigEndian))
	})
}

func widthMessage(bits int) string {
	return fmt.Sprintf("bits must be between 1 and %d, %d given", MaxNativeBits, bits)
}

func bigWidthMessage(bits int) string {
	return fmt.Sprintf("bits must be at least 1, %d given", bits)
}

// readBits is a sequence of n Bit parsers.
func readBits(n int) *Parser {
	ps := make([]*Parser, n)
	for i := range ps {
		ps[i] = Bit
	}
	return Sequence(ps...)
}

// ordered converts a sequence result into bits in fold order.
func ordered(v any, bigEndian bool) []int {
	raw := v.([]any)
	bs := make([]int, len(raw))
	for i, b := range raw {
		bs[i] = b.(int)
	}
	if bigEndian {
		slices.Reverse(bs)
	}
	return bs
}

// FoldUnsigned assembles bits, first one most significant, into an unsigned
// value. Bits beyond the 64th shift out.
func FoldUnsigned(bits []int) uint64 {
	var v uint64
	for _, b := range bits {
		v = v<<1 | uint64(b&1)
	}
	return v
}

// FoldSigned assembles bits, first one most significant, as a two's
// complement value: a leading 0 gives the unsigned fold, a leading 1 gives
// -(1 + fold of the complemented bits).
func FoldSigned(bits []int) int64 {
	if len(bits) == 0 || bits[0] == 0 {
		return int64(FoldUnsigned(bits))
	}
	var v uint64
	for _, b := range bits {
		v = v<<1 | uint64(1-b&1)
	}
	return -(1 + int64(v))
}

// FoldBigUnsigned is FoldUnsigned for any number of bits.
func FoldBigUnsigned(bits []int) *big.Int {
	v := new(big.Int)
	for i, b := range bits {
		if b&1 == 1 {
			v.SetBit(v, len(bits)-1-i, 1)
		}
	}
	return v
}

// FoldBigSigned is FoldSigned for any number of bits.
func FoldBigSigned(bits []int) *big.Int {
	if len(bits) == 0 || bits[0] == 0 {
		return FoldBigUnsigned(bits)
	}
	v := new(big.Int)
	for i, b := range bits {
		if b&1 == 0 {
			v.SetBit(v, len(bits)-1-i, 1)
		}
	}
	return v.Neg(v.Add(v, big.NewInt(1)))
}

// Fixed width presets. The BE forms fold the bits in reverse reading order.
var (
	Uint8    = Uint(8, false)
	Uint8BE  = Uint(8, true)
	Uint16   = Uint(16, false)
	Uint16BE = Uint(16, true)
	Uint24   = Uint(24, false)
	Uint24BE = Uint(24, true)
	Uint32   = Uint(32, false)
	Uint32BE = Uint(32, true)

	Int8    = Int(8, false)
	Int8BE  = Int(8, true)
	Int16   = Int(16, false)
	Int16BE = Int(16, true)
	Int24   = Int(24, false)
	Int24BE = Int(24, true)
	Int32   = Int(32, false)
	Int32BE = Int(32, true)

	Uint64     = BigUint(64, false)
	Uint64BE   = BigUint(64, true)
	Uint128    = BigUint(128, false)
	Uint128BE  = BigUint(128, true)
	Uint256    = BigUint(256, false)
	Uint256BE  = BigUint(256, true)
	Int64      = BigInt(64, false)
	Int64BE    = BigInt(64, true)
	Int128     = BigInt(128, false)
	Int128BE   = BigInt(128, true)
	Int256     = BigInt(256, false)
	Int256BE   = BigInt(256, true)
)
