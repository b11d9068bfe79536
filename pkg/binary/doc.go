// Package binary provides parsers over byte buffers whose cursor is a bit
// offset.
//
// Bits are read most significant first within each byte, so bit index 0 is
// the top bit of byte 0 and index 9 is the second bit of byte 1. Integer
// readers assemble a field bit by bit; this lets fields start and end
// anywhere inside a byte.
//
// The big-endian flag of Uint, Int, BigUint and BigInt selects the fold order
// of the bits read, not a byte order: without it the first bit read is the
// most significant, with it the last bit read is.
package binary
