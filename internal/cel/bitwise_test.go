package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitwiseFunctions(t *testing.T) {
	pool, err := NewProgramPool()
	require.NoError(t, err)

	tests := []struct {
		expr string
		vars map[string]any
		want any
	}{
		{"bitAnd(flags, 0x0F)", map[string]any{"flags": uint32(0xA5)}, int64(5)},
		{"bitOr(flags, 0x0F)", map[string]any{"flags": uint32(0xA0)}, int64(0xAF)},
		{"bitXor(flags, 0xFF)", map[string]any{"flags": uint32(0xA5)}, int64(0x5A)},
		{"bitShiftLeft(1, 4)", nil, int64(16)},
		{"bitShiftRight(flags, 4)", map[string]any{"flags": int32(0xA5)}, int64(10)},
		{"bitShiftRight(18446744073709551615u, 60)", nil, uint64(15)},
		{"bitOr(9223372036854775808u, 1)", nil, uint64(1<<63 | 1)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := pool.Evaluate(tt.expr, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = pool.Evaluate("bitShiftLeft(1, -1)", nil)
	assert.ErrorContains(t, err, "shift amount cannot be negative")
	_, err = pool.Evaluate(`bitAnd("a", 1)`, nil)
	assert.ErrorContains(t, err, "bitwise arguments must be integers")
}
