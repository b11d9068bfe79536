package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout([]byte(`
meta:
  id: png_sig
  bit-endian: be
seq:
  - id: magic
    contents: [0x89, "PNG", 13, 10]
  - id: text
    contents: "IHDR"
  - id: width
    type: u32le
`))
	require.NoError(t, err)
	assert.Equal(t, "png_sig", l.Meta.ID)
	assert.Equal(t, "be", l.Meta.BitEndian)
	require.Len(t, l.Seq, 3)
	assert.Equal(t, Contents{0x89, 'P', 'N', 'G', 13, 10}, l.Seq[0].Contents)
	assert.Equal(t, Contents("IHDR"), l.Seq[1].Contents)
	assert.Equal(t, "u32le", l.Seq[2].Type)
}

func TestParseLayout_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"MissingID", "seq: [{id: a, type: u8}]", "meta.id is required"},
		{"NoFields", "meta: {id: x}", "seq must have at least one field"},
		{"BitEndian", "meta: {id: x, bit-endian: middle}\nseq: [{id: a, type: u8}]", `unknown bit-endian "middle"`},
		{"FieldWithoutID", "meta: {id: x}\nseq: [{type: u8}]", "seq[0] has no id"},
		{"Duplicate", "meta: {id: x}\nseq: [{id: a, type: u8}, {id: a, type: u8}]", `duplicate field "a"`},
		{"TwoKinds", "meta: {id: x}\nseq: [{id: a, type: u8, value: '1'}]", "exactly one of type, contents or value"},
		{"NoKind", "meta: {id: x}\nseq: [{id: a}]", "exactly one of type, contents or value"},
		{"RepeatExprMissing", "meta: {id: x}\nseq: [{id: a, type: u8, repeat: expr}]", "needs repeat-expr"},
		{"RepeatExprAlone", "meta: {id: x}\nseq: [{id: a, type: u8, repeat-expr: '2'}]", "repeat-expr without repeat"},
		{"RepeatUntil", "meta: {id: x}\nseq: [{id: a, type: u8, repeat: until}]", `unsupported repeat "until"`},
		{"RepeatContents", "meta: {id: x}\nseq: [{id: a, contents: [1], repeat: eos}]", "repeats but has no type"},
		{"UnknownKey", "meta: {id: x}\nseq: [{id: a, type: u8, size: 4}]", "field size not found"},
		{"ContentsRange", "meta: {id: x}\nseq: [{id: a, contents: [256]}]", "out of range"},
		{"ContentsMap", "meta: {id: x}\nseq: [{id: a, contents: {a: 1}}]", "must be a string or a list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name      string
		layoutBE  bool
		want      fieldType
		wantError bool
	}{
		{"bit", false, fieldType{bits: 1}, false},
		{"b3", false, fieldType{bits: 3}, false},
		{"u8", true, fieldType{bits: 8, bigEndian: true}, false},
		{"u16le", true, fieldType{bits: 16}, false},
		{"s12be", false, fieldType{signed: true, bits: 12, bigEndian: true}, false},
		{"s128", false, fieldType{signed: true, bits: 128}, false},
		{"f4", false, fieldType{}, true},
		{"u0", false, fieldType{}, true},
		{"ube", false, fieldType{}, true},
		{"str", false, fieldType{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseType(tt.name, tt.layoutBE)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
