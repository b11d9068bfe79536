// Package layout decodes binary records described in YAML.
//
// A layout lists fields in reading order:
//
//	meta:
//	  id: header
//	seq:
//	  - id: version
//	    type: u4
//	  - id: count
//	    type: u8
//	  - id: items
//	    type: s16
//	    repeat: expr
//	    repeat-expr: count
//	  - id: magic
//	    contents: [0xCA, 0xFE]
//	  - id: extra
//	    type: u8
//	    if: version > 1
//	  - id: total
//	    value: count * 2
//	    valid: total < 100
//
// Integer types are bN or uN (unsigned) and sN (signed) for any width, plus
// bit; fields may start at any bit. if, repeat-expr and value are expr-lang
// expressions over the fields decoded so far. valid is a CEL predicate over
// the same fields, with the field's own value also bound to _.
//
// A layout compiles into a single contextual binary parser, so a Decoder can
// also be embedded in a larger grammar through Decoder.Parser. DecodeAll
// reads records back to back from one buffer.
package layout
