package layout

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Layout describes a binary record as an ordered list of fields.
type Layout struct {
	Meta Meta    `yaml:"meta"`
	Seq  []Field `yaml:"seq"`
	Doc  string  `yaml:"doc,omitempty"`
}

// Meta holds layout-wide settings.
type Meta struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title,omitempty"`
	// BitEndian is the default fold order of integer fields: "le" (the
	// default) makes the first bit read the most significant, "be" the last.
	BitEndian string `yaml:"bit-endian,omitempty"`
}

// Field is one entry of a layout sequence. Exactly one of Type, Contents and
// Value is set.
type Field struct {
	ID         string   `yaml:"id"`
	Type       string   `yaml:"type,omitempty"`
	Contents   Contents `yaml:"contents,omitempty"`
	Value      string   `yaml:"value,omitempty"`
	Repeat     string   `yaml:"repeat,omitempty"`
	RepeatExpr string   `yaml:"repeat-expr,omitempty"`
	If         string   `yaml:"if,omitempty"`
	Valid      string   `yaml:"valid,omitempty"`
	Doc        string   `yaml:"doc,omitempty"`
}

// Repeat modes.
const (
	RepeatNone = ""
	RepeatExpr = "expr"
	RepeatEOS  = "eos"
)

// Contents is a fixed byte signature. In YAML it is either a string, taken
// byte for byte, or a list mixing byte values and strings.
type Contents []byte

// UnmarshalYAML accepts `contents: "PNG"` as well as
// `contents: [0x89, "PNG", 13, 10]`.
func (c *Contents) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*c = Contents(s)
		return nil
	case yaml.SequenceNode:
		var out []byte
		for _, item := range value.Content {
			var n int
			if err := item.Decode(&n); err == nil {
				if n < 0 || n > 0xff {
					return fmt.Errorf("line %d: contents byte %d out of range", item.Line, n)
				}
				out = append(out, byte(n))
				continue
			}
			var s string
			if err := item.Decode(&s); err != nil {
				return fmt.Errorf("line %d: contents items must be bytes or strings", item.Line)
			}
			out = append(out, s...)
		}
		*c = out
		return nil
	default:
		return fmt.Errorf("line %d: contents must be a string or a list", value.Line)
	}
}

// ErrInvalidLayout is wrapped by every validation failure.
var ErrInvalidLayout = errors.New("invalid layout")

// ParseLayout decodes a YAML layout. Unknown keys are rejected.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks the structure of the layout. Expressions and type names
// are checked by Compile.
func (l *Layout) Validate() error {
	if l.Meta.ID == "" {
		return fmt.Errorf("%w: meta.id is required", ErrInvalidLayout)
	}
	switch l.Meta.BitEndian {
	case "", "le", "be":
	default:
		return fmt.Errorf("%w: unknown bit-endian %q", ErrInvalidLayout, l.Meta.BitEndian)
	}
	if len(l.Seq) == 0 {
		return fmt.Errorf("%w: seq must have at least one field", ErrInvalidLayout)
	}

	seen := make(map[string]bool, len(l.Seq))
	for i, f := range l.Seq {
		if f.ID == "" {
			return fmt.Errorf("%w: seq[%d] has no id", ErrInvalidLayout, i)
		}
		if seen[f.ID] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidLayout, f.ID)
		}
		seen[f.ID] = true

		kinds := 0
		for _, set := range []bool{f.Type != "", len(f.Contents) > 0, f.Value != ""} {
			if set {
				kinds++
			}
		}
		if kinds != 1 {
			return fmt.Errorf("%w: field %q needs exactly one of type, contents or value", ErrInvalidLayout, f.ID)
		}

		switch f.Repeat {
		case RepeatNone:
			if f.RepeatExpr != "" {
				return fmt.Errorf("%w: field %q has repeat-expr without repeat: expr", ErrInvalidLayout, f.ID)
			}
		case RepeatExpr:
			if f.RepeatExpr == "" {
				return fmt.Errorf("%w: field %q needs repeat-expr", ErrInvalidLayout, f.ID)
			}
		case RepeatEOS:
		default:
			return fmt.Errorf("%w: field %q has unsupported repeat %q", ErrInvalidLayout, f.ID, f.Repeat)
		}
		if f.Repeat != RepeatNone && f.Type == "" {
			return fmt.Errorf("%w: field %q repeats but has no type", ErrInvalidLayout, f.ID)
		}
	}
	return nil
}
