package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"

	"github.com/twinfer/combo/internal/cel"
	"github.com/twinfer/combo/pkg/binary"
	"github.com/twinfer/combo/pkg/combo"
)

// ErrValidation is wrapped by the error of a field whose valid check is
// false.
var ErrValidation = errors.New("validation failed")

// ErrCountExceedsInput is wrapped by the error of a repeated field whose
// count needs more bits than the buffer has left.
var ErrCountExceedsInput = errors.New("repeat count exceeds input")

// FieldError locates a decoding failure.
type FieldError struct {
	Field string
	// Index is the bit offset at which the field failed.
	Index int
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q @ index %d: %v", e.Field, e.Index, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Decoder decodes records of one layout. It is safe for concurrent use.
type Decoder struct {
	layout *Layout
	parser *binary.Parser
	logger *slog.Logger
}

type compiledField struct {
	Field
	read  *binary.Parser
	width int // bits per value, 0 for value fields
	cond  *expression
	count *expression
	value *expression
}

// Compile turns a layout into a Decoder. Type names and expressions are
// checked here, so a compiled decoder only fails on data.
func Compile(l *Layout, opts ...Option) (*Decoder, error) {
	o := applyOptions(opts)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	pool := o.pool
	if pool == nil {
		var err error
		if pool, err = newProgramPool(); err != nil {
			return nil, fmt.Errorf("creating CEL pool: %w", err)
		}
	}

	bigEndian := l.Meta.BitEndian == "be"
	fields := make([]*compiledField, 0, len(l.Seq))
	for _, f := range l.Seq {
		cf, err := compileField(f, bigEndian, pool)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", ErrInvalidLayout, f.ID, err)
		}
		if cf.read != nil && o.trace {
			cf.read = combo.Trace(cf.read, l.Meta.ID+"."+f.ID, o.logger)
		}
		fields = append(fields, cf)
	}

	d := &Decoder{layout: l, logger: o.logger.With("layout", l.Meta.ID)}
	d.parser = binary.Contextual(func(yield func(*binary.Parser) any) any {
		rec := make(map[string]any, len(fields))
		for _, f := range fields {
			f.decode(yield, rec, pool)
		}
		return rec
	}).Named(l.Meta.ID)
	return d, nil
}

func compileField(f Field, bigEndian bool, pool *cel.ProgramPool) (*compiledField, error) {
	cf := &compiledField{Field: f}
	var err error

	switch {
	case f.Type != "":
		t, err := parseType(f.Type, bigEndian)
		if err != nil {
			return nil, err
		}
		cf.read = t.parser()
		cf.width = t.bits
	case len(f.Contents) > 0:
		cf.read = binary.Match(f.Contents)
		cf.width = len(f.Contents) * 8
	default:
		if cf.value, err = compileExpression(f.Value); err != nil {
			return nil, err
		}
	}

	if f.Repeat == RepeatEOS {
		cf.read = binary.Sequence(binary.Many(cf.read), binary.EOF).Map(func(v any, _ int, _ []byte) any {
			return v.([]any)[0]
		})
	}
	if cf.read != nil {
		cf.read = cf.read.MapError(cf.wrapError)
	}
	if f.Repeat == RepeatExpr {
		if cf.count, err = compileExpression(f.RepeatExpr); err != nil {
			return nil, err
		}
	}
	if f.If != "" {
		if cf.cond, err = compileExpression(f.If); err != nil {
			return nil, err
		}
	}
	if f.Valid != "" {
		if _, err := pool.Program(f.Valid); err != nil {
			return nil, err
		}
	}
	return cf, nil
}

// decode reads the field into rec. A failure is yielded as a failing parser,
// which ends the procedure.
func (f *compiledField) decode(yield func(*binary.Parser) any, rec map[string]any, pool *cel.ProgramPool) {
	if f.cond != nil {
		ok, err := f.cond.evalBool(rec)
		if err != nil {
			yield(f.fail(err))
			return
		}
		if !ok {
			return
		}
	}

	var v any
	switch {
	case f.value != nil:
		out, err := f.value.eval(rec)
		if err != nil {
			yield(f.fail(err))
			return
		}
		v = out
	case f.count != nil:
		n, err := f.count.evalCount(rec)
		if err != nil {
			yield(f.fail(err))
			return
		}
		v = []any{}
		if n > 0 {
			yield(f.fits(n))
			v = yield(binary.Times(f.read, n).MapError(f.wrapError))
		}
	default:
		v = yield(f.read)
	}
	rec[f.ID] = v

	if f.Valid == "" {
		return
	}
	vars := maps.Clone(rec)
	vars["_"] = v
	ok, err := pool.EvaluateBool(f.Valid, vars)
	if err != nil {
		yield(f.fail(err))
		return
	}
	if !ok {
		yield(f.fail(fmt.Errorf("%w: %s", ErrValidation, f.Valid)))
	}
}

// fits fails the field when n values cannot be read from the bits left.
func (f *compiledField) fits(n int) *binary.Parser {
	return binary.New(func(s binary.State) binary.State {
		left := max(len(s.Source)*8-s.Index, 0)
		if n > left/f.width {
			return combo.Fail(s, &FieldError{Field: f.ID, Index: s.Index,
				Err: fmt.Errorf("%w: %d values of %d bits, %d bits left", ErrCountExceedsInput, n, f.width, left)})
		}
		return combo.Ok(s, nil, s.Index)
	})
}

// fail is a parser failing at the cursor with a FieldError.
func (f *compiledField) fail(err error) *binary.Parser {
	return binary.New(func(s binary.State) binary.State {
		return combo.Fail(s, &FieldError{Field: f.ID, Index: s.Index, Err: err})
	})
}

// wrapError turns a parse failure payload into a FieldError. FieldErrors
// pass through.
func (f *compiledField) wrapError(payload any, index int, _ []byte) any {
	var fe *FieldError
	if err, ok := payload.(error); ok && errors.As(err, &fe) {
		return payload
	}
	return &FieldError{Field: f.ID, Index: index, Err: asError(payload)}
}

func asError(payload any) error {
	if err, ok := payload.(error); ok {
		return err
	}
	return errors.New(fmt.Sprint(payload))
}

// Layout returns the layout the decoder was compiled from.
func (d *Decoder) Layout() *Layout { return d.layout }

// Parser returns the binary parser behind the decoder, so a record can be
// embedded in a larger grammar. Its result is a map[string]any.
func (d *Decoder) Parser() *binary.Parser { return d.parser }

// Decode decodes one record from the start of data. Bits left over after the
// last field are ignored.
func (d *Decoder) Decode(ctx context.Context, data []byte) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.logger.DebugContext(ctx, "Decoding record", "bytes", len(data))

	s := d.parser.Parse(data)
	if err := s.Err(); err != nil {
		d.logger.DebugContext(ctx, "Decoding failed", "error", err)
		return nil, fmt.Errorf("decoding %s: %w", d.layout.Meta.ID, err)
	}

	d.logger.DebugContext(ctx, "Decoded record", "bits", s.Index, "trailing_bits", len(data)*8-s.Index)
	return s.Result.(map[string]any), nil
}

// DecodeAll decodes records back to back until less than a byte of data is
// left. The failure of any record fails the whole buffer.
func (d *Decoder) DecodeAll(ctx context.Context, data []byte) ([]map[string]any, error) {
	var recs []map[string]any
	s := binary.State{Source: data}
	for len(data)*8-s.Index >= 8 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := d.parser.Run(s)
		if err := next.Err(); err != nil {
			return nil, fmt.Errorf("decoding %s record %d: %w", d.layout.Meta.ID, len(recs), err)
		}
		if next.Index == s.Index {
			return nil, fmt.Errorf("decoding %s record %d: layout consumed no input @ index %d",
				d.layout.Meta.ID, len(recs), s.Index)
		}
		recs = append(recs, next.Result.(map[string]any))
		s = binary.State{Source: data, Index: next.Index}
	}
	d.logger.DebugContext(ctx, "Decoded records", "records", len(recs), "bytes", len(data))
	return recs, nil
}

// DecodeStream decodes the rest of a kaitai stream.
func (d *Decoder) DecodeStream(ctx context.Context, stream *kaitai.Stream) (map[string]any, error) {
	data, err := binary.FromStream(stream)
	if err != nil {
		return nil, err
	}
	return d.Decode(ctx, data)
}

// DecodeJSON decodes a record and marshals it as indented JSON.
func (d *Decoder) DecodeJSON(ctx context.Context, data []byte) ([]byte, error) {
	rec, err := d.Decode(ctx, data)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling to JSON: %w", err)
	}
	return out, nil
}
