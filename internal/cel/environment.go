package cel

import (
	"fmt"
	"math/big"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// NewEnvironment creates the CEL environment layout checks are compiled in:
// the standard library, bitwise, field and error helpers, with an adapter
// for the integer types binary parsers produce.
func NewEnvironment() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.CustomTypeAdapter(NewFieldTypeAdapter()),
		cel.StdLib(),
		cel.CrossTypeNumericComparisons(true),
		BitwiseFunctions(),
		FieldFunctions(),
		ErrorHandlingFunctions(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

func ErrorHandlingFunctions() cel.EnvOption {
	return cel.Lib(&errorLib{})
}

type errorLib struct{}

func (*errorLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("error",
			cel.Overload("error_string", []*cel.Type{cel.StringType}, cel.AnyType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					msg, ok := val.(types.String)
					if !ok {
						return types.NewErr("expected string for error message")
					}
					return types.NewErr("%s", msg)
				}),
			),
		),
		cel.Function("isError",
			cel.Overload("iserror_any", []*cel.Type{cel.AnyType}, cel.BoolType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return types.Bool(types.IsError(val))
				}),
			),
		),
	}
}

func (*errorLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// FieldTypeAdapter extends the default adapter with the fixed width and
// arbitrary precision integers decoded fields carry.
type FieldTypeAdapter struct {
	types.Adapter
}

// NewFieldTypeAdapter wraps types.DefaultTypeAdapter.
func NewFieldTypeAdapter() *FieldTypeAdapter {
	return &FieldTypeAdapter{Adapter: types.DefaultTypeAdapter}
}

// NativeToValue maps sized integers to CEL int, and *big.Int to int, uint or
// double depending on its magnitude.
func (a *FieldTypeAdapter) NativeToValue(value any) ref.Val {
	switch v := value.(type) {
	case int8:
		return types.Int(v)
	case int16:
		return types.Int(v)
	case int32:
		return types.Int(v)
	case uint8:
		return types.Int(v)
	case uint16:
		return types.Int(v)
	case uint32:
		return types.Int(v)
	case float32:
		return types.Double(v)
	case *big.Int:
		switch {
		case v.IsInt64():
			return types.Int(v.Int64())
		case v.IsUint64():
			return types.Uint(v.Uint64())
		default:
			f, _ := new(big.Float).SetInt(v).Float64()
			return types.Double(f)
		}
	case []any:
		out := make([]ref.Val, len(v))
		for i, item := range v {
			out[i] = a.NativeToValue(item)
		}
		return types.NewRefValList(a, out)
	default:
		return a.Adapter.NativeToValue(value)
	}
}
