package layout

import (
	"fmt"
	"math/big"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// expression is a compiled expr-lang program over earlier fields.
type expression struct {
	source  string
	program *vm.Program
}

func compileExpression(source string) (*expression, error) {
	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", source, err)
	}
	return &expression{source: source, program: program}, nil
}

func (e *expression) eval(fields map[string]any) (any, error) {
	out, err := expr.Run(e.program, exprEnv(fields))
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", e.source, err)
	}
	return out, nil
}

func (e *expression) evalBool(fields map[string]any) (bool, error) {
	out, err := e.eval(fields)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, not bool", e.source, out)
	}
	return b, nil
}

func (e *expression) evalCount(fields map[string]any) (int, error) {
	out, err := e.eval(fields)
	if err != nil {
		return 0, err
	}
	n, ok := toInt(out)
	if !ok || n < 0 {
		return 0, fmt.Errorf("expression %q returned %v, not a count", e.source, out)
	}
	return n, nil
}

// exprEnv exposes decoded fields to expr-lang. Fixed width integers become
// int, big integers become int64 when they fit and float64 otherwise; lists
// are converted element-wise.
func exprEnv(fields map[string]any) map[string]any {
	env := make(map[string]any, len(fields))
	for k, v := range fields {
		env[k] = exprValue(v)
	}
	return env
}

func exprValue(v any) any {
	switch x := v.(type) {
	case uint32:
		return int(x)
	case int32:
		return int(x)
	case *big.Int:
		if x.IsInt64() {
			return x.Int64()
		}
		f, _ := new(big.Float).SetInt(x).Float64()
		return f
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = exprValue(item)
		}
		return out
	default:
		return v
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
