package cel

import (
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// BitwiseFunctions declares bitAnd, bitOr, bitXor, bitShiftLeft and
// bitShiftRight, since CEL has no bitwise operators.
func BitwiseFunctions() cel.EnvOption {
	return cel.Lib(&bitwiseLib{})
}

// bitwiseOp applies op to two integers promoted to uint64. Results that fit an
// int64 come back as int.
func bitwiseOp(lhs, rhs ref.Val, op func(uint64, uint64) uint64) ref.Val {
	var l, r uint64
	var lOk, rOk bool

	switch lv := lhs.(type) {
	case types.Int:
		l = uint64(lv)
		lOk = true
	case types.Uint:
		l = uint64(lv)
		lOk = true
	}

	switch rv := rhs.(type) {
	case types.Int:
		r = uint64(rv)
		rOk = true
	case types.Uint:
		r = uint64(rv)
		rOk = true
	}

	if !lOk || !rOk {
		return types.NewErr("bitwise arguments must be integers, got %T and %T", lhs.Value(), rhs.Value())
	}

	result := op(l, r)
	if result <= math.MaxInt64 {
		return types.Int(result)
	}
	return types.Uint(result)
}

type bitwiseLib struct{}

func (*bitwiseLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("bitAnd",
			cel.Overload("bitand_numeric", []*cel.Type{cel.DynType, cel.DynType}, cel.DynType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return bitwiseOp(lhs, rhs, func(a, b uint64) uint64 { return a & b })
				}),
			),
		),

		cel.Function("bitOr",
			cel.Overload("bitor_numeric", []*cel.Type{cel.DynType, cel.DynType}, cel.DynType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return bitwiseOp(lhs, rhs, func(a, b uint64) uint64 { return a | b })
				}),
			),
		),

		cel.Function("bitXor",
			cel.Overload("bitxor_numeric", []*cel.Type{cel.DynType, cel.DynType}, cel.DynType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return bitwiseOp(lhs, rhs, func(a, b uint64) uint64 { return a ^ b })
				}),
			),
		),

		cel.Function("bitShiftLeft",
			cel.Overload("bitshiftleft_int_int", []*cel.Type{cel.IntType, cel.IntType}, cel.IntType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					left, ok1 := lhs.(types.Int)
					right, ok2 := rhs.(types.Int)
					if !ok1 || !ok2 {
						return types.NewErr("arguments to bitShiftLeft must be integers")
					}
					if right < 0 {
						return types.NewErr("shift amount cannot be negative: %v", right)
					}
					return types.Int(left << uint(right))
				}),
			),
			cel.Overload("bitshiftleft_uint_int", []*cel.Type{cel.UintType, cel.IntType}, cel.UintType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					left, ok1 := lhs.(types.Uint)
					right, ok2 := rhs.(types.Int)
					if !ok1 || !ok2 {
						return types.NewErr("arguments to bitShiftLeft must be uint and int")
					}
					if right < 0 {
						return types.NewErr("shift amount cannot be negative: %v", right)
					}
					return types.Uint(left << uint(right))
				}),
			),
		),

		cel.Function("bitShiftRight",
			cel.Overload("bitshiftright_int_int", []*cel.Type{cel.IntType, cel.IntType}, cel.IntType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					left, ok1 := lhs.(types.Int)
					right, ok2 := rhs.(types.Int)
					if !ok1 || !ok2 {
						return types.NewErr("arguments to bitShiftRight must be integers")
					}
					if right < 0 {
						return types.NewErr("shift amount cannot be negative: %v", right)
					}
					return types.Int(left >> uint(right))
				}),
			),
			cel.Overload("bitshiftright_uint_int", []*cel.Type{cel.UintType, cel.IntType}, cel.UintType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					left, ok1 := lhs.(types.Uint)
					right, ok2 := rhs.(types.Int)
					if !ok1 || !ok2 {
						return types.NewErr("arguments to bitShiftRight must be uint and int")
					}
					if right < 0 {
						return types.NewErr("shift amount cannot be negative: %v", right)
					}
					return types.Uint(left >> uint(right))
				}),
			),
		),
	}
}

func (*bitwiseLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
