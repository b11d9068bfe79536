package cel

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// FieldFunctions returns CEL functions over decoded field values: abs, sum,
// first, last, list_min and list_max.
func FieldFunctions() cel.EnvOption {
	return cel.Lib(&fieldLib{})
}

type fieldLib struct{}

func (*fieldLib) CompileOptions() []cel.EnvOption {
	anyList := cel.ListType(cel.AnyType)
	return []cel.EnvOption{
		cel.Function("abs",
			cel.Overload("abs_int", []*cel.Type{cel.IntType}, cel.IntType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					x, ok := val.(types.Int)
					if !ok {
						return types.NewErr("expected int argument to abs, got %T", val)
					}
					if x < 0 {
						return -x
					}
					return x
				}),
			),
			cel.Overload("abs_double", []*cel.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					x, ok := val.(types.Double)
					if !ok {
						return types.NewErr("expected double argument to abs, got %T", val)
					}
					if x < 0 {
						return -x
					}
					return x
				}),
			),
		),
		cel.Function("sum",
			cel.Overload("sum_list", []*cel.Type{anyList}, cel.IntType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					list, size, err := asList("sum", val)
					if err != nil {
						return err
					}
					var total types.Int
					for i := types.Int(0); i < size; i++ {
						x, ok := list.Get(i).(types.Int)
						if !ok {
							return types.NewErr("sum: element %d is not an int", i)
						}
						total += x
					}
					return total
				}),
			),
		),
		cel.Function("first",
			cel.Overload("first_list", []*cel.Type{anyList}, cel.AnyType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					list, _, err := asNonEmptyList("first", val)
					if err != nil {
						return err
					}
					return list.Get(types.Int(0))
				}),
			),
		),
		cel.Function("last",
			cel.Overload("last_list", []*cel.Type{anyList}, cel.AnyType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					list, size, err := asNonEmptyList("last", val)
					if err != nil {
						return err
					}
					return list.Get(size - 1)
				}),
			),
		),
		cel.Function("list_min",
			cel.Overload("list_min_list", []*cel.Type{anyList}, cel.AnyType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return extreme("list_min", val, types.IntNegOne)
				}),
			),
		),
		cel.Function("list_max",
			cel.Overload("list_max_list", []*cel.Type{anyList}, cel.AnyType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return extreme("list_max", val, types.IntOne)
				}),
			),
		),
	}
}

func (*fieldLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

func asList(fn string, val ref.Val) (traits.Lister, types.Int, ref.Val) {
	list, ok := val.(traits.Lister)
	if !ok {
		return nil, 0, types.NewErr("expected list for %s function", fn)
	}
	size, ok := list.Size().(types.Int)
	if !ok {
		return nil, 0, types.NewErr("%s: list has no size", fn)
	}
	return list, size, nil
}

func asNonEmptyList(fn string, val ref.Val) (traits.Lister, types.Int, ref.Val) {
	list, size, err := asList(fn, val)
	if err != nil {
		return nil, 0, err
	}
	if size == 0 {
		return nil, 0, types.NewErr("%s: empty list", fn)
	}
	return list, size, nil
}

// extreme keeps the element that compares as want against every other.
func extreme(fn string, val ref.Val, want types.Int) ref.Val {
	list, size, err := asNonEmptyList(fn, val)
	if err != nil {
		return err
	}
	best := list.Get(types.Int(0))
	for i := types.Int(1); i < size; i++ {
		elem := list.Get(i)
		c, ok := elem.(traits.Comparer)
		if !ok {
			return types.NewErr("%s: element %d is not comparable", fn, i)
		}
		if c.Compare(best) == want {
			best = elem
		}
	}
	return best
}
