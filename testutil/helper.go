// Package testutil compares decoded records in tests.
package testutil

import (
	"math"
	"math/big"

	"github.com/google/go-cmp/cmp"
)

// AsBigInt converts the integer types decoders produce, and whole float64s
// as found in JSON, to a *big.Int. ok is false for anything else.
func AsBigInt(v any) (*big.Int, bool) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil, false
		}
		return x, true
	case int:
		return big.NewInt(int64(x)), true
	case int8:
		return big.NewInt(int64(x)), true
	case int16:
		return big.NewInt(int64(x)), true
	case int32:
		return big.NewInt(int64(x)), true
	case int64:
		return big.NewInt(x), true
	case uint:
		return new(big.Int).SetUint64(uint64(x)), true
	case uint8:
		return big.NewInt(int64(x)), true
	case uint16:
		return big.NewInt(int64(x)), true
	case uint32:
		return big.NewInt(int64(x)), true
	case uint64:
		return new(big.Int).SetUint64(x), true
	case float64:
		if math.Trunc(x) != x || math.IsInf(x, 0) {
			return nil, false
		}
		i, _ := big.NewFloat(x).Int(nil)
		return i, true
	default:
		return nil, false
	}
}

func bothIntegers(x, y any) bool {
	_, xOk := AsBigInt(x)
	_, yOk := AsBigInt(y)
	return xOk && yOk
}

// NumericComparer treats integers of any type as equal when their values
// are, so a record decoded to uint32 and *big.Int compares against plain
// ints.
var NumericComparer = cmp.FilterValues(bothIntegers, cmp.Comparer(func(x, y any) bool {
	xi, _ := AsBigInt(x)
	yi, _ := AsBigInt(y)
	return xi.Cmp(yi) == 0
}))

// RecordDiff is cmp.Diff with NumericComparer. It returns "" when want and
// got hold the same values.
func RecordDiff(want, got any) string {
	return cmp.Diff(want, got, NumericComparer)
}

// FilterMapKeys recursively keeps the keys of source that reference has.
func FilterMapKeys(source, reference map[string]any) map[string]any {
	result := make(map[string]any)
	for key, refVal := range reference {
		srcVal, ok := source[key]
		if !ok {
			continue
		}
		refSub, refIsMap := refVal.(map[string]any)
		srcSub, srcIsMap := srcVal.(map[string]any)
		if refIsMap && srcIsMap {
			result[key] = FilterMapKeys(srcSub, refSub)
			continue
		}
		result[key] = srcVal
	}
	return result
}
