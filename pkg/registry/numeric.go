package registry

import "math"

// AsFloat converts any Go numeric value to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// asInt converts signed and unsigned integer kinds to int64.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// NumbersEqual compares two values numerically when both are numbers,
// so 7 and 7.0 are the same value.
func NumbersEqual(a, b any) (equal bool, numeric bool) {
	fa, aok := AsFloat(a)
	fb, bok := AsFloat(b)
	if !aok || !bok {
		return false, false
	}
	return fa == fb, true
}

// addNumbers adds two numbers, keeping an integer result when both are
// integers. Two plain ints stay int; other integer pairs widen to int64.
func addNumbers(a, b any) (any, bool) {
	ia, aInt := asInt(a)
	ib, bInt := asInt(b)
	if aInt && bInt {
		_, plainA := a.(int)
		_, plainB := b.(int)
		if plainA && plainB {
			return int(ia + ib), true
		}
		return ia + ib, true
	}
	fa, aok := AsFloat(a)
	fb, bok := AsFloat(b)
	if !aok || !bok {
		return nil, false
	}
	return fa + fb, true
}

// zeroLike returns the zero of the numeric family of v.
func zeroLike(v any) (any, bool) {
	if _, ok := v.(int); ok {
		return 0, true
	}
	if _, ok := asInt(v); ok {
		return int64(0), true
	}
	if _, ok := AsFloat(v); ok {
		return 0.0, true
	}
	return nil, false
}

func isNegative(v any) bool {
	f, ok := AsFloat(v)
	return ok && f < 0
}
