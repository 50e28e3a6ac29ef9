package script

import (
	"fmt"
	"strconv"
	"strings"
)

// ToNumber coerces a value to a float64. Accepts all numeric types plus
// numeric-looking strings. Anything else reports false.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Truthy reports JS-style truthiness: nil, false, zero and the empty
// string are falsy; everything else is truthy. Numeric-looking strings
// coerce first, so a stored "0" is falsy like the number it names.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		if n, ok := ToNumber(t); ok {
			return n != 0
		}
		return t != ""
	default:
		if n, ok := ToNumber(v); ok {
			return n != 0
		}
		return true
	}
}

// LooseEqual compares two resolved values the way authored conditions
// expect: numerically when both sides coerce to numbers, otherwise by
// string form. nil equals only nil.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	an, aok := ToNumber(a)
	bn, bok := ToNumber(b)
	if aok && bok {
		return an == bn
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// ContainsText reports whether haystack contains needle, ignoring case.
// Non-string values are compared by their string form.
func ContainsText(haystack, needle any) bool {
	h, hok := haystack.(string)
	if !hok {
		h = fmt.Sprint(haystack)
	}
	n, nok := needle.(string)
	if !nok {
		n = fmt.Sprint(needle)
	}
	if n == "" {
		return false
	}
	return strings.Contains(strings.ToLower(h), strings.ToLower(n))
}
