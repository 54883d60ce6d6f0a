package types

import "fmt"

// CompareOrdered compares two non-null values of the same DataType.
// Returns -1, 0, or 1. Callers must not pass nil; use CompareForSort or
// EvalCompare where a Null operand is possible.
func CompareOrdered(dt DataType, a, b Value) int {
	switch dt {
	case TypeString:
		return cmpOrdered(a.(string), b.(string))
	case TypeUuid:
		return cmpUuid(a.(Uuid), b.(Uuid))
	case TypeBool:
		return cmpBool(a.(bool), b.(bool))
	case TypeInt8:
		return cmpOrdered(a.(int8), b.(int8))
	case TypeInt16:
		return cmpOrdered(a.(int16), b.(int16))
	case TypeInt32:
		return cmpOrdered(a.(int32), b.(int32))
	case TypeInt64:
		return cmpOrdered(a.(int64), b.(int64))
	case TypeUInt8:
		return cmpOrdered(a.(uint8), b.(uint8))
	case TypeUInt16:
		return cmpOrdered(a.(uint16), b.(uint16))
	case TypeUInt32:
		return cmpOrdered(a.(uint32), b.(uint32))
	case TypeUInt64:
		return cmpOrdered(a.(uint64), b.(uint64))
	default:
		panic(fmt.Sprintf("CompareOrdered: unsupported type %s", dt.Name()))
	}
}

// CompareForSort totally orders values of the same DataType for ORDER BY
// and granule splitting, placing Null before every non-null value so a
// stable sort has a single well-defined outcome even on nullable columns.
func CompareForSort(dt DataType, a, b Value) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	return CompareOrdered(dt, a, b)
}

// CompareOp is a predicate comparison operator.
type CompareOp uint8

const (
	OpEQ CompareOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

// EvalCompare applies op to (a, b) under three-valued logic: if either
// operand is Null the result is always false — "Null compares unequal to
// everything including itself" (spec §4.7) — so a row carrying a Null in a
// compared column is never selected by that comparison.
func EvalCompare(dt DataType, a Value, op CompareOp, b Value) bool {
	if a == nil || b == nil {
		return false
	}
	c := CompareOrdered(dt, a, b)
	switch op {
	case OpEQ:
		return c == 0
	case OpNE:
		return c != 0
	case OpLT:
		return c < 0
	case OpLE:
		return c <= 0
	case OpGT:
		return c > 0
	case OpGE:
		return c >= 0
	default:
		panic("EvalCompare: unknown operator")
	}
}

// ValueToString renders a value for logging/diagnostics. Not used for any
// on-disk or wire encoding.
func ValueToString(v Value) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

type ordered interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

// cmpUuid compares two Uuid values as 128-bit big-endian unsigned integers.
func cmpUuid(a, b Uuid) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
