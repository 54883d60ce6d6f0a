// Package types defines the scalar value model shared by every layer of the
// engine: the column data types, the tagged Value representation, and the
// total order each type imposes.
package types

import (
	"fmt"
	"strings"
)

// DataType is the tag of a column's scalar type. The set is closed and
// matches the eleven concrete value kinds the wire format and on-disk
// granule encoding understand; Null is not a DataType of its own — it is
// the Go untyped nil occupying a Value slot in a nullable column.
type DataType uint8

const (
	TypeString DataType = iota
	TypeUuid
	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
)

var typeNames = [...]string{
	TypeString: "String",
	TypeUuid:   "Uuid",
	TypeBool:   "Bool",
	TypeInt8:   "Int8",
	TypeInt16:  "Int16",
	TypeInt32:  "Int32",
	TypeInt64:  "Int64",
	TypeUInt8:  "UInt8",
	TypeUInt16: "UInt16",
	TypeUInt32: "UInt32",
	TypeUInt64: "UInt64",
}

// Name returns the canonical, user-facing name of the type.
func (dt DataType) Name() string {
	if int(dt) < len(typeNames) {
		return typeNames[dt]
	}
	return "Unknown"
}

// FixedSize returns the number of bytes a non-null value of this type
// occupies in a granule payload, or 0 for String (variable length, u32
// length prefix).
func (dt DataType) FixedSize() int {
	switch dt {
	case TypeUuid:
		return 16
	case TypeBool, TypeInt8, TypeUInt8:
		return 1
	case TypeInt16, TypeUInt16:
		return 2
	case TypeInt32, TypeUInt32:
		return 4
	case TypeInt64, TypeUInt64:
		return 8
	default:
		return 0
	}
}

// IsInteger reports whether dt is one of the signed/unsigned integer types.
func (dt DataType) IsInteger() bool {
	switch dt {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		return true
	default:
		return false
	}
}

// ParseDataType converts a case-insensitive type name into a DataType.
func ParseDataType(name string) (DataType, error) {
	n := strings.TrimSpace(name)
	for dt, candidate := range typeNames {
		if strings.EqualFold(candidate, n) {
			return DataType(dt), nil
		}
	}
	return 0, fmt.Errorf("unknown data type: %s", name)
}

// Uuid is a 128-bit value compared as a big-endian unsigned integer.
type Uuid [16]byte

// Value is a single scalar. Concrete Go representations:
//
//	String -> string          Uuid   -> types.Uuid       Bool -> bool
//	Int8   -> int8            Int16  -> int16            Int32 -> int32   Int64 -> int64
//	UInt8  -> uint8           UInt16 -> uint16            UInt32 -> uint32  UInt64 -> uint64
//
// nil represents Null regardless of the column's declared type.
type Value = any
