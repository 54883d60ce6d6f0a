// Package column holds the in-memory, row-appendable columnar representation
// used to assemble an INSERT's row batch before it is sorted and split into
// granules (spec §4.6). This is distinct from internal/granule's on-disk,
// zero-copy archived view: columns here are mutable, grow by Append, and
// carry a parallel Nulls slice rather than a packed bitmap, since the row
// count isn't known up front.
package column

import (
	"github.com/touchhouse/touchhouse/internal/types"
)

// Column is a growable in-memory array of a single DataType, plus Null
// tracking. Value(i) returns untyped nil for a Null row; Append(nil) marks
// one.
type Column interface {
	DataType() types.DataType
	Len() int
	Value(i int) types.Value
	Append(v types.Value)
	Slice(from, to int) Column
	Clone() Column
}

// NewColumn creates an empty column of the given type.
func NewColumn(dt types.DataType) Column {
	return NewColumnWithCapacity(dt, 0)
}

// NewColumnWithCapacity creates a column pre-allocated for n rows.
func NewColumnWithCapacity(dt types.DataType, n int) Column {
	switch dt {
	case types.TypeString:
		return &StringColumn{Data: make([]string, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeUuid:
		return &UuidColumn{Data: make([]types.Uuid, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeBool:
		return &BoolColumn{Data: make([]bool, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeInt8:
		return &Int8Column{Data: make([]int8, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeInt16:
		return &Int16Column{Data: make([]int16, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeInt32:
		return &Int32Column{Data: make([]int32, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeInt64:
		return &Int64Column{Data: make([]int64, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeUInt8:
		return &UInt8Column{Data: make([]uint8, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeUInt16:
		return &UInt16Column{Data: make([]uint16, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeUInt32:
		return &UInt32Column{Data: make([]uint32, 0, n), Nulls: make([]bool, 0, n)}
	case types.TypeUInt64:
		return &UInt64Column{Data: make([]uint64, 0, n), Nulls: make([]bool, 0, n)}
	default:
		panic("column: unsupported data type")
	}
}

// --- StringColumn ---

type StringColumn struct {
	Data  []string
	Nulls []bool
}

func (c *StringColumn) DataType() types.DataType { return types.TypeString }
func (c *StringColumn) Len() int                 { return len(c.Data) }
func (c *StringColumn) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *StringColumn) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, "")
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(string))
	c.Nulls = append(c.Nulls, false)
}
func (c *StringColumn) Slice(from, to int) Column {
	d := make([]string, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &StringColumn{Data: d, Nulls: n}
}
func (c *StringColumn) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- UuidColumn ---

type UuidColumn struct {
	Data  []types.Uuid
	Nulls []bool
}

func (c *UuidColumn) DataType() types.DataType { return types.TypeUuid }
func (c *UuidColumn) Len() int                 { return len(c.Data) }
func (c *UuidColumn) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *UuidColumn) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, types.Uuid{})
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(types.Uuid))
	c.Nulls = append(c.Nulls, false)
}
func (c *UuidColumn) Slice(from, to int) Column {
	d := make([]types.Uuid, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &UuidColumn{Data: d, Nulls: n}
}
func (c *UuidColumn) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- BoolColumn ---

type BoolColumn struct {
	Data  []bool
	Nulls []bool
}

func (c *BoolColumn) DataType() types.DataType { return types.TypeBool }
func (c *BoolColumn) Len() int                 { return len(c.Data) }
func (c *BoolColumn) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *BoolColumn) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, false)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(bool))
	c.Nulls = append(c.Nulls, false)
}
func (c *BoolColumn) Slice(from, to int) Column {
	d := make([]bool, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &BoolColumn{Data: d, Nulls: n}
}
func (c *BoolColumn) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- Int8Column ---

type Int8Column struct {
	Data  []int8
	Nulls []bool
}

func (c *Int8Column) DataType() types.DataType { return types.TypeInt8 }
func (c *Int8Column) Len() int                 { return len(c.Data) }
func (c *Int8Column) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *Int8Column) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, 0)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(int8))
	c.Nulls = append(c.Nulls, false)
}
func (c *Int8Column) Slice(from, to int) Column {
	d := make([]int8, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &Int8Column{Data: d, Nulls: n}
}
func (c *Int8Column) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- Int16Column ---

type Int16Column struct {
	Data  []int16
	Nulls []bool
}

func (c *Int16Column) DataType() types.DataType { return types.TypeInt16 }
func (c *Int16Column) Len() int                 { return len(c.Data) }
func (c *Int16Column) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *Int16Column) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, 0)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(int16))
	c.Nulls = append(c.Nulls, false)
}
func (c *Int16Column) Slice(from, to int) Column {
	d := make([]int16, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &Int16Column{Data: d, Nulls: n}
}
func (c *Int16Column) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- Int32Column ---

type Int32Column struct {
	Data  []int32
	Nulls []bool
}

func (c *Int32Column) DataType() types.DataType { return types.TypeInt32 }
func (c *Int32Column) Len() int                 { return len(c.Data) }
func (c *Int32Column) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *Int32Column) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, 0)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(int32))
	c.Nulls = append(c.Nulls, false)
}
func (c *Int32Column) Slice(from, to int) Column {
	d := make([]int32, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &Int32Column{Data: d, Nulls: n}
}
func (c *Int32Column) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- Int64Column ---

type Int64Column struct {
	Data  []int64
	Nulls []bool
}

func (c *Int64Column) DataType() types.DataType { return types.TypeInt64 }
func (c *Int64Column) Len() int                 { return len(c.Data) }
func (c *Int64Column) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *Int64Column) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, 0)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(int64))
	c.Nulls = append(c.Nulls, false)
}
func (c *Int64Column) Slice(from, to int) Column {
	d := make([]int64, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &Int64Column{Data: d, Nulls: n}
}
func (c *Int64Column) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- UInt8Column ---

type UInt8Column struct {
	Data  []uint8
	Nulls []bool
}

func (c *UInt8Column) DataType() types.DataType { return types.TypeUInt8 }
func (c *UInt8Column) Len() int                 { return len(c.Data) }
func (c *UInt8Column) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *UInt8Column) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, 0)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(uint8))
	c.Nulls = append(c.Nulls, false)
}
func (c *UInt8Column) Slice(from, to int) Column {
	d := make([]uint8, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &UInt8Column{Data: d, Nulls: n}
}
func (c *UInt8Column) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- UInt16Column ---

type UInt16Column struct {
	Data  []uint16
	Nulls []bool
}

func (c *UInt16Column) DataType() types.DataType { return types.TypeUInt16 }
func (c *UInt16Column) Len() int                 { return len(c.Data) }
func (c *UInt16Column) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *UInt16Column) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, 0)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(uint16))
	c.Nulls = append(c.Nulls, false)
}
func (c *UInt16Column) Slice(from, to int) Column {
	d := make([]uint16, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &UInt16Column{Data: d, Nulls: n}
}
func (c *UInt16Column) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- UInt32Column ---

type UInt32Column struct {
	Data  []uint32
	Nulls []bool
}

func (c *UInt32Column) DataType() types.DataType { return types.TypeUInt32 }
func (c *UInt32Column) Len() int                 { return len(c.Data) }
func (c *UInt32Column) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *UInt32Column) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, 0)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(uint32))
	c.Nulls = append(c.Nulls, false)
}
func (c *UInt32Column) Slice(from, to int) Column {
	d := make([]uint32, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &UInt32Column{Data: d, Nulls: n}
}
func (c *UInt32Column) Clone() Column { return c.Slice(0, len(c.Data)) }

// --- UInt64Column ---

type UInt64Column struct {
	Data  []uint64
	Nulls []bool
}

func (c *UInt64Column) DataType() types.DataType { return types.TypeUInt64 }
func (c *UInt64Column) Len() int                 { return len(c.Data) }
func (c *UInt64Column) Value(i int) types.Value {
	if c.Nulls[i] {
		return nil
	}
	return c.Data[i]
}
func (c *UInt64Column) Append(v types.Value) {
	if v == nil {
		c.Data = append(c.Data, 0)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Data = append(c.Data, v.(uint64))
	c.Nulls = append(c.Nulls, false)
}
func (c *UInt64Column) Slice(from, to int) Column {
	d := make([]uint64, to-from)
	copy(d, c.Data[from:to])
	n := make([]bool, to-from)
	copy(n, c.Nulls[from:to])
	return &UInt64Column{Data: d, Nulls: n}
}
func (c *UInt64Column) Clone() Column { return c.Slice(0, len(c.Data)) }
