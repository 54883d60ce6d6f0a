package granule

import (
	"encoding/binary"
	"unsafe"

	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/types"
)

// ArchivedView is a zero-copy, read-only accessor over a decompressed
// granule payload: no row is materialized into a types.Value until asked
// for, and strings are sliced directly out of the backing buffer with
// unsafe.String rather than copied (spec §5, "zero-copy archived view").
// buf must outlive every ArchivedView built over it; callers hold a
// reference to the owning mmap handle for exactly that reason.
type ArchivedView struct {
	dt    types.DataType
	buf   []byte
	rows  int
	nulls NullBitmap
	offs  []uint32 // row start offsets within buf, String columns only
}

// NewArchivedView builds a view over a decompressed fixed-width or string
// payload for rows rows. nulls may be nil (no nulls present).
func NewArchivedView(dt types.DataType, buf []byte, rows int, nulls NullBitmap) (*ArchivedView, error) {
	v := &ArchivedView{dt: dt, buf: buf, rows: rows, nulls: nulls}
	if dt == types.TypeString {
		offs, err := scanStringOffsets(buf, rows)
		if err != nil {
			return nil, err
		}
		v.offs = offs
	} else {
		size := dt.FixedSize()
		if len(buf) != size*rows {
			return nil, errs.New(errs.CorruptGranule, "archived view size mismatch: got %d want %d", len(buf), size*rows)
		}
	}
	return v, nil
}

func scanStringOffsets(buf []byte, rows int) ([]uint32, error) {
	offs := make([]uint32, rows+1)
	off := 0
	for i := 0; i < rows; i++ {
		offs[i] = uint32(off)
		if off+4 > len(buf) {
			return nil, errs.New(errs.CorruptGranule, "string view truncated at row %d", i)
		}
		l := int(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4 + l
		if off > len(buf) {
			return nil, errs.New(errs.CorruptGranule, "string view row %d exceeds payload bounds", i)
		}
	}
	offs[rows] = uint32(off)
	return offs, nil
}

// Len reports the number of rows in the view.
func (v *ArchivedView) Len() int { return v.rows }

// IsNull reports whether row i holds Null.
func (v *ArchivedView) IsNull(i int) bool {
	return v.nulls.IsNull(i)
}

// StringAt returns row i's string without copying the underlying bytes.
// Valid only when the view's DataType is TypeString.
func (v *ArchivedView) StringAt(i int) string {
	start := v.offs[i] + 4
	end := v.offs[i+1]
	if end == start {
		return ""
	}
	return unsafe.String(&v.buf[start], end-start)
}

// BoolAt returns row i's value as bool.
func (v *ArchivedView) BoolAt(i int) bool { return v.buf[i] != 0 }

// Int8At returns row i's value as int8.
func (v *ArchivedView) Int8At(i int) int8 { return int8(v.buf[i]) }

// UInt8At returns row i's value as uint8.
func (v *ArchivedView) UInt8At(i int) uint8 { return v.buf[i] }

// Int16At returns row i's value as int16.
func (v *ArchivedView) Int16At(i int) int16 {
	return int16(binary.LittleEndian.Uint16(v.buf[i*2 : i*2+2]))
}

// UInt16At returns row i's value as uint16.
func (v *ArchivedView) UInt16At(i int) uint16 {
	return binary.LittleEndian.Uint16(v.buf[i*2 : i*2+2])
}

// Int32At returns row i's value as int32.
func (v *ArchivedView) Int32At(i int) int32 {
	return int32(binary.LittleEndian.Uint32(v.buf[i*4 : i*4+4]))
}

// UInt32At returns row i's value as uint32.
func (v *ArchivedView) UInt32At(i int) uint32 {
	return binary.LittleEndian.Uint32(v.buf[i*4 : i*4+4])
}

// Int64At returns row i's value as int64.
func (v *ArchivedView) Int64At(i int) int64 {
	return int64(binary.LittleEndian.Uint64(v.buf[i*8 : i*8+8]))
}

// UInt64At returns row i's value as uint64.
func (v *ArchivedView) UInt64At(i int) uint64 {
	return binary.LittleEndian.Uint64(v.buf[i*8 : i*8+8])
}

// UuidAt returns row i's value as a types.Uuid.
func (v *ArchivedView) UuidAt(i int) types.Uuid {
	var u types.Uuid
	copy(u[:], v.buf[i*16:i*16+16])
	return u
}

// ValueAt materializes row i as a types.Value, allocating for non-string
// fixed types and returning nil for Null rows. Scan paths that only need a
// handful of columns' values (e.g. building output rows) use this; hot
// per-column loops (predicate evaluation, compression) should call the
// typed accessor directly instead.
func (v *ArchivedView) ValueAt(i int) types.Value {
	if v.IsNull(i) {
		return nil
	}
	switch v.dt {
	case types.TypeString:
		return v.StringAt(i)
	case types.TypeBool:
		return v.BoolAt(i)
	case types.TypeInt8:
		return v.Int8At(i)
	case types.TypeUInt8:
		return v.UInt8At(i)
	case types.TypeInt16:
		return v.Int16At(i)
	case types.TypeUInt16:
		return v.UInt16At(i)
	case types.TypeInt32:
		return v.Int32At(i)
	case types.TypeUInt32:
		return v.UInt32At(i)
	case types.TypeInt64:
		return v.Int64At(i)
	case types.TypeUInt64:
		return v.UInt64At(i)
	case types.TypeUuid:
		return v.UuidAt(i)
	default:
		panic("granule: unsupported type " + v.dt.Name())
	}
}
