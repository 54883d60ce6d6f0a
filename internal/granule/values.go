package granule

import (
	"encoding/binary"

	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/types"
)

// EncodeValues serializes a column's worth of values into a single granule
// payload, ready to be handed to EncodeFrame. Layout (spec §6.2):
//
//	fixed-width types: rows packed back to back, little-endian, except Uuid
//	                   which is 16 raw bytes in the value's own byte order.
//	String:            per-row u32 length prefix followed by the raw bytes.
//
// Null is encoded as the type's zero value; a separate null bitmap (one bit
// per row, nulls.go) records which rows are actually Null.
func EncodeValues(dt types.DataType, values []types.Value) []byte {
	if dt == types.TypeString {
		return encodeStrings(values)
	}

	size := dt.FixedSize()
	buf := make([]byte, size*len(values))
	for i, v := range values {
		encodeFixed(dt, buf[i*size:(i+1)*size], v)
	}
	return buf
}

// DecodeValues reverses EncodeValues for a column of n rows.
func DecodeValues(dt types.DataType, buf []byte, n int) ([]types.Value, error) {
	if dt == types.TypeString {
		return decodeStrings(buf, n)
	}

	size := dt.FixedSize()
	if len(buf) != size*n {
		return nil, errs.New(errs.CorruptGranule, "fixed column payload size mismatch: got %d want %d", len(buf), size*n)
	}
	values := make([]types.Value, n)
	for i := range values {
		values[i] = decodeFixed(dt, buf[i*size:(i+1)*size])
	}
	return values, nil
}

func encodeFixed(dt types.DataType, dst []byte, v types.Value) {
	if v == nil {
		return // zero value already represents Null's placeholder bytes
	}
	switch dt {
	case types.TypeBool:
		if v.(bool) {
			dst[0] = 1
		}
	case types.TypeInt8:
		dst[0] = byte(v.(int8))
	case types.TypeUInt8:
		dst[0] = v.(uint8)
	case types.TypeInt16:
		binary.LittleEndian.PutUint16(dst, uint16(v.(int16)))
	case types.TypeUInt16:
		binary.LittleEndian.PutUint16(dst, v.(uint16))
	case types.TypeInt32:
		binary.LittleEndian.PutUint32(dst, uint32(v.(int32)))
	case types.TypeUInt32:
		binary.LittleEndian.PutUint32(dst, v.(uint32))
	case types.TypeInt64:
		binary.LittleEndian.PutUint64(dst, uint64(v.(int64)))
	case types.TypeUInt64:
		binary.LittleEndian.PutUint64(dst, v.(uint64))
	case types.TypeUuid:
		u := v.(types.Uuid)
		copy(dst, u[:])
	default:
		panic("granule: unsupported fixed type " + dt.Name())
	}
}

func decodeFixed(dt types.DataType, src []byte) types.Value {
	switch dt {
	case types.TypeBool:
		return src[0] != 0
	case types.TypeInt8:
		return int8(src[0])
	case types.TypeUInt8:
		return src[0]
	case types.TypeInt16:
		return int16(binary.LittleEndian.Uint16(src))
	case types.TypeUInt16:
		return binary.LittleEndian.Uint16(src)
	case types.TypeInt32:
		return int32(binary.LittleEndian.Uint32(src))
	case types.TypeUInt32:
		return binary.LittleEndian.Uint32(src)
	case types.TypeInt64:
		return int64(binary.LittleEndian.Uint64(src))
	case types.TypeUInt64:
		return binary.LittleEndian.Uint64(src)
	case types.TypeUuid:
		var u types.Uuid
		copy(u[:], src)
		return u
	default:
		panic("granule: unsupported fixed type " + dt.Name())
	}
}

func encodeStrings(values []types.Value) []byte {
	total := 0
	for _, v := range values {
		s, _ := v.(string)
		total += 4 + len(s)
	}
	buf := make([]byte, total)
	off := 0
	for _, v := range values {
		s, _ := v.(string)
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(s)))
		off += 4
		copy(buf[off:off+len(s)], s)
		off += len(s)
	}
	return buf
}

func decodeStrings(buf []byte, n int) ([]types.Value, error) {
	values := make([]types.Value, n)
	off := 0
	for i := 0; i < n; i++ {
		if off+4 > len(buf) {
			return nil, errs.New(errs.CorruptGranule, "string column truncated at row %d", i)
		}
		l := int(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4
		if off+l > len(buf) {
			return nil, errs.New(errs.CorruptGranule, "string column row %d exceeds payload bounds", i)
		}
		values[i] = string(buf[off : off+l])
		off += l
	}
	return values, nil
}
