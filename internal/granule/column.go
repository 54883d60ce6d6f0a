package granule

import (
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/types"
)

// EncodeColumn serializes a granule's values together with their Null
// presence into the frame payload. Layout:
//
//	u8 has_nulls | [bitmap, ceil(rows/8) bytes, only if has_nulls] | values
//
// Non-nullable columns (and nullable columns whose granule happens to carry
// no nulls) cost nothing beyond the single flag byte, matching spec §4.2's
// "fixed little-endian format" for the value payload itself while keeping
// Null representable without a sentinel value that would collide with a
// legitimate String/Int value.
func EncodeColumn(dt types.DataType, values []types.Value) []byte {
	nulls := NewNullBitmap(len(values))
	any := false
	for i, v := range values {
		if v == nil {
			nulls.Set(i)
			any = true
		}
	}

	valuesBuf := EncodeValues(dt, values)
	if !any {
		return append([]byte{0}, valuesBuf...)
	}
	buf := make([]byte, 0, 1+len(nulls)+len(valuesBuf))
	buf = append(buf, 1)
	buf = append(buf, nulls...)
	buf = append(buf, valuesBuf...)
	return buf
}

// DecodeColumn splits a granule payload produced by EncodeColumn back into
// its raw value bytes and null bitmap, for rows rows. The returned value
// bytes slice aliases buf (no copy) so callers can hand it straight to
// NewArchivedView.
func DecodeColumn(buf []byte, rows int) (valueBytes []byte, nulls NullBitmap, err error) {
	if len(buf) < 1 {
		return nil, nil, errs.New(errs.CorruptGranule, "column payload missing has_nulls flag")
	}
	hasNulls := buf[0] != 0
	off := 1
	if hasNulls {
		n := (rows + 7) / 8
		if len(buf) < off+n {
			return nil, nil, errs.New(errs.CorruptGranule, "column payload null bitmap truncated")
		}
		nulls = NullBitmap(buf[off : off+n])
		off += n
	}
	return buf[off:], nulls, nil
}
