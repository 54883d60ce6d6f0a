package colfile

import (
	"encoding/binary"

	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/granule"
	"github.com/touchhouse/touchhouse/internal/types"
)

// IndexEntry is one record of the granule index: enough to locate, validate,
// and predicate-prune a granule without decompressing it (spec §4.3, §4.2).
type IndexEntry struct {
	Offset          uint64
	CompressedLen   uint32
	UncompressedLen uint32
	CRC32           uint32
	MinMax          granule.MinMax
}

func encodeIndex(dt types.DataType, entries []IndexEntry) []byte {
	var buf []byte
	for _, e := range entries {
		head := make([]byte, 8+4+4+4)
		binary.LittleEndian.PutUint64(head[0:8], e.Offset)
		binary.LittleEndian.PutUint32(head[8:12], e.CompressedLen)
		binary.LittleEndian.PutUint32(head[12:16], e.UncompressedLen)
		binary.LittleEndian.PutUint32(head[16:20], e.CRC32)
		buf = append(buf, head...)
		buf = append(buf, granule.EncodeValues(dt, []types.Value{e.MinMax.Min})...)
		buf = append(buf, granule.EncodeValues(dt, []types.Value{e.MinMax.Max})...)
	}
	return buf
}

// decodeIndex parses count entries of the granule index starting at the
// front of buf, returning the entries and the number of bytes consumed.
func decodeIndex(dt types.DataType, buf []byte, count int) ([]IndexEntry, int, error) {
	entries := make([]IndexEntry, count)
	off := 0
	for i := 0; i < count; i++ {
		if off+20 > len(buf) {
			return nil, 0, errs.New(errs.CorruptPart, "granule index entry %d truncated", i)
		}
		e := IndexEntry{
			Offset:          binary.LittleEndian.Uint64(buf[off : off+8]),
			CompressedLen:   binary.LittleEndian.Uint32(buf[off+8 : off+12]),
			UncompressedLen: binary.LittleEndian.Uint32(buf[off+12 : off+16]),
			CRC32:           binary.LittleEndian.Uint32(buf[off+16 : off+20]),
		}
		off += 20

		minVal, consumed, err := decodeOneValue(dt, buf[off:])
		if err != nil {
			return nil, 0, errs.Wrap(errs.CorruptPart, err, "granule index entry %d: min", i)
		}
		off += consumed
		maxVal, consumed, err := decodeOneValue(dt, buf[off:])
		if err != nil {
			return nil, 0, errs.Wrap(errs.CorruptPart, err, "granule index entry %d: max", i)
		}
		off += consumed

		e.MinMax = granule.MinMax{Min: minVal, Max: maxVal}
		entries[i] = e
	}
	return entries, off, nil
}

// decodeOneValue decodes a single value of dt from the front of buf,
// returning the value and the number of bytes it occupied.
func decodeOneValue(dt types.DataType, buf []byte) (types.Value, int, error) {
	if dt == types.TypeString {
		if len(buf) < 4 {
			return nil, 0, errs.New(errs.CorruptPart, "string index value truncated")
		}
		l := int(binary.LittleEndian.Uint32(buf[0:4]))
		if len(buf) < 4+l {
			return nil, 0, errs.New(errs.CorruptPart, "string index value exceeds bounds")
		}
		return string(buf[4 : 4+l]), 4 + l, nil
	}
	size := dt.FixedSize()
	if len(buf) < size {
		return nil, 0, errs.New(errs.CorruptPart, "fixed index value truncated")
	}
	values, err := granule.DecodeValues(dt, buf[:size], 1)
	if err != nil {
		return nil, 0, err
	}
	return values[0], size, nil
}
