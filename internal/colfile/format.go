// Package colfile implements the single self-describing column file format
// (spec §4.3, §6.2): a header, a granule index, and concatenated granule
// frames, opened read-only and mmap'd so random granule access never copies
// more than one decompressed granule's worth of memory.
package colfile

import (
	"encoding/binary"

	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/types"
)

// Magic is the fixed 4-byte column-file identifier. Fixed by spec §6.2;
// differs from original_source's "THCOLU" deliberately (see SPEC_FULL.md §9a).
var Magic = [4]byte{'T', 'C', 'H', 'B'}

// Version is the current column-file format version.
const Version uint16 = 1

// HeaderSize is the fixed-size prefix: magic(4) + version(2) + codec_id(1) +
// type_tag(1) + granule_count(4) + granule_size(4).
const HeaderSize = 4 + 2 + 1 + 1 + 4 + 4

// Header is the fixed-size column-file header.
type Header struct {
	Version      uint16
	CodecID      byte
	Type         types.DataType
	GranuleCount uint32
	GranuleSize  uint32
}

func (h Header) marshal() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = h.CodecID
	buf[7] = byte(h.Type)
	binary.LittleEndian.PutUint32(buf[8:12], h.GranuleCount)
	binary.LittleEndian.PutUint32(buf[12:16], h.GranuleSize)
	return buf
}

func parseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errs.New(errs.CorruptPart, "column file truncated: %d bytes", len(buf))
	}
	var magic [4]byte
	copy(magic[:], buf[0:4])
	if magic != Magic {
		return Header{}, errs.New(errs.CorruptPart, "bad column file magic: %x", magic)
	}
	h := Header{
		Version:      binary.LittleEndian.Uint16(buf[4:6]),
		CodecID:      buf[6],
		Type:         types.DataType(buf[7]),
		GranuleCount: binary.LittleEndian.Uint32(buf[8:12]),
		GranuleSize:  binary.LittleEndian.Uint32(buf[12:16]),
	}
	if h.Version != Version {
		return Header{}, errs.New(errs.CorruptPart, "unsupported column file version %d", h.Version)
	}
	return h, nil
}
