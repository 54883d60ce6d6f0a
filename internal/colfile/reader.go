package colfile

import (
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/granule"
)

// File is an opened, validated column file: its header, granule index, and
// a reference to the mmap'd bytes backing both the index and every frame.
type File struct {
	Handle *Handle
	Header Header
	Index  []IndexEntry
}

// OpenFile opens path, validates its header, and parses its granule index.
// The returned File holds one reference on its Handle; call Close to
// release it.
func OpenFile(path string) (*File, error) {
	h, err := Open(path)
	if err != nil {
		return nil, err
	}
	data := h.Bytes()
	header, err := parseHeader(data)
	if err != nil {
		h.Release()
		return nil, err
	}
	entries, _, err := decodeIndex(header.Type, data[HeaderSize:], int(header.GranuleCount))
	if err != nil {
		h.Release()
		return nil, errs.Wrap(errs.CorruptPart, err, "parsing granule index of %s", path)
	}
	return &File{Handle: h, Header: header, Index: entries}, nil
}

// Close releases the File's reference on its Handle.
func (f *File) Close() {
	f.Handle.Release()
}

// RowCount returns the number of rows in granule i, given the part's total
// row count (needed because only the last granule may be short — spec §3's
// "row_count = granule_count * granule_size - tail_padding" invariant).
func (f *File) RowCount(totalRows int, i int) int {
	if i < len(f.Index)-1 {
		return int(f.Header.GranuleSize)
	}
	return totalRows - (len(f.Index)-1)*int(f.Header.GranuleSize)
}

// ReadGranule decompresses, validates, and returns a zero-copy archived
// view over granule i (spec §4.2 steps 1-5).
func (f *File) ReadGranule(i int, totalRows int) (*granule.ArchivedView, error) {
	if i < 0 || i >= len(f.Index) {
		return nil, errs.New(errs.InternalInvariant, "granule index %d out of range [0,%d)", i, len(f.Index))
	}
	entry := f.Index[i]
	data := f.Handle.Bytes()
	if entry.Offset > uint64(len(data)) {
		return nil, errs.New(errs.CorruptGranule, "granule %d offset out of bounds", i)
	}
	frameHeader, err := granule.ParseFrameHeader(data[entry.Offset:])
	if err != nil {
		return nil, err
	}
	decoded, err := granule.DecodeFrame(data, entry.Offset, frameHeader)
	if err != nil {
		return nil, err
	}
	rows := f.RowCount(totalRows, i)
	valueBytes, nulls, err := granule.DecodeColumn(decoded, rows)
	if err != nil {
		return nil, err
	}
	return granule.NewArchivedView(f.Header.Type, valueBytes, rows, nulls)
}
