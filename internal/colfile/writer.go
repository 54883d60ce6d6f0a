package colfile

import (
	"os"

	"github.com/touchhouse/touchhouse/internal/compression"
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/granule"
	"github.com/touchhouse/touchhouse/internal/types"
)

// Writer accumulates a column's granules in memory, then serializes them to
// a single file: header, granule index, concatenated frames (spec §4.3).
// WriteFile fsyncs the column file itself; the part write-atomicity protocol
// (catalog.WritePart) then fsyncs the containing directory before the
// atomic rename.
type Writer struct {
	dt      types.DataType
	codec   compression.Codec
	granSz  uint32
	frames  [][]byte
	entries []IndexEntry
}

// NewWriter starts a column file for values of type dt, using codec as the
// preferred (non-guaranteed — EncodeFrame falls back to NoneCodec on
// incompressible input) compressor, with granuleSize rows per granule.
func NewWriter(dt types.DataType, codec compression.Codec, granuleSize uint32) *Writer {
	return &Writer{dt: dt, codec: codec, granSz: granuleSize}
}

// AppendGranule compresses and appends one granule's worth of values,
// recording minMax, the granule's min/max as computed by the caller, in the
// granule index for predicate pushdown. writer.WriteBlockAsPart computes it
// for every column, not only primary-key columns.
func (w *Writer) AppendGranule(values []types.Value, minMax granule.MinMax) {
	raw := granule.EncodeColumn(w.dt, values)
	frame := granule.EncodeFrame(raw, w.codec)
	header, _ := granule.ParseFrameHeader(frame)

	w.entries = append(w.entries, IndexEntry{
		CompressedLen:   header.CompressedLen,
		UncompressedLen: header.UncompressedLen,
		CRC32:           header.CRC32,
		MinMax:          minMax,
	})
	w.frames = append(w.frames, frame)
}

// WriteFile serializes the accumulated granules to path, truncating/creating
// it, and syncs its contents to disk before returning.
func (w *Writer) WriteFile(path string) error {
	// The header's codec_id records the writer's preferred codec; an
	// individual granule may still have fallen back to NoneCodec if LZ4
	// judged it incompressible — that choice travels in the granule's own
	// frame header (spec §4.2), not here.
	codecID := w.codec.MethodByte()

	offset := uint64(HeaderSize)
	// index comes before frames; its own size must be added to every offset.
	indexSize := 0
	for _, e := range w.entries {
		indexSize += 20 + encodedValueSize(w.dt, e.MinMax.Min) + encodedValueSize(w.dt, e.MinMax.Max)
	}
	offset += uint64(indexSize)

	for i := range w.entries {
		w.entries[i].Offset = offset
		offset += uint64(len(w.frames[i]))
	}

	header := Header{
		Version:      Version,
		CodecID:      codecID,
		Type:         w.dt,
		GranuleCount: uint32(len(w.entries)),
		GranuleSize:  w.granSz,
	}

	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.IoError, err, "creating column file %s", path)
	}
	defer f.Close()

	if _, err := f.Write(header.marshal()); err != nil {
		return errs.Wrap(errs.IoError, err, "writing column file header")
	}
	if _, err := f.Write(encodeIndex(w.dt, w.entries)); err != nil {
		return errs.Wrap(errs.IoError, err, "writing granule index")
	}
	for _, frame := range w.frames {
		if _, err := f.Write(frame); err != nil {
			return errs.Wrap(errs.IoError, err, "writing granule frame")
		}
	}
	if err := f.Sync(); err != nil {
		return errs.Wrap(errs.IoError, err, "fsync column file %s", path)
	}
	return nil
}

func encodedValueSize(dt types.DataType, v types.Value) int {
	if dt == types.TypeString {
		s, _ := v.(string)
		return 4 + len(s)
	}
	return dt.FixedSize()
}
