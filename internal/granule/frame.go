// Package granule implements the granule store (spec §4.2): the fixed-size
// row block that is the unit of compression, checksumming, and predicate
// skipping. A frame on disk is
//
//	u32 compressed_len | u32 uncompressed_len | u32 crc32 | u8 codec_id | payload
//
// where crc32 is computed over the *uncompressed* bytes.
package granule

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/touchhouse/touchhouse/internal/compression"
	"github.com/touchhouse/touchhouse/internal/errs"
)

// FrameHeaderSize is the fixed-size prefix of every frame.
const FrameHeaderSize = 4 + 4 + 4 + 1

// EncodeFrame compresses raw (an encoded granule payload) with preferred,
// falling back to compression.NoneCodec if preferred judges raw
// incompressible, and returns the full on-disk frame (header + payload).
func EncodeFrame(raw []byte, preferred compression.Codec) []byte {
	codec := preferred
	compressed, err := codec.Encode(raw)
	if err != nil {
		codec = &compression.NoneCodec{}
		compressed, _ = codec.Encode(raw)
	}

	frame := make([]byte, FrameHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(len(compressed)))
	binary.LittleEndian.PutUint32(frame[4:8], uint32(len(raw)))
	binary.LittleEndian.PutUint32(frame[8:12], crc32.ChecksumIEEE(raw))
	frame[12] = codec.MethodByte()
	copy(frame[FrameHeaderSize:], compressed)
	return frame
}

// FrameHeader is the parsed fixed-size prefix of a frame. The column file's
// granule index carries the same lengths and CRC, but colfile.File.ReadGranule
// re-parses the header from the frame bytes on each read.
type FrameHeader struct {
	CompressedLen   uint32
	UncompressedLen uint32
	CRC32           uint32
	CodecID         byte
}

// ParseFrameHeader reads the fixed-size header from the start of data.
func ParseFrameHeader(data []byte) (FrameHeader, error) {
	if len(data) < FrameHeaderSize {
		return FrameHeader{}, errs.New(errs.CorruptGranule, "frame header truncated: %d bytes", len(data))
	}
	return FrameHeader{
		CompressedLen:   binary.LittleEndian.Uint32(data[0:4]),
		UncompressedLen: binary.LittleEndian.Uint32(data[4:8]),
		CRC32:           binary.LittleEndian.Uint32(data[8:12]),
		CodecID:         data[12],
	}, nil
}

// DecodeFrame validates and decompresses a frame whose payload begins right
// after FrameHeaderSize bytes at the given offset in file. header must have
// been produced by ParseFrameHeader on the same bytes (colfile.File.ReadGranule
// does this on every read).
func DecodeFrame(file []byte, offset uint64, header FrameHeader) ([]byte, error) {
	start := offset + FrameHeaderSize
	end := start + uint64(header.CompressedLen)
	if end > uint64(len(file)) {
		return nil, errs.New(errs.CorruptGranule, "frame payload out of bounds [%d,%d) in %d-byte file", start, end, len(file))
	}
	codec, ok := compression.ByMethodByte(header.CodecID)
	if !ok {
		return nil, errs.New(errs.CorruptGranule, "unknown codec id 0x%02x", header.CodecID)
	}
	payload := file[start:end]
	decoded, err := codec.Decode(payload, int(header.UncompressedLen))
	if err != nil {
		return nil, errs.Wrap(errs.CorruptGranule, err, "decompressing granule frame")
	}
	if crc32.ChecksumIEEE(decoded) != header.CRC32 {
		return nil, errs.New(errs.CorruptGranule, "CRC mismatch: granule data corrupt")
	}
	return decoded, nil
}
