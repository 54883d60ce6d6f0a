package compression

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec is the default codec: a fast LZ4-family block codec at a fixed
// level (spec §2 item 1).
type LZ4Codec struct{}

func (c *LZ4Codec) MethodByte() byte { return MethodLZ4 }

func (c *LZ4Codec) Encode(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 encode: %w", err)
	}
	if n == 0 {
		// lz4.CompressBlock returns n == 0 when it judges src incompressible.
		// Callers (granule.EncodeFrame) fall back to NoneCodec for this
		// granule rather than store bytes that Decode couldn't reverse.
		return nil, fmt.Errorf("lz4 encode: incompressible input")
	}
	return dst[:n], nil
}

func (c *LZ4Codec) Decode(src []byte, decodedLen int) ([]byte, error) {
	if decodedLen == 0 {
		return []byte{}, nil
	}
	dst := make([]byte, decodedLen)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decode: %w", err)
	}
	if n != decodedLen {
		return nil, fmt.Errorf("lz4 decode: expected %d bytes, got %d", decodedLen, n)
	}
	return dst, nil
}
