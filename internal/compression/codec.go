// Package compression implements the pluggable block codec contract (spec
// §4.1): pure encode/decode over byte slices, no I/O, identified by a small
// integer so future codecs never break the column files old parts already
// wrote.
package compression

// Codec compresses and decompresses a single granule's serialized payload.
type Codec interface {
	// MethodByte returns the codec's on-disk identifier.
	MethodByte() byte
	// Encode compresses src, returning a freshly allocated buffer.
	Encode(src []byte) ([]byte, error)
	// Decode decompresses src into a buffer of exactly decodedLen bytes.
	Decode(src []byte, decodedLen int) ([]byte, error)
}

// Method byte constants. 0x02/0x82 match the teacher's own scheme so a
// future codec addition only needs a new id, never a format change (spec §9
// Open Question on per-column CODEC).
const (
	MethodNone byte = 0x02
	MethodLZ4  byte = 0x82
)

// ByMethodByte returns the Codec registered for id, or (nil, false).
func ByMethodByte(id byte) (Codec, bool) {
	switch id {
	case MethodLZ4:
		return &LZ4Codec{}, true
	case MethodNone:
		return &NoneCodec{}, true
	default:
		return nil, false
	}
}
