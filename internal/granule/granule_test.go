package granule

import (
	"testing"

	"github.com/touchhouse/touchhouse/internal/compression"
	"github.com/touchhouse/touchhouse/internal/types"
)

func TestFrameRoundTrip(t *testing.T) {
	raw := EncodeValues(types.TypeUInt32, []types.Value{
		uint32(1), uint32(2), uint32(3), uint32(4),
	})
	frame := EncodeFrame(raw, &compression.LZ4Codec{})

	header, err := ParseFrameHeader(frame)
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	decoded, err := DecodeFrame(frame, 0, header)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	values, err := DecodeValues(types.TypeUInt32, decoded, 4)
	if err != nil {
		t.Fatalf("decode values: %v", err)
	}
	want := []uint32{1, 2, 3, 4}
	for i, v := range values {
		if v.(uint32) != want[i] {
			t.Fatalf("row %d: got %v want %d", i, v, want[i])
		}
	}
}

func TestFrameRoundTripIncompressible(t *testing.T) {
	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04}
	frame := EncodeFrame(raw, &compression.LZ4Codec{})
	header, err := ParseFrameHeader(frame)
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	decoded, err := DecodeFrame(frame, 0, header)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Fatalf("round trip mismatch: got %x want %x", decoded, raw)
	}
}

func TestFrameCorruptionDetected(t *testing.T) {
	raw := EncodeValues(types.TypeString, []types.Value{"alpha", "beta"})
	frame := EncodeFrame(raw, &compression.NoneCodec{})
	frame[len(frame)-1] ^= 0xFF // flip a payload byte

	header, err := ParseFrameHeader(frame)
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	if _, err := DecodeFrame(frame, 0, header); err == nil {
		t.Fatal("expected CRC mismatch error on corrupted frame")
	}
}

func TestStringValuesRoundTrip(t *testing.T) {
	in := []types.Value{"", "hello", "touchhouse analytics"}
	buf := EncodeValues(types.TypeString, in)
	out, err := DecodeValues(types.TypeString, buf, len(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range in {
		if out[i].(string) != in[i].(string) {
			t.Fatalf("row %d: got %q want %q", i, out[i], in[i])
		}
	}
}

func TestArchivedViewStringZeroCopy(t *testing.T) {
	in := []types.Value{"first", "second", "third"}
	buf := EncodeValues(types.TypeString, in)
	view, err := NewArchivedView(types.TypeString, buf, len(in), nil)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	for i, want := range in {
		if got := view.StringAt(i); got != want.(string) {
			t.Fatalf("row %d: got %q want %q", i, got, want)
		}
	}
}

func TestArchivedViewFixedTypes(t *testing.T) {
	in := []types.Value{int64(-5), int64(0), int64(42)}
	buf := EncodeValues(types.TypeInt64, in)
	view, err := NewArchivedView(types.TypeInt64, buf, len(in), nil)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	for i, want := range in {
		if got := view.Int64At(i); got != want.(int64) {
			t.Fatalf("row %d: got %d want %d", i, got, want)
		}
	}
}

func TestArchivedViewNulls(t *testing.T) {
	nulls := NewNullBitmap(3)
	nulls.Set(1)
	in := []types.Value{int32(1), nil, int32(3)}
	buf := EncodeValues(types.TypeInt32, in)
	view, err := NewArchivedView(types.TypeInt32, buf, 3, nulls)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	if view.IsNull(0) || !view.IsNull(1) || view.IsNull(2) {
		t.Fatal("null bitmap not honored")
	}
	if view.ValueAt(1) != nil {
		t.Fatalf("expected nil for null row, got %v", view.ValueAt(1))
	}
	if view.ValueAt(0).(int32) != 1 {
		t.Fatalf("row 0: got %v", view.ValueAt(0))
	}
}

func TestMinMaxScanAndMerge(t *testing.T) {
	a := Scan(types.TypeInt32, []types.Value{int32(5), nil, int32(1), int32(9)})
	if a.Min.(int32) != 1 || a.Max.(int32) != 9 {
		t.Fatalf("unexpected min/max: %+v", a)
	}
	b := Scan(types.TypeInt32, []types.Value{int32(-3), int32(2)})
	merged := a.Merge(types.TypeInt32, b)
	if merged.Min.(int32) != -3 || merged.Max.(int32) != 9 {
		t.Fatalf("unexpected merged min/max: %+v", merged)
	}
}
