package colfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/touchhouse/touchhouse/internal/compression"
	"github.com/touchhouse/touchhouse/internal/granule"
	"github.com/touchhouse/touchhouse/internal/types"
)

func TestWriteReadRoundTrip(t *testing.T) {
	w := NewWriter(types.TypeUInt64, &compression.LZ4Codec{}, 4)
	granule1 := []types.Value{uint64(1), uint64(2), uint64(3), uint64(4)}
	granule2 := []types.Value{uint64(5), uint64(6)}
	w.AppendGranule(granule1, granule.Scan(types.TypeUInt64, granule1))
	w.AppendGranule(granule2, granule.Scan(types.TypeUInt64, granule2))

	path := filepath.Join(t.TempDir(), "id.bin")
	if err := w.WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if f.Header.Type != types.TypeUInt64 {
		t.Fatalf("unexpected type tag %v", f.Header.Type)
	}
	if f.Header.GranuleCount != 2 {
		t.Fatalf("unexpected granule count %d", f.Header.GranuleCount)
	}
	if f.Index[0].MinMax.Min.(uint64) != 1 || f.Index[0].MinMax.Max.(uint64) != 4 {
		t.Fatalf("unexpected granule 0 min/max: %+v", f.Index[0].MinMax)
	}
	if f.Index[1].MinMax.Min.(uint64) != 5 || f.Index[1].MinMax.Max.(uint64) != 6 {
		t.Fatalf("unexpected granule 1 min/max: %+v", f.Index[1].MinMax)
	}

	totalRows := 6
	view0, err := f.ReadGranule(0, totalRows)
	if err != nil {
		t.Fatalf("read granule 0: %v", err)
	}
	if view0.Len() != 4 {
		t.Fatalf("granule 0: expected 4 rows, got %d", view0.Len())
	}
	for i, want := range granule1 {
		if got := view0.UInt64At(i); got != want.(uint64) {
			t.Fatalf("granule 0 row %d: got %d want %d", i, got, want)
		}
	}

	view1, err := f.ReadGranule(1, totalRows)
	if err != nil {
		t.Fatalf("read granule 1: %v", err)
	}
	if view1.Len() != 2 {
		t.Fatalf("granule 1 (short tail): expected 2 rows, got %d", view1.Len())
	}
	if view1.UInt64At(0) != 5 || view1.UInt64At(1) != 6 {
		t.Fatalf("granule 1 values wrong: %d,%d", view1.UInt64At(0), view1.UInt64At(1))
	}
}

func TestWriteReadStringColumnWithNulls(t *testing.T) {
	w := NewWriter(types.TypeString, &compression.LZ4Codec{}, 8)
	values := []types.Value{"alpha", nil, "gamma", ""}
	w.AppendGranule(values, granule.Scan(types.TypeString, values))

	path := filepath.Join(t.TempDir(), "name.bin")
	if err := w.WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	view, err := f.ReadGranule(0, len(values))
	if err != nil {
		t.Fatalf("read granule: %v", err)
	}
	if view.IsNull(0) || !view.IsNull(1) || view.IsNull(2) || view.IsNull(3) {
		t.Fatal("null bitmap mismatch")
	}
	if view.StringAt(0) != "alpha" || view.StringAt(2) != "gamma" || view.StringAt(3) != "" {
		t.Fatalf("string values mismatch: %q %q %q", view.StringAt(0), view.StringAt(2), view.StringAt(3))
	}
}

func TestOpenFileRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, []byte("NOTATOUCHHOUSEFILE1234567890"), 0o644); err != nil {
		t.Fatalf("write garbage file: %v", err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Fatal("expected OpenFile to reject a file with bad magic")
	}
}
