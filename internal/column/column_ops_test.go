package column

import (
	"testing"

	"github.com/touchhouse/touchhouse/internal/types"
)

func TestFilterByMask_UInt64(t *testing.T) {
	col := &UInt64Column{Data: []uint64{10, 20, 30, 40, 50}, Nulls: make([]bool, 5)}
	mask := []bool{true, false, true, false, true}
	result := FilterByMask(col, mask).(*UInt64Column)
	if len(result.Data) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Data))
	}
	want := []uint64{10, 30, 50}
	for i, v := range want {
		if result.Data[i] != v {
			t.Fatalf("index %d: expected %d, got %d", i, v, result.Data[i])
		}
	}
}

func TestFilterByMask_Int64(t *testing.T) {
	col := &Int64Column{Data: []int64{-1, 0, 1, 2, 3}, Nulls: make([]bool, 5)}
	mask := []bool{false, false, true, true, true}
	result := FilterByMask(col, mask).(*Int64Column)
	if len(result.Data) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Data))
	}
	want := []int64{1, 2, 3}
	for i, v := range want {
		if result.Data[i] != v {
			t.Fatalf("index %d: expected %d, got %d", i, v, result.Data[i])
		}
	}
}

func TestFilterByMask_String(t *testing.T) {
	col := &StringColumn{Data: []string{"a", "b", "c", "d"}, Nulls: make([]bool, 4)}
	mask := []bool{false, true, false, true}
	result := FilterByMask(col, mask).(*StringColumn)
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Data))
	}
	if result.Data[0] != "b" || result.Data[1] != "d" {
		t.Fatalf("unexpected values: %v", result.Data)
	}
}

func TestFilterByMask_PreservesNulls(t *testing.T) {
	col := &StringColumn{Data: []string{"a", "", "c"}, Nulls: []bool{false, true, false}}
	mask := []bool{true, true, false}
	result := FilterByMask(col, mask).(*StringColumn)
	if !result.Nulls[1] {
		t.Fatalf("expected row 1 to remain null after filtering")
	}
	if result.Value(0) != "a" {
		t.Fatalf("expected row 0 value a, got %v", result.Value(0))
	}
	if result.Value(1) != nil {
		t.Fatalf("expected row 1 to read as Null, got %v", result.Value(1))
	}
}

func TestFilterByMask_AllFalse(t *testing.T) {
	col := &UInt64Column{Data: []uint64{1, 2, 3}, Nulls: make([]bool, 3)}
	mask := []bool{false, false, false}
	result := FilterByMask(col, mask).(*UInt64Column)
	if len(result.Data) != 0 {
		t.Fatalf("expected 0 rows, got %d", len(result.Data))
	}
}

func TestGather_UInt64(t *testing.T) {
	col := &UInt64Column{Data: []uint64{10, 20, 30, 40, 50}, Nulls: make([]bool, 5)}
	indices := []int{4, 2, 0}
	result := Gather(col, indices).(*UInt64Column)
	if len(result.Data) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Data))
	}
	want := []uint64{50, 30, 10}
	for i, v := range want {
		if result.Data[i] != v {
			t.Fatalf("index %d: expected %d, got %d", i, v, result.Data[i])
		}
	}
}

func TestGather_String(t *testing.T) {
	col := &StringColumn{Data: []string{"alice", "bob", "charlie"}, Nulls: make([]bool, 3)}
	indices := []int{2, 0, 1}
	result := Gather(col, indices).(*StringColumn)
	want := []string{"charlie", "alice", "bob"}
	for i, v := range want {
		if result.Data[i] != v {
			t.Fatalf("index %d: expected %s, got %s", i, v, result.Data[i])
		}
	}
}

func TestGather_Bool(t *testing.T) {
	col := &BoolColumn{Data: []bool{true, false, true}, Nulls: make([]bool, 3)}
	indices := []int{1, 0, 2}
	result := Gather(col, indices).(*BoolColumn)
	want := []bool{false, true, true}
	for i, v := range want {
		if result.Data[i] != v {
			t.Fatalf("index %d: expected %v, got %v", i, v, result.Data[i])
		}
	}
}

func TestGather_Uuid(t *testing.T) {
	a := types.Uuid{1}
	b := types.Uuid{2}
	col := &UuidColumn{Data: []types.Uuid{a, b}, Nulls: make([]bool, 2)}
	result := Gather(col, []int{1, 0}).(*UuidColumn)
	if result.Data[0] != b || result.Data[1] != a {
		t.Fatalf("unexpected order: %v", result.Data)
	}
}

func TestAppendColumn_UInt64(t *testing.T) {
	dst := &UInt64Column{Data: []uint64{1, 2}, Nulls: make([]bool, 2)}
	src := &UInt64Column{Data: []uint64{3, 4, 5}, Nulls: make([]bool, 3)}
	AppendColumn(dst, src)
	if len(dst.Data) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(dst.Data))
	}
	want := []uint64{1, 2, 3, 4, 5}
	for i, v := range want {
		if dst.Data[i] != v {
			t.Fatalf("index %d: expected %d, got %d", i, v, dst.Data[i])
		}
	}
	if len(dst.Nulls) != 5 {
		t.Fatalf("expected nulls slice to grow alongside data, got %d", len(dst.Nulls))
	}
}

func TestAppendColumn_String(t *testing.T) {
	dst := &StringColumn{Data: []string{"hello"}, Nulls: []bool{false}}
	src := &StringColumn{Data: []string{"world"}, Nulls: []bool{false}}
	AppendColumn(dst, src)
	if len(dst.Data) != 2 || dst.Data[0] != "hello" || dst.Data[1] != "world" {
		t.Fatalf("unexpected: %v", dst.Data)
	}
}

func TestAppendColumn_EmptySrc(t *testing.T) {
	dst := &UInt64Column{Data: []uint64{1, 2}, Nulls: make([]bool, 2)}
	src := &UInt64Column{Data: []uint64{}, Nulls: []bool{}}
	AppendColumn(dst, src)
	if len(dst.Data) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(dst.Data))
	}
}

func TestColumnAppendNullThenValue(t *testing.T) {
	c := NewColumn(types.TypeInt32)
	c.Append(nil)
	c.Append(int32(7))
	if c.Value(0) != nil {
		t.Fatalf("expected row 0 to be Null")
	}
	if c.Value(1) != int32(7) {
		t.Fatalf("expected row 1 to be 7, got %v", c.Value(1))
	}
	if c.Len() != 2 {
		t.Fatalf("expected length 2, got %d", c.Len())
	}
}
