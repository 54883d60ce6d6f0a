package exec_test

import (
	"testing"

	"github.com/touchhouse/touchhouse/internal/column"
	"github.com/touchhouse/touchhouse/internal/exec"
	"github.com/touchhouse/touchhouse/internal/types"
)

func idBlock(t *testing.T, ids ...int64) *column.Block {
	t.Helper()
	col := column.NewColumnWithCapacity(types.TypeInt64, len(ids))
	for _, id := range ids {
		col.Append(id)
	}
	return column.NewBlock([]string{"id"}, []column.Column{col})
}

func TestEvalMaskCompare(t *testing.T) {
	blk := idBlock(t, 1, 2, 3, 4)
	mask := exec.EvalMask(exec.Compare{Column: "id", Op: types.OpGE, Literal: int64(3)}, blk)
	want := []bool{false, false, true, true}
	for i := range want {
		if mask[i] != want[i] {
			t.Fatalf("row %d: expected %v, got %v", i, want[i], mask[i])
		}
	}
}

func TestEvalMaskAndOrNot(t *testing.T) {
	blk := idBlock(t, 1, 2, 3, 4)
	pred := exec.And{
		Left:  exec.Compare{Column: "id", Op: types.OpGE, Literal: int64(2)},
		Right: exec.Not{Operand: exec.Compare{Column: "id", Op: types.OpEQ, Literal: int64(3)}},
	}
	mask := exec.EvalMask(pred, blk)
	want := []bool{false, true, false, true}
	for i := range want {
		if mask[i] != want[i] {
			t.Fatalf("row %d: expected %v, got %v", i, want[i], mask[i])
		}
	}
}

func TestEvalMaskNilPredicateSelectsAll(t *testing.T) {
	blk := idBlock(t, 1, 2, 3)
	mask := exec.EvalMask(nil, blk)
	for i, v := range mask {
		if !v {
			t.Fatalf("row %d: expected nil predicate to select every row", i)
		}
	}
}

func TestEvalMaskNullNeverMatches(t *testing.T) {
	col := column.NewColumnWithCapacity(types.TypeInt64, 2)
	col.Append(nil)
	col.Append(int64(5))
	blk := column.NewBlock([]string{"id"}, []column.Column{col})

	mask := exec.EvalMask(exec.Compare{Column: "id", Op: types.OpEQ, Literal: int64(5)}, blk)
	if mask[0] {
		t.Fatal("expected Null row to never match a comparison")
	}
	if !mask[1] {
		t.Fatal("expected non-null matching row to be selected")
	}
}

func TestColumnsCollectsEveryComparedColumn(t *testing.T) {
	pred := exec.And{
		Left:  exec.Compare{Column: "id", Op: types.OpGT, Literal: int64(1)},
		Right: exec.Or{Left: exec.Compare{Column: "name", Op: types.OpEQ, Literal: "a"}, Right: exec.Not{Operand: exec.Compare{Column: "active", Op: types.OpEQ, Literal: true}}},
	}
	names := exec.Columns(pred)
	want := map[string]bool{"id": true, "name": true, "active": true}
	if len(names) != len(want) {
		t.Fatalf("expected %d columns, got %v", len(want), names)
	}
	for _, n := range names {
		if !want[n] {
			t.Fatalf("unexpected column %q in result", n)
		}
	}
}
