package merge_test

import (
	"testing"

	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/merge"
	"github.com/touchhouse/touchhouse/internal/types"
	"github.com/touchhouse/touchhouse/internal/writer"
)

func mustTable(t *testing.T, engine catalog.Engine, primaryKey []string) *catalog.Table {
	t.Helper()
	cat, err := catalog.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	if err := cat.CreateDatabase("db", false); err != nil {
		t.Fatalf("create database: %v", err)
	}
	def := catalog.TableDef{
		Name: "events",
		Columns: []catalog.ColumnDef{
			{Name: "id", DataType: types.TypeUInt64},
			{Name: "value", DataType: types.TypeInt64},
		},
		OrderBy:     []string{"id"},
		PrimaryKey:  primaryKey,
		Engine:      engine,
		GranuleSize: 2,
	}
	if err := cat.CreateTable("db", def, false); err != nil {
		t.Fatalf("create table: %v", err)
	}
	table, err := cat.GetTable("db", "events")
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	return table
}

func insertRows(t *testing.T, table *catalog.Table, ids []uint64, values []int64) {
	t.Helper()
	rows := make([][]types.Value, len(ids))
	for i := range ids {
		rows[i] = []types.Value{ids[i], values[i]}
	}
	if err := writer.Insert(table, []string{"id", "value"}, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestSelectAdjacentPairPicksSmallestCombinedRowCount(t *testing.T) {
	table := mustTable(t, catalog.MergeTree, []string{"id"})
	insertRows(t, table, []uint64{1, 2, 3, 4, 5}, []int64{1, 2, 3, 4, 5}) // 5 rows
	insertRows(t, table, []uint64{6, 7}, []int64{6, 7})                  // 2 rows
	insertRows(t, table, []uint64{8}, []int64{8})                        // 1 row

	a, b, ok := merge.SelectAdjacentPair(table)
	if !ok {
		t.Fatal("expected a selectable pair")
	}
	if a.Info.RowCount+b.Info.RowCount != 3 {
		t.Fatalf("expected the 2-row and 1-row parts to be picked (combined 3), got %d+%d", a.Info.RowCount, b.Info.RowCount)
	}
}

func TestSelectAdjacentPairRequiresTwoParts(t *testing.T) {
	table := mustTable(t, catalog.MergeTree, []string{"id"})
	insertRows(t, table, []uint64{1}, []int64{1})
	if _, _, ok := merge.SelectAdjacentPair(table); ok {
		t.Fatal("expected no selectable pair with only one part")
	}
}

func TestMergeTwoPartsMergeTree(t *testing.T) {
	table := mustTable(t, catalog.MergeTree, []string{"id"})
	insertRows(t, table, []uint64{3, 1}, []int64{30, 10})
	insertRows(t, table, []uint64{4, 2}, []int64{40, 20})

	parts := table.Snapshot()
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}

	newPart, err := merge.MergeTwoParts(table, parts[0], parts[1])
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if newPart.Info.RowCount != 4 {
		t.Fatalf("expected 4 merged rows, got %d", newPart.Info.RowCount)
	}

	idFile, _ := newPart.Column("id")
	g0, err := idFile.ReadGranule(0, 4)
	if err != nil {
		t.Fatalf("read granule 0: %v", err)
	}
	if g0.UInt64At(0) != 1 || g0.UInt64At(1) != 2 {
		t.Fatalf("expected merged ids to start [1,2], got [%d,%d]", g0.UInt64At(0), g0.UInt64At(1))
	}
}

func TestMergeTwoPartsReplacingMergeTreeDedups(t *testing.T) {
	table := mustTable(t, catalog.ReplacingMergeTree, []string{"id"})
	insertRows(t, table, []uint64{1, 2}, []int64{100, 200})  // older part
	insertRows(t, table, []uint64{2, 3}, []int64{2000, 300}) // newer part, id=2 updated

	parts := table.Snapshot()
	newPart, err := merge.MergeTwoParts(table, parts[0], parts[1])
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if newPart.Info.RowCount != 3 {
		t.Fatalf("expected 3 deduplicated rows (1,2,3), got %d", newPart.Info.RowCount)
	}

	idFile, _ := newPart.Column("id")
	valueFile, _ := newPart.Column("value")
	totalRows := int(newPart.Info.RowCount)
	granuleCount := len(idFile.Index)
	var ids []uint64
	var values []int64
	for g := 0; g < granuleCount; g++ {
		idView, err := idFile.ReadGranule(g, totalRows)
		if err != nil {
			t.Fatalf("read id granule %d: %v", g, err)
		}
		valueView, err := valueFile.ReadGranule(g, totalRows)
		if err != nil {
			t.Fatalf("read value granule %d: %v", g, err)
		}
		for r := 0; r < idView.Len(); r++ {
			ids = append(ids, idView.UInt64At(r))
			values = append(values, valueView.Int64At(r))
		}
	}

	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("expected deduplicated ids [1,2,3], got %v", ids)
	}
	if values[1] != 2000 {
		t.Fatalf("expected id=2's value to be the newer part's 2000, got %d", values[1])
	}
}
