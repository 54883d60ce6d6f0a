package exec_test

import (
	"context"
	"testing"

	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/exec"
	"github.com/touchhouse/touchhouse/internal/types"
	"github.com/touchhouse/touchhouse/internal/writer"
)

func mustEventsTable(t *testing.T) *catalog.Table {
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
			{Name: "name", DataType: types.TypeString, Nullable: true},
		},
		OrderBy:     []string{"id"},
		PrimaryKey:  []string{"id"},
		Engine:      catalog.MergeTree,
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

func TestScanProjectsAndOrders(t *testing.T) {
	table := mustEventsTable(t)
	rows := [][]types.Value{
		{uint64(3), "c"},
		{uint64(1), "a"},
		{uint64(2), "b"},
	}
	if err := writer.Insert(table, []string{"id", "name"}, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}

	out, err := exec.Scan(context.Background(), exec.ScanRequest{
		Table:      table,
		Projection: []string{"id", "name"},
		OrderBy:    []string{"id"},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", out.NumRows())
	}
	idCol, _ := out.GetColumn("id")
	for i, want := range []uint64{1, 2, 3} {
		if got := idCol.Value(i).(uint64); got != want {
			t.Fatalf("row %d: expected id %d, got %d", i, want, got)
		}
	}
}

func TestScanAppliesPredicate(t *testing.T) {
	table := mustEventsTable(t)
	rows := [][]types.Value{
		{uint64(1), "a"},
		{uint64(2), "b"},
		{uint64(3), "c"},
		{uint64(4), "d"},
	}
	if err := writer.Insert(table, []string{"id", "name"}, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}

	out, err := exec.Scan(context.Background(), exec.ScanRequest{
		Table:      table,
		Projection: []string{"id"},
		Predicate:  exec.Compare{Column: "id", Op: types.OpGT, Literal: uint64(2)},
		OrderBy:    []string{"id"},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.NumRows())
	}
	idCol, _ := out.GetColumn("id")
	if idCol.Value(0).(uint64) != 3 || idCol.Value(1).(uint64) != 4 {
		t.Fatalf("unexpected ids in predicate scan result")
	}
}

func TestScanPrunesGranulesByPrimaryKey(t *testing.T) {
	table := mustEventsTable(t)
	rows := make([][]types.Value, 0, 10)
	for i := uint64(1); i <= 10; i++ {
		rows = append(rows, []types.Value{i, "row"})
	}
	if err := writer.Insert(table, []string{"id", "name"}, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}

	out, err := exec.Scan(context.Background(), exec.ScanRequest{
		Table:      table,
		Projection: []string{"id"},
		Predicate:  exec.Compare{Column: "id", Op: types.OpEQ, Literal: uint64(7)},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out.NumRows() != 1 {
		t.Fatalf("expected exactly 1 row for id=7, got %d", out.NumRows())
	}
	idCol, _ := out.GetColumn("id")
	if idCol.Value(0).(uint64) != 7 {
		t.Fatalf("expected id 7, got %v", idCol.Value(0))
	}

	// Granules of 2 rows: ids 7-8 sit in granule 3, the only one whose
	// [min, max] on id can contain 7.
	part := table.Snapshot()[0]
	idFile, _ := part.Column("id")
	kc := exec.NewKeyCondition(exec.Compare{Column: "id", Op: types.OpEQ, Literal: uint64(7)}, table.Def.PrimaryKey)
	surviving := kc.SurvivingGranules(part, "id", len(idFile.Index))
	if len(surviving) != 1 || surviving[0] != 3 {
		t.Fatalf("expected only granule 3 to survive pruning, got %v", surviving)
	}
}

func TestScanOffsetAndLimit(t *testing.T) {
	table := mustEventsTable(t)
	rows := make([][]types.Value, 0, 5)
	for i := uint64(1); i <= 5; i++ {
		rows = append(rows, []types.Value{i, "row"})
	}
	if err := writer.Insert(table, []string{"id", "name"}, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}

	out, err := exec.Scan(context.Background(), exec.ScanRequest{
		Table:      table,
		Projection: []string{"id"},
		OrderBy:    []string{"id"},
		Offset:     1,
		Limit:      2,
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.NumRows())
	}
	idCol, _ := out.GetColumn("id")
	if idCol.Value(0).(uint64) != 2 || idCol.Value(1).(uint64) != 3 {
		t.Fatalf("expected offset rows [2,3], got %v,%v", idCol.Value(0), idCol.Value(1))
	}
}
