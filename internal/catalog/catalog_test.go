package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/touchhouse/touchhouse/internal/colfile"
	"github.com/touchhouse/touchhouse/internal/compression"
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/granule"
	"github.com/touchhouse/touchhouse/internal/types"
)

func mustTableDef(t *testing.T) TableDef {
	t.Helper()
	return TableDef{
		Name: "events",
		Columns: []ColumnDef{
			{Name: "id", DataType: types.TypeUInt64},
			{Name: "name", DataType: types.TypeString, Nullable: true},
		},
		OrderBy:    []string{"id"},
		PrimaryKey: []string{"id"},
		Engine:     MergeTree,
	}
}

func TestCreateDropDatabaseAndTable(t *testing.T) {
	cat, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	if err := cat.CreateDatabase("db", false); err != nil {
		t.Fatalf("create database: %v", err)
	}
	if err := cat.CreateDatabase("db", false); !errs.Is(err, errs.AlreadyExists) {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
	if err := cat.CreateDatabase("db", true); err != nil {
		t.Fatalf("if_not_exists should suppress error: %v", err)
	}

	if err := cat.CreateTable("db", mustTableDef(t), false); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := cat.GetTable("db", "events"); err != nil {
		t.Fatalf("get table: %v", err)
	}

	if err := cat.DropDatabase("db", false); !errs.Is(err, errs.NotEmpty) {
		t.Fatalf("expected NotEmpty dropping a database with a table, got %v", err)
	}
	if err := cat.DropTable("db", "events", false); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if err := cat.DropDatabase("db", false); err != nil {
		t.Fatalf("drop now-empty database: %v", err)
	}
}

func TestCreateTableValidation(t *testing.T) {
	cat, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	if err := cat.CreateDatabase("db", false); err != nil {
		t.Fatalf("create database: %v", err)
	}

	def := mustTableDef(t)
	def.PrimaryKey = []string{"name"} // not a prefix of order_by
	if err := cat.CreateTable("db", def, false); !errs.Is(err, errs.SchemaViolation) {
		t.Fatalf("expected SchemaViolation for non-prefix primary key, got %v", err)
	}

	def2 := mustTableDef(t)
	def2.Engine = ReplacingMergeTree
	def2.PrimaryKey = nil
	if err := cat.CreateTable("db", def2, false); !errs.Is(err, errs.SchemaViolation) {
		t.Fatalf("expected SchemaViolation for ReplacingMergeTree without primary key, got %v", err)
	}
}

func TestRegisterPartAndReopenRecovers(t *testing.T) {
	root := t.TempDir()
	cat, err := Open(root)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	if err := cat.CreateDatabase("db", false); err != nil {
		t.Fatalf("create database: %v", err)
	}
	if err := cat.CreateTable("db", mustTableDef(t), false); err != nil {
		t.Fatalf("create table: %v", err)
	}
	table, err := cat.GetTable("db", "events")
	if err != nil {
		t.Fatalf("get table: %v", err)
	}

	partID, err := NewPartID()
	if err != nil {
		t.Fatalf("new part id: %v", err)
	}

	idValues := []types.Value{uint64(1), uint64(2), uint64(3)}
	idWriter := colfile.NewWriter(types.TypeUInt64, &compression.LZ4Codec{}, 8192)
	idWriter.AppendGranule(idValues, granule.Scan(types.TypeUInt64, idValues))

	nameValues := []types.Value{"a", "b", "c"}
	nameWriter := colfile.NewWriter(types.TypeString, &compression.LZ4Codec{}, 8192)
	nameWriter.AppendGranule(nameValues, granule.MinMax{})

	info := PartInfo{
		PartID:    partID,
		CreatedAt: time.Now().UTC(),
		RowCount:  3,
		Columns:   []string{"id", "name"},
	}
	part, err := WritePart(table.Dir, info, map[string]*colfile.Writer{
		"id":   idWriter,
		"name": nameWriter,
	})
	if err != nil {
		t.Fatalf("write part: %v", err)
	}
	table.RegisterPart(part)

	snap := table.Snapshot()
	if len(snap) != 1 || snap[0].Info.PartID != partID {
		t.Fatalf("expected 1 registered part, got %d", len(snap))
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("reopen catalog: %v", err)
	}
	reopenedTable, err := reopened.GetTable("db", "events")
	if err != nil {
		t.Fatalf("get table after reopen: %v", err)
	}
	reopenedParts := reopenedTable.Snapshot()
	if len(reopenedParts) != 1 || reopenedParts[0].Info.PartID != partID {
		t.Fatalf("expected recovery to find the registered part, got %d parts", len(reopenedParts))
	}
	if reopenedParts[0].Info.RowCount != 3 {
		t.Fatalf("expected row count 3, got %d", reopenedParts[0].Info.RowCount)
	}
}

func TestIncompletePartIsInvisibleAfterReopen(t *testing.T) {
	root := t.TempDir()
	cat, err := Open(root)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	if err := cat.CreateDatabase("db", false); err != nil {
		t.Fatalf("create database: %v", err)
	}
	if err := cat.CreateTable("db", mustTableDef(t), false); err != nil {
		t.Fatalf("create table: %v", err)
	}
	table, _ := cat.GetTable("db", "events")

	// Simulate a crash mid-write: a .tmp-<id> directory with no part.inf.
	partID, _ := NewPartID()
	tmpDir := filepath.Join(table.Dir, ".tmp-"+partID)
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		t.Fatalf("setup temp dir: %v", err)
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("reopen catalog: %v", err)
	}
	reopenedTable, err := reopened.GetTable("db", "events")
	if err != nil {
		t.Fatalf("get table after reopen: %v", err)
	}
	if len(reopenedTable.Snapshot()) != 0 {
		t.Fatal("expected the incomplete part's temp directory to be invisible to recovery")
	}
}
