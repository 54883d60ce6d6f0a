package recovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/recovery"
	"github.com/touchhouse/touchhouse/internal/types"
	"github.com/touchhouse/touchhouse/internal/writer"
)

func mustTableDir(t *testing.T, root string) string {
	t.Helper()
	cat, err := catalog.Open(root)
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
		},
		OrderBy:     []string{"id"},
		PrimaryKey:  []string{"id"},
		Engine:      catalog.MergeTree,
		GranuleSize: 8192,
	}
	if err := cat.CreateTable("db", def, false); err != nil {
		t.Fatalf("create table: %v", err)
	}
	table, err := cat.GetTable("db", "events")
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if err := writer.Insert(table, []string{"id"}, [][]types.Value{{uint64(1)}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return table.Dir
}

func TestRunRemovesOrphanedTempDir(t *testing.T) {
	root := t.TempDir()
	tableDir := mustTableDir(t, root)

	tmpDir := filepath.Join(tableDir, ".tmp-deadbeef")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		t.Fatalf("mkdir tmp dir: %v", err)
	}

	report, err := recovery.Run(root, zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.RemovedTempDirs) != 1 {
		t.Fatalf("expected 1 removed temp dir, got %d", len(report.RemovedTempDirs))
	}
	if _, err := os.Stat(tmpDir); !os.IsNotExist(err) {
		t.Fatalf("expected temp dir to be removed, stat err: %v", err)
	}
}

func TestRunQuarantinesPartWithMissingPartInfo(t *testing.T) {
	root := t.TempDir()
	tableDir := mustTableDir(t, root)

	entries, err := os.ReadDir(tableDir)
	if err != nil {
		t.Fatalf("read table dir: %v", err)
	}
	var partDir string
	for _, e := range entries {
		if e.IsDir() {
			partDir = filepath.Join(tableDir, e.Name())
		}
	}
	if partDir == "" {
		t.Fatal("expected a part directory to exist")
	}
	if err := os.Remove(filepath.Join(partDir, "part.inf")); err != nil {
		t.Fatalf("remove part.inf: %v", err)
	}

	report, err := recovery.Run(root, zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.QuarantinedParts) != 1 {
		t.Fatalf("expected 1 quarantined part, got %d", len(report.QuarantinedParts))
	}
	if _, err := os.Stat(partDir); !os.IsNotExist(err) {
		t.Fatalf("expected original part dir to be gone, stat err: %v", err)
	}
	quarantined := filepath.Join(tableDir, "corrupt", filepath.Base(partDir))
	if _, err := os.Stat(quarantined); err != nil {
		t.Fatalf("expected part to be moved to %s: %v", quarantined, err)
	}
}

func TestRunLeavesValidPartsAlone(t *testing.T) {
	root := t.TempDir()
	mustTableDir(t, root)

	report, err := recovery.Run(root, zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.RemovedTempDirs) != 0 || len(report.QuarantinedParts) != 0 {
		t.Fatalf("expected no action on a clean table dir, got %+v", report)
	}

	cat, err := catalog.Open(root)
	if err != nil {
		t.Fatalf("reopen catalog: %v", err)
	}
	table, err := cat.GetTable("db", "events")
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if len(table.Snapshot()) != 1 {
		t.Fatalf("expected the valid part to still load, got %d parts", len(table.Snapshot()))
	}
}
