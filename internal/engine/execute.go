package engine

import (
	"context"

	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/exec"
	"github.com/touchhouse/touchhouse/internal/writer"
)

// OutputTable is what a plan produces. DDL and Insert plans return nil; Scan
// returns the materialized result (spec §4.7).
type OutputTable = exec.OutputTable

// Execute runs plan against cat. It is the single entry point
// internal/protocol's handler calls after decoding a wire request into a
// PhysicalPlan (spec §2 item 10, §6.1).
func Execute(ctx context.Context, cat *catalog.Catalog, plan PhysicalPlan) (*OutputTable, error) {
	switch p := plan.(type) {
	case CreateDatabase:
		return nil, cat.CreateDatabase(p.Name, p.IfNotExists)
	case DropDatabase:
		return nil, cat.DropDatabase(p.Name, p.IfExists)
	case CreateTable:
		return nil, cat.CreateTable(p.Database, p.Def, p.IfNotExists)
	case DropTable:
		return nil, cat.DropTable(p.Database, p.Table, p.IfExists)
	case Insert:
		return nil, executeInsert(cat, p)
	case Scan:
		return executeScan(ctx, cat, p)
	default:
		return nil, errs.New(errs.Internal, "unrecognized physical plan type %T", plan)
	}
}

func executeInsert(cat *catalog.Catalog, p Insert) error {
	table, err := cat.GetTable(p.Database, p.Table)
	if err != nil {
		return err
	}
	return writer.Insert(table, p.Columns, p.Rows)
}

func executeScan(ctx context.Context, cat *catalog.Catalog, p Scan) (*OutputTable, error) {
	table, err := cat.GetTable(p.Database, p.Table)
	if err != nil {
		return nil, err
	}
	return exec.Scan(ctx, exec.ScanRequest{
		Table:      table,
		Projection: p.Projection,
		Predicate:  p.Predicate,
		OrderBy:    p.OrderBy,
		Offset:     p.Offset,
		Limit:      p.Limit,
		Catalog:    cat,
	})
}
