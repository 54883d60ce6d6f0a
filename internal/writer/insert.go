// Package writer implements INSERT (spec §4.6): validate the incoming row
// batch against the table schema, sort it by order_by, split it into
// granule_size-sized granules tracking per-granule min/max, and hand the
// result to internal/catalog's atomic part-write protocol.
package writer

import (
	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/column"
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/types"
)

// Insert validates, sorts, and writes rows as a single new part registered
// on table. columnNames names the columns rows supplies values for, in the
// same order as each inner row slice; any table column absent from
// columnNames takes its default (or Null).
func Insert(table *catalog.Table, columnNames []string, rows [][]types.Value) error {
	if len(rows) == 0 {
		return nil
	}
	def := &table.Def

	block, err := buildBlock(def, columnNames, rows)
	if err != nil {
		return err
	}
	if err := block.SortByColumns(def.OrderBy); err != nil {
		return errs.Wrap(errs.Internal, err, "sorting insert batch for table %q", def.Name)
	}

	part, err := WriteBlockAsPart(table, block)
	if err != nil {
		return err
	}
	table.RegisterPart(part)
	return nil
}

// buildBlock assembles an in-memory Block from the caller's row-major input,
// applying spec §4.6 step 1: unknown columns fail SchemaViolation, missing
// columns take their default (or Null if nullable with none), and every
// supplied value must match its column's DataType.
func buildBlock(def *catalog.TableDef, columnNames []string, rows [][]types.Value) (*column.Block, error) {
	supplied := make(map[string]int, len(columnNames))
	for i, name := range columnNames {
		if _, ok := def.ColumnDef(name); !ok {
			return nil, errs.New(errs.SchemaViolation, "unknown column %q", name)
		}
		supplied[name] = i
	}

	names := def.ColumnNames()
	cols := make([]column.Column, len(def.Columns))
	for ci, c := range def.Columns {
		col := column.NewColumnWithCapacity(c.DataType, len(rows))
		srcIdx, isSupplied := supplied[c.Name]
		for _, row := range rows {
			if !isSupplied {
				dv := defaultValue(c)
				if dv == nil && !c.Nullable {
					return nil, errs.New(errs.SchemaViolation, "column %q is missing, not nullable, and has no default", c.Name)
				}
				col.Append(dv)
				continue
			}
			if srcIdx >= len(row) {
				return nil, errs.New(errs.SchemaViolation, "row is missing a value for column %q", c.Name)
			}
			v := row[srcIdx]
			if v == nil {
				if !c.Nullable {
					return nil, errs.New(errs.SchemaViolation, "column %q is not nullable", c.Name)
				}
				col.Append(nil)
				continue
			}
			if !valueMatchesType(c.DataType, v) {
				return nil, errs.New(errs.SchemaViolation, "type mismatch for column %q: got %T", c.Name, v)
			}
			col.Append(v)
		}
		cols[ci] = col
	}
	return column.NewBlock(names, cols), nil
}

func defaultValue(c catalog.ColumnDef) types.Value {
	if c.Default != nil {
		return c.Default
	}
	return nil
}

func valueMatchesType(dt types.DataType, v types.Value) bool {
	switch dt {
	case types.TypeString:
		_, ok := v.(string)
		return ok
	case types.TypeUuid:
		_, ok := v.(types.Uuid)
		return ok
	case types.TypeBool:
		_, ok := v.(bool)
		return ok
	case types.TypeInt8:
		_, ok := v.(int8)
		return ok
	case types.TypeInt16:
		_, ok := v.(int16)
		return ok
	case types.TypeInt32:
		_, ok := v.(int32)
		return ok
	case types.TypeInt64:
		_, ok := v.(int64)
		return ok
	case types.TypeUInt8:
		_, ok := v.(uint8)
		return ok
	case types.TypeUInt16:
		_, ok := v.(uint16)
		return ok
	case types.TypeUInt32:
		_, ok := v.(uint32)
		return ok
	case types.TypeUInt64:
		_, ok := v.(uint64)
		return ok
	default:
		return false
	}
}
