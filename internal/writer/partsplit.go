package writer

import (
	"time"

	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/colfile"
	"github.com/touchhouse/touchhouse/internal/compression"
	"github.com/touchhouse/touchhouse/internal/column"
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/granule"
	"github.com/touchhouse/touchhouse/internal/types"
)

// WriteBlockAsPart splits block into granule_size-sized granules, tracking
// per-granule min/max, and writes the result as a new part under table's
// directory via internal/catalog's atomic write protocol (spec §4.4). The
// caller is responsible for registering the part with the table (Insert
// uses RegisterPart; internal/merge uses ReplaceParts).
func WriteBlockAsPart(table *catalog.Table, block *column.Block) (*catalog.Part, error) {
	def := &table.Def
	granuleSize := def.EffectiveGranuleSize()
	totalRows := block.NumRows()

	writers := make(map[string]*colfile.Writer, len(def.Columns))
	for _, c := range def.Columns {
		writers[c.Name] = colfile.NewWriter(c.DataType, &compression.LZ4Codec{}, uint32(granuleSize))
	}

	for start := 0; start < totalRows; start += granuleSize {
		end := start + granuleSize
		if end > totalRows {
			end = totalRows
		}
		for _, c := range def.Columns {
			col, ok := block.GetColumn(c.Name)
			if !ok {
				return nil, errs.New(errs.Internal, "column %q missing from block being written as a part", c.Name)
			}
			values := columnSliceValues(col, start, end)
			mm := granule.Scan(c.DataType, values)
			writers[c.Name].AppendGranule(values, mm)
		}
	}

	partID, err := catalog.NewPartID()
	if err != nil {
		return nil, err
	}
	info := catalog.PartInfo{
		PartID:    partID,
		CreatedAt: time.Now().UTC(),
		RowCount:  uint64(totalRows),
		Columns:   def.ColumnNames(),
	}
	return catalog.WritePart(table.Dir, info, writers)
}

// columnSliceValues materializes rows [start, end) of col as a plain
// []types.Value slice, the shape internal/granule's encoder expects.
func columnSliceValues(col column.Column, start, end int) []types.Value {
	values := make([]types.Value, end-start)
	for i := start; i < end; i++ {
		values[i-start] = col.Value(i)
	}
	return values
}
