package merge

import (
	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/colfile"
	"github.com/touchhouse/touchhouse/internal/column"
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/types"
	"github.com/touchhouse/touchhouse/internal/writer"
)

// MergeTwoParts merges a and b — a created before b — into one new part
// written under table's directory (spec §4.8 steps 1-2: read both sources'
// mmaps without holding the table lock, then write the merged result as a
// fresh part). It does not register the result; the caller takes the
// table's exclusive lock, verifies a and b are still present, and swaps via
// Table.ReplaceParts (spec §4.8 step 3).
//
// For a MergeTree table this is a plain stable k-way merge by order_by.
// For ReplacingMergeTree, rows sharing an identical primary_key are
// additionally collapsed to the copy from the later-created part.
func MergeTwoParts(table *catalog.Table, a, b *catalog.Part) (*catalog.Part, error) {
	def := &table.Def
	colNames := def.ColumnNames()

	blockA, err := readWholePart(a, colNames)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "reading part %s for merge", a.Info.PartID)
	}
	blockB, err := readWholePart(b, colNames)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "reading part %s for merge", b.Info.PartID)
	}

	merged, fromB, err := mergeTwoBlocks(blockA, blockB, def.OrderBy)
	if err != nil {
		return nil, err
	}

	if def.Engine == catalog.ReplacingMergeTree {
		merged, fromB = dedupByPrimaryKey(merged, fromB, def.PrimaryKey)
	}
	_ = fromB // retained for callers that may want provenance; unused past dedup here

	return writer.WriteBlockAsPart(table, merged)
}

// readWholePart materializes every row of part's columnNames into a single
// in-memory Block, granule by granule, in on-disk (order_by-sorted) order.
func readWholePart(part *catalog.Part, columnNames []string) (*column.Block, error) {
	totalRows := int(part.Info.RowCount)
	cols := make([]column.Column, len(columnNames))
	files := make([]*colfile.File, len(columnNames))
	granuleCount := 0
	for i, name := range columnNames {
		f, ok := part.Column(name)
		if !ok {
			return nil, errs.New(errs.Internal, "part %s missing column %q", part.Info.PartID, name)
		}
		files[i] = f
		cols[i] = column.NewColumnWithCapacity(f.Header.Type, totalRows)
		if i == 0 || len(f.Index) < granuleCount {
			granuleCount = len(f.Index)
		}
	}
	for g := 0; g < granuleCount; g++ {
		for i, f := range files {
			view, err := f.ReadGranule(g, totalRows)
			if err != nil {
				return nil, err
			}
			for r := 0; r < view.Len(); r++ {
				cols[i].Append(view.ValueAt(r))
			}
		}
	}
	return column.NewBlock(append([]string(nil), columnNames...), cols), nil
}

// mergeTwoBlocks stably merges a and b by orderBy, preferring a on ties so
// that within any equal-key run, b's rows (the later-created part) land
// last (spec §4.8: "k-way merge by order_by stable"). It returns the
// merged block and a parallel slice recording which source each row came
// from, for dedupByPrimaryKey.
func mergeTwoBlocks(a, b *column.Block, orderBy []string) (*column.Block, []bool, error) {
	keyIdx := make([]int, len(orderBy))
	dts := make([]types.DataType, len(orderBy))
	for i, name := range orderBy {
		idx, ok := a.GetColumnIndex(name)
		if !ok {
			return nil, nil, errs.New(errs.Internal, "order_by column %q missing from merge input", name)
		}
		keyIdx[i] = idx
		dts[i] = a.Columns[idx].DataType()
	}

	cols := make([]column.Column, len(a.ColumnNames))
	for i := range cols {
		cols[i] = column.NewColumnWithCapacity(a.Columns[i].DataType(), a.NumRows()+b.NumRows())
	}
	out := column.NewBlock(append([]string(nil), a.ColumnNames...), cols)
	fromB := make([]bool, 0, a.NumRows()+b.NumRows())

	i, j := 0, 0
	for i < a.NumRows() && j < b.NumRows() {
		cmp := 0
		for k, idx := range keyIdx {
			cmp = types.CompareForSort(dts[k], a.Columns[idx].Value(i), b.Columns[idx].Value(j))
			if cmp != 0 {
				break
			}
		}
		if cmp <= 0 {
			appendRow(out, a, i)
			fromB = append(fromB, false)
			i++
		} else {
			appendRow(out, b, j)
			fromB = append(fromB, true)
			j++
		}
	}
	for ; i < a.NumRows(); i++ {
		appendRow(out, a, i)
		fromB = append(fromB, false)
	}
	for ; j < b.NumRows(); j++ {
		appendRow(out, b, j)
		fromB = append(fromB, true)
	}
	return out, fromB, nil
}

func appendRow(dst, src *column.Block, row int) {
	for i, c := range src.Columns {
		dst.Columns[i].Append(c.Value(row))
	}
}

// dedupByPrimaryKey collapses consecutive rows sharing identical
// primary_key values. Because primary_key is a prefix of order_by, equal-PK
// rows are always contiguous in the merged sequence. Each run keeps its
// last row that came from b (the later-created part), or its last row when
// b contributed none, so the later-created part wins even when order_by
// columns beyond primary_key order a's row after b's.
func dedupByPrimaryKey(block *column.Block, fromB []bool, primaryKey []string) (*column.Block, []bool) {
	if len(primaryKey) == 0 || block.NumRows() == 0 {
		return block, fromB
	}
	pkIdx := make([]int, len(primaryKey))
	dts := make([]types.DataType, len(primaryKey))
	for i, name := range primaryKey {
		idx, _ := block.GetColumnIndex(name)
		pkIdx[i] = idx
		dts[i] = block.Columns[idx].DataType()
	}
	samePK := func(x, y int) bool {
		for k, idx := range pkIdx {
			if types.CompareForSort(dts[k], block.Columns[idx].Value(x), block.Columns[idx].Value(y)) != 0 {
				return false
			}
		}
		return true
	}

	n := block.NumRows()
	keep := make([]bool, n)
	runStart := 0
	for i := 1; i <= n; i++ {
		if i == n || !samePK(runStart, i) {
			pick := i - 1
			for r := i - 1; r >= runStart; r-- {
				if fromB[r] {
					pick = r
					break
				}
			}
			keep[pick] = true
			runStart = i
		}
	}

	filtered := block.FilterRowsByMask(keep)
	newFromB := make([]bool, 0, filtered.NumRows())
	for i, k := range keep {
		if k {
			newFromB = append(newFromB, fromB[i])
		}
	}
	return filtered, newFromB
}
