package exec

import (
	"container/heap"
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/column"
	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/types"
)

// ScanRequest is a physical scan's input: the table to read, the columns to
// project, an optional pushed-down predicate, an optional ordering, and an
// offset/limit pair (spec §4.7).
type ScanRequest struct {
	Table      *catalog.Table
	Projection []string // empty means every table column, in schema order
	Predicate  Predicate
	OrderBy    []string // empty means no ordering guarantee
	Offset     int
	Limit      int // 0 means unlimited

	// Catalog, if set, has its in-flight scan count tracked for the
	// background merger's backpressure check (spec §4.8). Optional: nil
	// skips the bookkeeping, as in tests that scan a table without a
	// catalog-wide merger running.
	Catalog *catalog.Catalog
}

// Scan runs the full physical scan algorithm of spec §4.7: take a shared
// table lock, snapshot the part list, fan out across parts in parallel with
// primary-key granule pruning and vectorized predicate evaluation, then
// merge the per-part results, apply ordering, and finally offset/limit.
func Scan(ctx context.Context, req ScanRequest) (*OutputTable, error) {
	if req.Catalog != nil {
		req.Catalog.BeginQuery()
		defer req.Catalog.EndQuery()
	}

	table := req.Table
	def := &table.Def

	projection := req.Projection
	if len(projection) == 0 {
		projection = def.ColumnNames()
	}
	needed := unionColumns(projection, Columns(req.Predicate), req.OrderBy)

	var kc *KeyCondition
	if len(def.PrimaryKey) > 0 {
		kc = NewKeyCondition(req.Predicate, def.PrimaryKey)
	}

	// Step 1-2: shared lock held for the scan's full duration; the part
	// snapshot is a cheap slice copy taken under it.
	table.RLock()
	defer table.RUnlock()
	parts := table.Snapshot()

	perPart := make([]*column.Block, len(parts))
	group, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		i, part := i, part
		group.Go(func() error {
			blk, err := scanPart(gctx, part, def, kc, needed, req.Predicate)
			if err != nil {
				return err
			}
			perPart[i] = blk
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged, err := mergeParts(perPart, needed, req.OrderBy, def.OrderBy)
	if err != nil {
		return nil, err
	}

	out, err := merged.SelectColumns(projection)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "projecting scan result")
	}
	return applyOffsetLimit(out, req.Offset, req.Limit), nil
}

// scanPart reads one part's needed columns, pruning granules by primary-key
// range when possible (step 3b) and evaluating the predicate vectorially
// over the surviving granules (steps 3c-3e).
func scanPart(ctx context.Context, part *catalog.Part, def *catalog.TableDef, kc *KeyCondition, needed []string, pred Predicate) (*column.Block, error) {
	cols := make([]column.Column, len(needed))
	dts := make([]types.DataType, len(needed))
	granuleCount := 0
	for i, name := range needed {
		file, ok := part.Column(name)
		if !ok {
			return nil, errs.New(errs.Internal, "part %s has no column %q", part.Info.PartID, name)
		}
		dts[i] = file.Header.Type
		cols[i] = column.NewColumn(dts[i])
		if granuleCount == 0 || len(file.Index) < granuleCount {
			granuleCount = len(file.Index)
		}
	}

	surviving := allGranules(granuleCount)
	if kc != nil && len(def.PrimaryKey) > 0 {
		if _, ok := part.Column(def.PrimaryKey[0]); ok {
			surviving = kc.SurvivingGranules(part, def.PrimaryKey[0], granuleCount)
		}
	}

	totalRows := int(part.Info.RowCount)
	result := column.NewBlock(append([]string(nil), needed...), cols)
	for _, g := range surviving {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.Cancelled, err, "scan of part %s cancelled", part.Info.PartID)
		}
		granuleCols := make([]column.Column, len(needed))
		for i, name := range needed {
			file, _ := part.Column(name)
			view, err := file.ReadGranule(g, totalRows)
			if err != nil {
				return nil, err
			}
			col := column.NewColumnWithCapacity(dts[i], view.Len())
			for r := 0; r < view.Len(); r++ {
				col.Append(view.ValueAt(r))
			}
			granuleCols[i] = col
		}
		granuleBlock := column.NewBlock(append([]string(nil), needed...), granuleCols)
		mask := EvalMask(pred, granuleBlock)
		filtered := granuleBlock.FilterRowsByMask(mask)
		if err := result.AppendBlock(filtered); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "appending granule %d of part %s", g, part.Info.PartID)
		}
	}
	return result, nil
}

func allGranules(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// unionColumns returns the deduplicated union of every name across lists,
// preserving first-seen order.
func unionColumns(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, name := range list {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// mergeParts concatenates each part's result block. When the requested
// ordering is a prefix of the table's own order_by, every per-part block is
// already sorted consistently (granules are written in order_by order at
// insert time and merge preserves it), so a k-way merge suffices (step 4's
// "parts' intrinsic order_by ordering" path). Otherwise it falls back to a
// full concatenate-then-sort.
func mergeParts(perPart []*column.Block, needed []string, orderBy []string, tableOrderBy []string) (*column.Block, error) {
	nonEmpty := perPart[:0:0]
	for _, b := range perPart {
		if b != nil && b.NumRows() > 0 {
			nonEmpty = append(nonEmpty, b)
		}
	}
	if len(orderBy) == 0 {
		return concatBlocks(needed, nonEmpty), nil
	}
	if isPrefix(orderBy, tableOrderBy) {
		return kWayMerge(needed, nonEmpty, orderBy)
	}
	merged := concatBlocks(needed, nonEmpty)
	if err := merged.SortByColumns(orderBy); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "sorting scan result")
	}
	return merged, nil
}

func isPrefix(prefix, full []string) bool {
	if len(prefix) > len(full) {
		return false
	}
	for i, name := range prefix {
		if full[i] != name {
			return false
		}
	}
	return true
}

func concatBlocks(needed []string, blocks []*column.Block) *column.Block {
	cols := make([]column.Column, len(needed))
	for i, name := range needed {
		dt := types.TypeString
		for _, b := range blocks {
			if c, ok := b.GetColumn(name); ok {
				dt = c.DataType()
				break
			}
		}
		cols[i] = column.NewColumn(dt)
	}
	merged := column.NewBlock(append([]string(nil), needed...), cols)
	for _, b := range blocks {
		merged.AppendBlock(b)
	}
	return merged
}

// heapItem is one part's current head row in the k-way merge.
type heapItem struct {
	block *column.Block
	row   int
}

type mergeHeap struct {
	items  []heapItem
	keyIdx []int
	keyDTs []types.DataType
}

func (h *mergeHeap) Len() int { return len(h.items) }
func (h *mergeHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	for k, colIdx := range h.keyIdx {
		va := a.block.Columns[colIdx].Value(a.row)
		vb := b.block.Columns[colIdx].Value(b.row)
		cmp := types.CompareForSort(h.keyDTs[k], va, vb)
		if cmp != 0 {
			return cmp < 0
		}
	}
	return false
}
func (h *mergeHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *mergeHeap) Push(x interface{}) { h.items = append(h.items, x.(heapItem)) }
func (h *mergeHeap) Pop() interface{} {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	return item
}

// kWayMerge merges blocks, each already sorted by orderBy, into one sorted
// block using a min-heap over their current head rows (spec §4.7 step 4).
func kWayMerge(needed []string, blocks []*column.Block, orderBy []string) (*column.Block, error) {
	if len(blocks) == 0 {
		return concatBlocks(needed, blocks), nil
	}
	keyIdx := make([]int, len(orderBy))
	keyDTs := make([]types.DataType, len(orderBy))
	for i, name := range orderBy {
		idx, ok := blocks[0].GetColumnIndex(name)
		if !ok {
			return nil, errs.New(errs.Internal, "order_by column %q missing from scan result", name)
		}
		keyIdx[i] = idx
		keyDTs[i] = blocks[0].Columns[idx].DataType()
	}

	h := &mergeHeap{keyIdx: keyIdx, keyDTs: keyDTs}
	for _, b := range blocks {
		if b.NumRows() > 0 {
			h.items = append(h.items, heapItem{block: b, row: 0})
		}
	}
	heap.Init(h)

	cols := make([]column.Column, len(needed))
	for i := range needed {
		cols[i] = column.NewColumn(blocks[0].Columns[i].DataType())
	}
	out := column.NewBlock(append([]string(nil), needed...), cols)

	for h.Len() > 0 {
		top := h.items[0]
		for colIdx := range needed {
			out.Columns[colIdx].Append(top.block.Columns[colIdx].Value(top.row))
		}
		if top.row+1 < top.block.NumRows() {
			h.items[0].row++
			heap.Fix(h, 0)
		} else {
			heap.Pop(h)
		}
	}
	return out, nil
}

func applyOffsetLimit(b *column.Block, offset, limit int) *column.Block {
	n := b.NumRows()
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return b.SliceRows(offset, end)
}
