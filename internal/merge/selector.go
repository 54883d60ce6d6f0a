// Package merge implements the background compaction worker (spec §4.8):
// pick the two adjacent parts of a table with the smallest combined row
// count, merge them (deduplicating on primary key for ReplacingMergeTree),
// and atomically swap the result in.
package merge

import "github.com/touchhouse/touchhouse/internal/catalog"

// SelectAdjacentPair picks the two adjacent (by creation order) parts of
// table with the smallest combined row_count, or reports ok=false if the
// table has fewer than two parts (spec §4.8's selection policy).
func SelectAdjacentPair(table *catalog.Table) (a, b *catalog.Part, ok bool) {
	parts := table.Snapshot() // already creation-ordered, see Table.Snapshot
	if len(parts) < 2 {
		return nil, nil, false
	}

	bestIdx := 0
	bestSum := parts[0].Info.RowCount + parts[1].Info.RowCount
	for i := 1; i < len(parts)-1; i++ {
		sum := parts[i].Info.RowCount + parts[i+1].Info.RowCount
		if sum < bestSum {
			bestSum = sum
			bestIdx = i
		}
	}
	return parts[bestIdx], parts[bestIdx+1], true
}
