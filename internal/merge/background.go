package merge

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/touchhouse/touchhouse/internal/catalog"
)

// Worker runs the single background merge process a whole server instance
// carries (spec §4.8: "single merge worker per process"). Each tick it
// proceeds only if the catalog's in-flight query count is at or under
// AvailableUnder, then merges one adjacent part pair per table.
type Worker struct {
	Catalog        *catalog.Catalog
	AvailableUnder int64 // background_merge_available_under, spec §6.3
	Interval       time.Duration
	Log            zerolog.Logger
}

// NewWorker builds a Worker with the spec's default tick interval.
func NewWorker(cat *catalog.Catalog, availableUnder int64, log zerolog.Logger) *Worker {
	return &Worker{Catalog: cat, AvailableUnder: availableUnder, Interval: 5 * time.Second, Log: log}
}

// Run blocks, ticking until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Worker) tick() {
	if w.Catalog.ActiveQueries() > w.AvailableUnder {
		return
	}
	for _, table := range w.Catalog.AllTables() {
		w.mergeOneTable(table)
	}
}

func (w *Worker) mergeOneTable(table *catalog.Table) {
	a, b, ok := SelectAdjacentPair(table)
	if !ok {
		return
	}

	newPart, err := MergeTwoParts(table, a, b)
	if err != nil {
		w.Log.Error().Err(err).Str("table", table.Def.Name).Msg("merge failed")
		return
	}

	// Step 3: re-verify both sources are still present before swapping, in
	// case a concurrent merge or DROP already touched this table. Snapshot
	// takes its own read lock, so no lock is held across the check.
	stillPresent := partStillPresent(table, a.Info.PartID) && partStillPresent(table, b.Info.PartID)
	if !stillPresent {
		newPart.Close()
		w.Log.Warn().Str("table", table.Def.Name).Msg("merge sources changed before swap, discarding result")
		return
	}

	table.ReplaceParts([]*catalog.Part{a, b}, newPart)
	w.Log.Info().
		Str("table", table.Def.Name).
		Str("new_part", newPart.Info.PartID).
		Uint64("rows", newPart.Info.RowCount).
		Msg("merged two parts")

	// Grace period before deleting source directories, so any scanner that
	// took its part snapshot just before the swap still has valid mmaps
	// (spec §4.8 step 4).
	go deleteAfterGrace(a, 10*time.Second)
	go deleteAfterGrace(b, 10*time.Second)
}

func partStillPresent(table *catalog.Table, partID string) bool {
	for _, p := range table.Snapshot() {
		if p.Info.PartID == partID {
			return true
		}
	}
	return false
}

func deleteAfterGrace(part *catalog.Part, grace time.Duration) {
	time.Sleep(grace)
	part.Close()
	os.RemoveAll(part.Dir)
}
