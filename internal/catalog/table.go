package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/touchhouse/touchhouse/internal/errs"
)

// Table is one table's in-memory state: its definition, its ordered set of
// parts, and the RWMutex guarding them (spec §5). The lock is held shared by
// scans and the merger's read phase, exclusive by writer registration, merge
// swap, and DROP.
type Table struct {
	Def TableDef
	Dir string

	mu    sync.RWMutex
	parts []*Part
}

func newTable(def TableDef, dir string) *Table {
	return &Table{Def: def, Dir: dir}
}

// RegisterPart adds a newly written part under the table's write lock
// (spec §4.6 step 6).
func (t *Table) RegisterPart(p *Part) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.parts = append(t.parts, p)
	sortPartsByID(t.parts)
}

// Snapshot returns the table's current parts under its read lock, for a
// scan to iterate without holding the lock across the whole operation.
// Per spec §5, the *caller* is responsible for holding a shared lock for
// the scan's full duration; Snapshot only protects the slice copy itself.
func (t *Table) Snapshot() []*Part {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Part, len(t.parts))
	copy(out, t.parts)
	return out
}

// RLock/RUnlock expose the table's shared lock to callers that must hold it
// across an entire scan or merge read phase (spec §5).
func (t *Table) RLock()   { t.mu.RLock() }
func (t *Table) RUnlock() { t.mu.RUnlock() }

// ReplaceParts atomically swaps oldParts out for newPart under the table's
// exclusive lock (spec §4.8 merge swap step). oldParts are removed from the
// in-memory list; callers are responsible for deleting their on-disk
// directories only after every existing reader has released its handles.
func (t *Table) ReplaceParts(oldParts []*Part, newPart *Part) {
	t.mu.Lock()
	defer t.mu.Unlock()

	oldSet := make(map[string]bool, len(oldParts))
	for _, p := range oldParts {
		oldSet[p.Info.PartID] = true
	}
	kept := t.parts[:0:0]
	for _, p := range t.parts {
		if !oldSet[p.Info.PartID] {
			kept = append(kept, p)
		}
	}
	kept = append(kept, newPart)
	sortPartsByID(kept)
	t.parts = kept
}

func sortPartsByID(parts []*Part) {
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Info.PartID < parts[j].Info.PartID
	})
}

// loadParts scans the table directory for part subdirectories and opens
// each, skipping temp and quarantined entries. Corrupt parts are moved
// aside by the caller (internal/recovery), not here — loadParts silently
// skips any entry whose part.inf or column files fail to load, and returns
// an error only when the table directory itself cannot be read.
func loadParts(tableDir string) ([]*Part, error) {
	entries, err := os.ReadDir(tableDir)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, err, "reading table dir %s", tableDir)
	}

	var parts []*Part
	for _, e := range entries {
		if !e.IsDir() || isReservedTableEntry(e.Name()) {
			continue
		}
		dir := filepath.Join(tableDir, e.Name())
		info, err := readPartInfo(dir)
		if err != nil {
			continue // missing/corrupt part.inf: recovery quarantines it
		}
		p, err := OpenPart(dir, info)
		if err != nil {
			continue // bad column file: recovery quarantines it
		}
		parts = append(parts, p)
	}
	sortPartsByID(parts)
	return parts, nil
}

func isReservedTableEntry(name string) bool {
	return name == "corrupt" || len(name) >= 5 && name[:5] == ".tmp-"
}
