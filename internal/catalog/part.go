package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/touchhouse/touchhouse/internal/colfile"
	"github.com/touchhouse/touchhouse/internal/errs"
)

// NewPartID generates a time-ordered part identifier. Lexicographic string
// order of the UUIDv7 text form equals creation order (spec §3, §4.4).
func NewPartID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errs.Wrap(errs.Internal, err, "generating part id")
	}
	return id.String(), nil
}

// partInfoFile is part.inf's JSON document (spec §3, §4.4): written last in
// the atomic write protocol so an incomplete directory is recognizable.
type partInfoFile struct {
	PartID              string            `json:"part_id"`
	CreatedAt           time.Time         `json:"created_at"`
	RowCount            uint64            `json:"row_count"`
	Columns             []string          `json:"columns"`
	EngineSpecificState map[string]string `json:"engine_specific_summary,omitempty"`
}

// PartInfo is the in-memory counterpart of part.inf.
type PartInfo struct {
	PartID    string
	CreatedAt time.Time
	RowCount  uint64
	Columns   []string
	// EngineState is persisted as part.inf's engine_specific_summary and
	// read back on load; no engine currently sets or reads it.
	EngineState map[string]string
}

// Part is a fully registered, immutable part: its metadata plus an open
// handle to each of its column files.
type Part struct {
	Info PartInfo
	Dir  string

	columns map[string]*colfile.File
}

// WritePart performs the atomic write protocol (spec §4.4): write every
// column file and part.inf into a temp directory, fsync each file, fsync
// the directory, then rename into place. columnData maps column name to a
// ready *colfile.Writer for that column. part.inf is written last, after
// every column file, and the directory fsync happens after part.inf so it
// captures part.inf's dentry along with the rest.
func WritePart(tableDir string, info PartInfo, columnData map[string]*colfile.Writer) (*Part, error) {
	tmpDir := filepath.Join(tableDir, ".tmp-"+info.PartID)
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, errs.Wrap(errs.IoError, err, "creating temp part dir %s", tmpDir)
	}

	for name, w := range columnData {
		path := filepath.Join(tmpDir, name+".bin")
		if err := w.WriteFile(path); err != nil {
			os.RemoveAll(tmpDir)
			return nil, err
		}
	}

	data, err := json.MarshalIndent(partInfoFile{
		PartID:              info.PartID,
		CreatedAt:           info.CreatedAt,
		RowCount:            info.RowCount,
		Columns:             info.Columns,
		EngineSpecificState: info.EngineState,
	}, "", "  ")
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, errs.Wrap(errs.Internal, err, "marshaling part.inf")
	}

	// part.inf last among the files: a partial directory missing it is
	// recognizable as incomplete by recovery (spec §4.4, §4.9). Write it,
	// fsync its own descriptor, then fsync the directory so the rename below
	// observes every file's data and every file's dentry, including
	// part.inf's.
	infoPath := filepath.Join(tmpDir, "part.inf")
	infoFile, err := os.Create(infoPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, errs.Wrap(errs.IoError, err, "creating part.inf")
	}
	if _, err := infoFile.Write(data); err != nil {
		infoFile.Close()
		os.RemoveAll(tmpDir)
		return nil, errs.Wrap(errs.IoError, err, "writing part.inf")
	}
	if err := infoFile.Sync(); err != nil {
		infoFile.Close()
		os.RemoveAll(tmpDir)
		return nil, errs.Wrap(errs.IoError, err, "fsync part.inf")
	}
	infoFile.Close()

	dirFile, err := os.Open(tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, errs.Wrap(errs.IoError, err, "opening temp part dir for fsync")
	}
	if err := dirFile.Sync(); err != nil {
		dirFile.Close()
		os.RemoveAll(tmpDir)
		return nil, errs.Wrap(errs.IoError, err, "fsync temp part dir")
	}
	dirFile.Close()

	finalDir := filepath.Join(tableDir, info.PartID)
	if err := os.Rename(tmpDir, finalDir); err != nil {
		os.RemoveAll(tmpDir)
		return nil, errs.Wrap(errs.IoError, err, "renaming part into place")
	}

	return OpenPart(finalDir, info)
}

// OpenPart mmaps every column file of an already-written part directory.
func OpenPart(dir string, info PartInfo) (*Part, error) {
	columns := make(map[string]*colfile.File, len(info.Columns))
	for _, name := range info.Columns {
		f, err := colfile.OpenFile(filepath.Join(dir, name+".bin"))
		if err != nil {
			for _, open := range columns {
				open.Close()
			}
			return nil, errs.Wrap(errs.CorruptPart, err, "opening column %q of part %s", name, info.PartID)
		}
		columns[name] = f
	}
	return &Part{Info: info, Dir: dir, columns: columns}, nil
}

// Column returns the opened column file for name, or false if the part has
// no such column (e.g. a column added after this part was written).
func (p *Part) Column(name string) (*colfile.File, bool) {
	f, ok := p.columns[name]
	return f, ok
}

// Close releases every column file handle this part holds.
func (p *Part) Close() {
	for _, f := range p.columns {
		f.Close()
	}
}

// ValidatePart checks that dir holds a structurally valid part: a parseable
// part.inf and every column file passing header/index validation. It opens
// and immediately closes the part, so callers pay the mmap/validate cost
// once without leaking handles. Used by internal/recovery's pre-Open sweep
// (spec §4.9) to decide whether a part directory is safe to leave in place.
func ValidatePart(dir string) (PartInfo, error) {
	info, err := readPartInfo(dir)
	if err != nil {
		return PartInfo{}, errs.Wrap(errs.CorruptPart, err, "reading part.inf in %s", dir)
	}
	p, err := OpenPart(dir, info)
	if err != nil {
		return PartInfo{}, err
	}
	p.Close()
	return info, nil
}

// readPartInfo loads part.inf from a part directory.
func readPartInfo(dir string) (PartInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, "part.inf"))
	if err != nil {
		return PartInfo{}, err
	}
	var f partInfoFile
	if err := json.Unmarshal(data, &f); err != nil {
		return PartInfo{}, fmt.Errorf("parsing part.inf: %w", err)
	}
	return PartInfo{
		PartID:      f.PartID,
		CreatedAt:   f.CreatedAt,
		RowCount:    f.RowCount,
		Columns:     f.Columns,
		EngineState: f.EngineSpecificState,
	}, nil
}
