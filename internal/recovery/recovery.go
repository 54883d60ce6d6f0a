// Package recovery implements the startup sweep spec §4.9 requires before
// internal/catalog.Open loads a storage directory: drop orphaned temp part
// directories left by an interrupted write, and quarantine any part
// directory that fails validation so the catalog's own load never has to
// reason about partially-written or corrupt data.
package recovery

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/errs"
)

// Report summarizes what one Run call did, for logging/diagnostics at
// daemon startup.
type Report struct {
	RemovedTempDirs  []string
	QuarantinedParts []string
}

// Run walks rootDir's database/table tree — the same layout spec §6.2
// defines and internal/catalog.Open loads — removing any ".tmp-<part_id>"
// directory left behind by a write that never reached the final rename
// (spec §4.4), and quarantining any remaining part directory whose part.inf
// is missing/unparseable or whose column files fail header validation.
// Quarantined parts are moved, not deleted, into a "corrupt" sibling
// directory that internal/catalog's own loader already knows to skip.
//
// Run should be called once at daemon startup, before catalog.Open.
func Run(rootDir string, log zerolog.Logger) (Report, error) {
	var report Report

	dbEntries, err := os.ReadDir(rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return report, nil
		}
		return report, errs.Wrap(errs.IoError, err, "reading storage directory %s", rootDir)
	}

	for _, dbEntry := range dbEntries {
		if !dbEntry.IsDir() {
			continue
		}
		dbDir := filepath.Join(rootDir, dbEntry.Name())
		tableEntries, err := os.ReadDir(dbDir)
		if err != nil {
			return report, errs.Wrap(errs.IoError, err, "reading database directory %s", dbDir)
		}
		for _, tableEntry := range tableEntries {
			if !tableEntry.IsDir() {
				continue
			}
			tableDir := filepath.Join(dbDir, tableEntry.Name())
			if _, err := os.Stat(filepath.Join(tableDir, "schema.inf")); err != nil {
				continue // not a table directory
			}
			if err := sweepTable(tableDir, log, &report); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

func sweepTable(tableDir string, log zerolog.Logger, report *Report) error {
	entries, err := os.ReadDir(tableDir)
	if err != nil {
		return errs.Wrap(errs.IoError, err, "reading table directory %s", tableDir)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if name == "corrupt" {
			continue
		}
		dir := filepath.Join(tableDir, name)

		if strings.HasPrefix(name, ".tmp-") {
			if err := os.RemoveAll(dir); err != nil {
				return errs.Wrap(errs.IoError, err, "removing orphaned temp part dir %s", dir)
			}
			log.Warn().Str("dir", dir).Msg("removed orphaned temp part directory")
			report.RemovedTempDirs = append(report.RemovedTempDirs, dir)
			continue
		}

		if _, err := catalog.ValidatePart(dir); err != nil {
			if qerr := quarantine(tableDir, name, log, err); qerr != nil {
				return qerr
			}
			report.QuarantinedParts = append(report.QuarantinedParts, dir)
		}
	}
	return nil
}

func quarantine(tableDir, partName string, log zerolog.Logger, cause error) error {
	corruptDir := filepath.Join(tableDir, "corrupt")
	if err := os.MkdirAll(corruptDir, 0o755); err != nil {
		return errs.Wrap(errs.IoError, err, "creating quarantine directory %s", corruptDir)
	}
	src := filepath.Join(tableDir, partName)
	dst := filepath.Join(corruptDir, partName)
	if err := os.Rename(src, dst); err != nil {
		return errs.Wrap(errs.IoError, err, "quarantining part %s", src)
	}
	log.Warn().Str("part", src).Str("quarantined_to", dst).Err(cause).Msg("quarantined invalid part")
	return nil
}
