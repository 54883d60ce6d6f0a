package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/touchhouse/touchhouse/internal/errs"
)

// database is one entry under the catalog (spec §3: "Catalog (process-wide):
// mapping database_name → { table_name → table_state }").
type database struct {
	name string
	dir  string

	mu     sync.RWMutex
	tables map[string]*Table
}

// Catalog is the process-wide, singleton root of the engine's state (spec
// §9 "global state" design note). All access goes through its RWMutex or a
// table's own RWMutex; tests construct a private Catalog per temp directory.
type Catalog struct {
	rootDir string

	mu        sync.RWMutex
	databases map[string]*database

	// activeQueries is the process-wide in-flight scan count the background
	// merger gates on against background_merge_available_under (spec §4.8,
	// §6.3). Incremented/decremented around Scan by internal/exec.
	activeQueries int64
}

// BeginQuery marks one more scan as in flight.
func (c *Catalog) BeginQuery() { atomic.AddInt64(&c.activeQueries, 1) }

// EndQuery marks a scan begun with BeginQuery as finished.
func (c *Catalog) EndQuery() { atomic.AddInt64(&c.activeQueries, -1) }

// ActiveQueries returns the current in-flight scan count.
func (c *Catalog) ActiveQueries() int64 { return atomic.LoadInt64(&c.activeQueries) }

// Open roots a Catalog at rootDir, creating it if needed, and rebuilds
// in-memory state by walking the directory tree (spec §4.9 recovery scans
// further — this just loads what is structurally present; internal/recovery
// performs the quarantine pass before Open is typically called in practice).
func Open(rootDir string) (*Catalog, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, errs.Wrap(errs.IoError, err, "creating storage directory %s", rootDir)
	}
	c := &Catalog{rootDir: rootDir, databases: make(map[string]*database)}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) load() error {
	entries, err := os.ReadDir(c.rootDir)
	if err != nil {
		return errs.Wrap(errs.IoError, err, "reading storage directory")
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dbDir := filepath.Join(c.rootDir, e.Name())
		db := &database{name: e.Name(), dir: dbDir, tables: make(map[string]*Table)}

		tableEntries, err := os.ReadDir(dbDir)
		if err != nil {
			return errs.Wrap(errs.IoError, err, "reading database dir %s", dbDir)
		}
		for _, te := range tableEntries {
			if !te.IsDir() {
				continue
			}
			tableDir := filepath.Join(dbDir, te.Name())
			def, err := loadSchema(tableDir)
			if err != nil {
				continue // no valid schema.inf: not a table directory
			}
			parts, err := loadParts(tableDir)
			if err != nil {
				return err
			}
			table := newTable(*def, tableDir)
			table.parts = parts
			db.tables[te.Name()] = table
		}
		c.databases[e.Name()] = db
	}
	return nil
}

// CreateDatabase creates an empty database directory (spec §4.5).
func (c *Catalog) CreateDatabase(name string, ifNotExists bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.databases[name]; exists {
		if ifNotExists {
			return nil
		}
		return errs.New(errs.AlreadyExists, "database %q already exists", name)
	}
	dir := filepath.Join(c.rootDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.IoError, err, "creating database dir %s", dir)
	}
	c.databases[name] = &database{name: name, dir: dir, tables: make(map[string]*Table)}
	return nil
}

// DropDatabase removes an empty database (spec §4.5: NotEmpty if any table
// remains).
func (c *Catalog) DropDatabase(name string, ifExists bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, ok := c.databases[name]
	if !ok {
		if ifExists {
			return nil
		}
		return errs.New(errs.NotFound, "database %q does not exist", name)
	}
	db.mu.RLock()
	n := len(db.tables)
	db.mu.RUnlock()
	if n > 0 {
		return errs.New(errs.NotEmpty, "database %q still has %d table(s)", name, n)
	}
	if err := os.RemoveAll(db.dir); err != nil {
		return errs.Wrap(errs.IoError, err, "removing database dir %s", db.dir)
	}
	delete(c.databases, name)
	return nil
}

func (c *Catalog) getDatabase(name string) (*database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	db, ok := c.databases[name]
	if !ok {
		return nil, errs.New(errs.NotFound, "database %q does not exist", name)
	}
	return db, nil
}

// CreateTable validates def and creates the table directory and schema.inf
// (spec §4.5).
func (c *Catalog) CreateTable(dbName string, def TableDef, ifNotExists bool) error {
	db, err := c.getDatabase(dbName)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.tables[def.Name]; exists {
		if ifNotExists {
			return nil
		}
		return errs.New(errs.AlreadyExists, "table %q already exists", def.Name)
	}

	tableDir := filepath.Join(db.dir, def.Name)
	if err := os.MkdirAll(tableDir, 0o755); err != nil {
		return errs.Wrap(errs.IoError, err, "creating table dir %s", tableDir)
	}
	if err := saveSchema(tableDir, &def); err != nil {
		return err
	}
	db.tables[def.Name] = newTable(def, tableDir)
	return nil
}

// DropTable takes the table's exclusive lock, then removes its directory
// (spec §4.5, §5: this is one of the three operations that take the
// per-table lock exclusively).
func (c *Catalog) DropTable(dbName, tableName string, ifExists bool) error {
	db, err := c.getDatabase(dbName)
	if err != nil {
		return err
	}

	db.mu.Lock()
	table, ok := db.tables[tableName]
	if !ok {
		db.mu.Unlock()
		if ifExists {
			return nil
		}
		return errs.New(errs.NotFound, "table %q does not exist", tableName)
	}
	delete(db.tables, tableName)
	db.mu.Unlock()

	table.mu.Lock()
	defer table.mu.Unlock()
	for _, p := range table.parts {
		p.Close()
	}
	if err := os.RemoveAll(table.Dir); err != nil {
		return errs.Wrap(errs.IoError, err, "removing table dir %s", table.Dir)
	}
	return nil
}

// GetTable returns the named table's in-memory state.
func (c *Catalog) GetTable(dbName, tableName string) (*Table, error) {
	db, err := c.getDatabase(dbName)
	if err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	t, ok := db.tables[tableName]
	if !ok {
		return nil, errs.New(errs.NotFound, "table %q does not exist", tableName)
	}
	return t, nil
}

// ListTables returns every table name in a database.
func (c *Catalog) ListTables(dbName string) ([]string, error) {
	db, err := c.getDatabase(dbName)
	if err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	return names, nil
}

// AllTables returns every table across every database, for the background
// merger to sweep (spec §4.8).
func (c *Catalog) AllTables() []*Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Table
	for _, db := range c.databases {
		db.mu.RLock()
		for _, t := range db.tables {
			out = append(out, t)
		}
		db.mu.RUnlock()
	}
	return out
}
