// Package catalog implements the table/database catalog (spec §4.5): schema
// definitions, part lifecycle bookkeeping, and the locking discipline shared
// by scans, inserts, and the background merger (spec §5).
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/touchhouse/touchhouse/internal/errs"
	"github.com/touchhouse/touchhouse/internal/types"
)

// Engine names a table's merge strategy (spec §4.8, §9 "dynamic dispatch on
// engine" design note — a closed tag, not an open extension point).
type Engine string

const (
	MergeTree          Engine = "MergeTree"
	ReplacingMergeTree Engine = "ReplacingMergeTree"
)

// DefaultGranuleSize is the row count per granule used when a TableDef
// leaves GranuleSize unset (zero or negative); see EffectiveGranuleSize.
const DefaultGranuleSize = 8192

// ColumnDef describes one column of a table definition.
type ColumnDef struct {
	Name     string         `json:"name"`
	DataType types.DataType `json:"-"`
	Nullable bool           `json:"nullable"`
	Default  types.Value    `json:"default,omitempty"`

	// TypeName mirrors DataType for JSON persistence; types.DataType itself
	// has no (Un)MarshalJSON so schema.inf round-trips through the name.
	TypeName string `json:"data_type"`
}

// TableDef is a table's schema and engine configuration.
type TableDef struct {
	Name        string      `json:"name"`
	Columns     []ColumnDef `json:"columns"`
	OrderBy     []string    `json:"order_by"`
	PrimaryKey  []string    `json:"primary_key"`
	Engine      Engine      `json:"engine"`
	GranuleSize int         `json:"granule_size"`
}

// EffectiveGranuleSize returns GranuleSize, defaulting to DefaultGranuleSize.
func (d *TableDef) EffectiveGranuleSize() int {
	if d.GranuleSize <= 0 {
		return DefaultGranuleSize
	}
	return d.GranuleSize
}

// ColumnDef looks up a column by name.
func (d *TableDef) ColumnDef(name string) (ColumnDef, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnNames returns every column name in declaration order.
func (d *TableDef) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks the invariants spec §4.5's create_table enforces: primary
// key is a prefix of order_by, column names are unique, and the engine is
// one this repository implements.
func (d *TableDef) Validate() error {
	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		if seen[c.Name] {
			return errs.New(errs.SchemaViolation, "duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	if len(d.OrderBy) == 0 {
		return errs.New(errs.SchemaViolation, "order_by must not be empty")
	}
	for _, name := range d.OrderBy {
		if !seen[name] {
			return errs.New(errs.SchemaViolation, "order_by column %q not defined", name)
		}
	}
	if len(d.PrimaryKey) > len(d.OrderBy) {
		return errs.New(errs.SchemaViolation, "primary_key is longer than order_by")
	}
	for i, name := range d.PrimaryKey {
		if d.OrderBy[i] != name {
			return errs.New(errs.SchemaViolation, "primary_key must be a prefix of order_by")
		}
	}
	switch d.Engine {
	case MergeTree:
	case ReplacingMergeTree:
		if len(d.PrimaryKey) == 0 {
			return errs.New(errs.SchemaViolation, "ReplacingMergeTree requires a non-empty primary_key")
		}
	default:
		return errs.New(errs.SchemaViolation, "unrecognized engine %q", d.Engine)
	}
	return nil
}

// schemaFile is the JSON document persisted as schema.inf (spec §3a, §6.2).
type schemaFile struct {
	Name        string      `json:"name"`
	Columns     []ColumnDef `json:"columns"`
	OrderBy     []string    `json:"order_by"`
	PrimaryKey  []string    `json:"primary_key"`
	Engine      Engine      `json:"engine"`
	GranuleSize int         `json:"granule_size"`
}

func saveSchema(tableDir string, def *TableDef) error {
	for i := range def.Columns {
		def.Columns[i].TypeName = def.Columns[i].DataType.Name()
	}
	data, err := json.MarshalIndent(schemaFile{
		Name:        def.Name,
		Columns:     def.Columns,
		OrderBy:     def.OrderBy,
		PrimaryKey:  def.PrimaryKey,
		Engine:      def.Engine,
		GranuleSize: def.GranuleSize,
	}, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Internal, err, "marshaling schema.inf")
	}
	path := filepath.Join(tableDir, "schema.inf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.IoError, err, "writing %s", path)
	}
	return nil
}

func loadSchema(tableDir string) (*TableDef, error) {
	path := filepath.Join(tableDir, "schema.inf")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, err, "reading %s", path)
	}
	var f schemaFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errs.Wrap(errs.CorruptPart, err, "parsing %s", path)
	}
	def := &TableDef{
		Name:        f.Name,
		Columns:     f.Columns,
		OrderBy:     f.OrderBy,
		PrimaryKey:  f.PrimaryKey,
		Engine:      f.Engine,
		GranuleSize: f.GranuleSize,
	}
	for i, c := range def.Columns {
		dt, err := types.ParseDataType(c.TypeName)
		if err != nil {
			return nil, errs.Wrap(errs.CorruptPart, err, "column %q", c.Name)
		}
		def.Columns[i].DataType = dt
	}
	return def, nil
}
