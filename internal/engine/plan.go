// Package engine is the dispatch layer between a decoded physical plan and
// the packages that actually do the work (internal/catalog, internal/writer,
// internal/exec). It has no SQL parser and no planner in the query-optimizer
// sense: internal/protocol decodes a plan directly off the wire already
// shaped as one of the variants below (spec §1, §6.1).
package engine

import (
	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/exec"
	"github.com/touchhouse/touchhouse/internal/types"
)

// PhysicalPlan is a closed set of operations: every variant lives in this
// file, and plan implements an unexported marker method so no other
// package can add a new variant without the dispatcher in execute.go also
// being extended (spec §6.1).
type PhysicalPlan interface {
	isPhysicalPlan()
}

// CreateDatabase creates a database, optionally tolerating an existing one.
type CreateDatabase struct {
	Name        string
	IfNotExists bool
}

// DropDatabase drops an empty database; it fails with NotEmpty if any table
// remains in it.
type DropDatabase struct {
	Name     string
	IfExists bool
}

// CreateTable creates a table in an existing database.
type CreateTable struct {
	Database    string
	Def         catalog.TableDef
	IfNotExists bool
}

// DropTable drops a table.
type DropTable struct {
	Database string
	Table    string
	IfExists bool
}

// Insert appends rows to an existing table.
type Insert struct {
	Database string
	Table    string
	Columns  []string
	Rows     [][]types.Value
}

// Scan runs a read query against an existing table.
type Scan struct {
	Database   string
	Table      string
	Projection []string
	Predicate  exec.Predicate
	OrderBy    []string
	Offset     int
	Limit      int
}

func (CreateDatabase) isPhysicalPlan() {}
func (DropDatabase) isPhysicalPlan()   {}
func (CreateTable) isPhysicalPlan()    {}
func (DropTable) isPhysicalPlan()      {}
func (Insert) isPhysicalPlan()         {}
func (Scan) isPhysicalPlan()           {}
