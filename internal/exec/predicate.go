// Package exec implements the physical scan executor (spec §4.7): per-part
// parallel fan-out, primary-key granule pruning, vectorized predicate
// evaluation, and a k-way merge of per-part results into one OutputTable.
package exec

import (
	"github.com/touchhouse/touchhouse/internal/column"
	"github.com/touchhouse/touchhouse/internal/types"
)

// Predicate is the pushed-down subset of a WHERE expression the scanner
// understands natively (spec §4.7): And | Or | Not | Compare(column, op,
// literal). Anything richer is out of this package's scope — the physical
// plan layer is expected to apply such predicates as a post-filter after
// the scan returns, per spec §4.7's "anything else" clause.
type Predicate interface {
	isPredicate()
}

type And struct{ Left, Right Predicate }
type Or struct{ Left, Right Predicate }
type Not struct{ Operand Predicate }

// Compare tests one column against a literal.
type Compare struct {
	Column  string
	Op      types.CompareOp
	Literal types.Value
}

func (And) isPredicate()     {}
func (Or) isPredicate()      {}
func (Not) isPredicate()     {}
func (Compare) isPredicate() {}

// EvalMask vectorially evaluates pred over every row of block, returning a
// per-row selection mask (spec §4.7 step 3d). Null handling follows
// types.EvalCompare's three-valued logic: a row with Null in a compared
// column never matches that Compare.
func EvalMask(pred Predicate, block *column.Block) []bool {
	n := block.NumRows()
	switch p := pred.(type) {
	case nil:
		mask := make([]bool, n)
		for i := range mask {
			mask[i] = true
		}
		return mask
	case And:
		l := EvalMask(p.Left, block)
		r := EvalMask(p.Right, block)
		out := make([]bool, n)
		for i := range out {
			out[i] = l[i] && r[i]
		}
		return out
	case Or:
		l := EvalMask(p.Left, block)
		r := EvalMask(p.Right, block)
		out := make([]bool, n)
		for i := range out {
			out[i] = l[i] || r[i]
		}
		return out
	case Not:
		operand := EvalMask(p.Operand, block)
		out := make([]bool, n)
		for i := range out {
			out[i] = !operand[i]
		}
		return out
	case Compare:
		col, ok := block.GetColumn(p.Column)
		if !ok {
			out := make([]bool, n)
			return out
		}
		dt := col.DataType()
		out := make([]bool, n)
		for i := 0; i < n; i++ {
			out[i] = types.EvalCompare(dt, col.Value(i), p.Op, p.Literal)
		}
		return out
	default:
		panic("exec: unknown predicate node type")
	}
}

// Columns returns every column name pred references, for assembling the
// projection ∪ predicate ∪ order_by column set a scan must open (spec §4.7
// step 3a).
func Columns(pred Predicate) []string {
	var names []string
	var walk func(Predicate)
	walk = func(p Predicate) {
		switch v := p.(type) {
		case nil:
		case And:
			walk(v.Left)
			walk(v.Right)
		case Or:
			walk(v.Left)
			walk(v.Right)
		case Not:
			walk(v.Operand)
		case Compare:
			names = append(names, v.Column)
		}
	}
	walk(pred)
	return names
}
