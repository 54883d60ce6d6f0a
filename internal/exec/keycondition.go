package exec

import (
	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/colfile"
	"github.com/touchhouse/touchhouse/internal/granule"
	"github.com/touchhouse/touchhouse/internal/types"
)

// KeyCondition compiles a Predicate into a program that can be checked
// against a granule's [min, max] range without decompressing the granule,
// restricted to the comparisons it makes against primary-key columns (spec
// §4.7 step 3b). Comparisons against any other column are treated as
// "maybe" — they never cause a granule to be skipped, only a non-PK
// predicate evaluated per-row can rule a row out.
//
// Unlike the teacher's Hyperrectangle machinery, which infers each
// granule's key range from the next granule's starting key, this operates
// directly on the true per-granule min/max recorded in the column file's
// index at insert time (internal/granule.Scan), so it needs no boundary
// inference and is exact rather than approximate.
type KeyCondition struct {
	pred      Predicate
	pkColumns map[string]bool
}

// NewKeyCondition compiles pred for granule pruning against primaryKey, the
// table's ordered primary-key column list.
func NewKeyCondition(pred Predicate, primaryKey []string) *KeyCondition {
	pkColumns := make(map[string]bool, len(primaryKey))
	for _, c := range primaryKey {
		pkColumns[c] = true
	}
	return &KeyCondition{pred: pred, pkColumns: pkColumns}
}

// granuleRange reads granule g's true min/max for column name directly from
// the column file's index.
func granuleRange(file *colfile.File, g int) granule.MinMax {
	return file.Index[g].MinMax
}

// MayMatch reports whether granule g of part might contain a row
// satisfying the condition, given each primary-key column's true min/max
// over the granule. A false result means the granule can be skipped
// entirely; true means it must be decompressed and checked row by row.
func (kc *KeyCondition) MayMatch(part *catalog.Part, g int) bool {
	mask := kc.eval(kc.pred, part, g)
	return mask.canBeTrue
}

func (kc *KeyCondition) eval(pred Predicate, part *catalog.Part, g int) boolMask {
	switch p := pred.(type) {
	case nil:
		return maskAlwaysTrue
	case And:
		return kc.eval(p.Left, part, g).and(kc.eval(p.Right, part, g))
	case Or:
		return kc.eval(p.Left, part, g).or(kc.eval(p.Right, part, g))
	case Not:
		return kc.eval(p.Operand, part, g).not()
	case Compare:
		if !kc.pkColumns[p.Column] {
			return maskMaybe
		}
		file, ok := part.Column(p.Column)
		if !ok || g >= len(file.Index) {
			return maskMaybe
		}
		mm := granuleRange(file, g)
		if mm.Min == nil || mm.Max == nil {
			// an all-null granule on a PK column never equals any literal,
			// but an all-null PK column shouldn't normally occur — be safe.
			return maskMaybe
		}
		return rangeMask(file.Header.Type, mm, p.Op, p.Literal)
	default:
		return maskMaybe
	}
}

// rangeMask decides whether [mm.Min, mm.Max] can contain a value satisfying
// "x op literal", adapted from the teacher's checkRangeIntersection but
// specialized to a single closed interval rather than a general Range pair.
func rangeMask(dt types.DataType, mm granule.MinMax, op types.CompareOp, literal types.Value) boolMask {
	if literal == nil {
		// Null never equals anything, including via range comparison.
		return maskAlwaysFalse
	}
	loCmp := types.CompareOrdered(dt, mm.Min, literal) // sign of (min - literal)
	hiCmp := types.CompareOrdered(dt, mm.Max, literal) // sign of (max - literal)

	switch op {
	case types.OpEQ:
		if loCmp > 0 || hiCmp < 0 {
			return maskAlwaysFalse
		}
		return maskMaybe
	case types.OpNE:
		if loCmp == 0 && hiCmp == 0 {
			return maskAlwaysFalse
		}
		return maskMaybe
	case types.OpLT:
		if loCmp >= 0 {
			return maskAlwaysFalse
		}
		return maskMaybe
	case types.OpLE:
		if loCmp > 0 {
			return maskAlwaysFalse
		}
		return maskMaybe
	case types.OpGT:
		if hiCmp <= 0 {
			return maskAlwaysFalse
		}
		return maskMaybe
	case types.OpGE:
		if hiCmp < 0 {
			return maskAlwaysFalse
		}
		return maskMaybe
	default:
		return maskMaybe
	}
}

// SurvivingGranules returns the indices of part's granules (against its pk
// column file) that MayMatch reports as possibly-matching, in order.
func (kc *KeyCondition) SurvivingGranules(part *catalog.Part, pkColumn string, granuleCount int) []int {
	var out []int
	for g := 0; g < granuleCount; g++ {
		if kc.MayMatch(part, g) {
			out = append(out, g)
		}
	}
	return out
}
