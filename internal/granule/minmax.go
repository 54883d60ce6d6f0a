package granule

import "github.com/touchhouse/touchhouse/internal/types"

// MinMax is the per-granule [min, max] summary over a single column (the
// writer records one for every column), used by predicate pushdown on
// primary-key columns to skip whole granules without decompressing them
// (spec §4.4).
type MinMax struct {
	Min types.Value
	Max types.Value
}

// Scan computes the MinMax of a non-empty run of values under dt's sort
// order. Null values are ignored for the purposes of the summary — a run
// holding only nulls yields a zero MinMax (Min and Max nil). The column
// file's granule index stores a nil bound as the type's zero value, so a
// MinMax read back from disk never has nil bounds.
func Scan(dt types.DataType, values []types.Value) MinMax {
	var mm MinMax
	for _, v := range values {
		if v == nil {
			continue
		}
		if mm.Min == nil || types.CompareOrdered(dt, v, mm.Min) < 0 {
			mm.Min = v
		}
		if mm.Max == nil || types.CompareOrdered(dt, v, mm.Max) > 0 {
			mm.Max = v
		}
	}
	return mm
}

// Merge folds other into mm, widening the interval to cover both.
func (mm MinMax) Merge(dt types.DataType, other MinMax) MinMax {
	out := mm
	if other.Min != nil && (out.Min == nil || types.CompareOrdered(dt, other.Min, out.Min) < 0) {
		out.Min = other.Min
	}
	if other.Max != nil && (out.Max == nil || types.CompareOrdered(dt, other.Max, out.Max) > 0) {
		out.Max = other.Max
	}
	return out
}
