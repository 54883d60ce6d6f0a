package exec

import "github.com/touchhouse/touchhouse/internal/column"

// OutputTable is the materialized result of a Scan: a column-major block
// whose schema is exactly the Scan's requested projection, in row order
// (spec §4.7 step 4-5's final output, after merge/sort and offset/limit).
type OutputTable = column.Block
