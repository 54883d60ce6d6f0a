package column

// FilterByMask returns a new column keeping only rows where mask[i] is true.
// Operates on raw typed slices and the parallel Nulls slice — no per-row
// Value/Append boxing.
func FilterByMask(col Column, mask []bool) Column {
	switch c := col.(type) {
	case *StringColumn:
		return &StringColumn{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *UuidColumn:
		return &UuidColumn{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *BoolColumn:
		return &BoolColumn{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *Int8Column:
		return &Int8Column{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *Int16Column:
		return &Int16Column{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *Int32Column:
		return &Int32Column{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *Int64Column:
		return &Int64Column{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *UInt8Column:
		return &UInt8Column{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *UInt16Column:
		return &UInt16Column{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *UInt32Column:
		return &UInt32Column{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	case *UInt64Column:
		return &UInt64Column{Data: filterSlice(c.Data, mask), Nulls: filterSlice(c.Nulls, mask)}
	default:
		panic("FilterByMask: unsupported column type")
	}
}

// Gather returns a new column reordering rows by the given index array.
// Operates on raw typed slices — no Value/Append boxing.
func Gather(col Column, indices []int) Column {
	switch c := col.(type) {
	case *StringColumn:
		return &StringColumn{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *UuidColumn:
		return &UuidColumn{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *BoolColumn:
		return &BoolColumn{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *Int8Column:
		return &Int8Column{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *Int16Column:
		return &Int16Column{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *Int32Column:
		return &Int32Column{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *Int64Column:
		return &Int64Column{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *UInt8Column:
		return &UInt8Column{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *UInt16Column:
		return &UInt16Column{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *UInt32Column:
		return &UInt32Column{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	case *UInt64Column:
		return &UInt64Column{Data: gatherSlice(c.Data, indices), Nulls: gatherSlice(c.Nulls, indices)}
	default:
		panic("Gather: unsupported column type")
	}
}

// AppendColumn bulk-appends all rows from src onto dst.
// Both must be the same concrete type. Operates on raw typed slices.
func AppendColumn(dst, src Column) {
	switch d := dst.(type) {
	case *StringColumn:
		s := src.(*StringColumn)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *UuidColumn:
		s := src.(*UuidColumn)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *BoolColumn:
		s := src.(*BoolColumn)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *Int8Column:
		s := src.(*Int8Column)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *Int16Column:
		s := src.(*Int16Column)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *Int32Column:
		s := src.(*Int32Column)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *Int64Column:
		s := src.(*Int64Column)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *UInt8Column:
		s := src.(*UInt8Column)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *UInt16Column:
		s := src.(*UInt16Column)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *UInt32Column:
		s := src.(*UInt32Column)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	case *UInt64Column:
		s := src.(*UInt64Column)
		d.Data = appendSlice(d.Data, s.Data)
		d.Nulls = appendSlice(d.Nulls, s.Nulls)
	default:
		panic("AppendColumn: unsupported column type")
	}
}
