package exec

// boolMask is three-valued logic for granule pruning: a predicate evaluated
// against a granule's [min, max] range is not simply true/false, it may be
// true for some rows in the range and false for others.
type boolMask struct {
	canBeTrue  bool
	canBeFalse bool
}

var (
	maskAlwaysTrue  = boolMask{canBeTrue: true, canBeFalse: false}
	maskAlwaysFalse = boolMask{canBeTrue: false, canBeFalse: true}
	maskMaybe       = boolMask{canBeTrue: true, canBeFalse: true}
)

func (m boolMask) and(o boolMask) boolMask {
	return boolMask{canBeTrue: m.canBeTrue && o.canBeTrue, canBeFalse: m.canBeFalse || o.canBeFalse}
}

func (m boolMask) or(o boolMask) boolMask {
	return boolMask{canBeTrue: m.canBeTrue || o.canBeTrue, canBeFalse: m.canBeFalse && o.canBeFalse}
}

func (m boolMask) not() boolMask {
	return boolMask{canBeTrue: m.canBeFalse, canBeFalse: m.canBeTrue}
}
