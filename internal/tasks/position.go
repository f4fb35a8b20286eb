package tasks

// Position selects where AddDivider inserts
type Position struct {
	kind  positionKind
	index int
	above string
}

type positionKind int

const (
	positionFront positionKind = iota
	positionIndex
	positionAbove
)

// Front inserts at the top of the list
func Front() Position {
	return Position{kind: positionFront}
}

// Index inserts at i, clamped to [0, len]
func Index(i int) Position {
	return Position{kind: positionIndex, index: i}
}

// Above inserts immediately before the entry with the given id
func Above(id string) Position {
	return Position{kind: positionAbove, above: id}
}

// resolve returns the insertion index. Callers hold mu.
func (p Position) resolve(s *Store) (int, bool) {
	switch p.kind {
	case positionIndex:
		return max(0, min(p.index, len(s.entries))), true
	case positionAbove:
		i := s.indexOf(p.above)
		return i, i >= 0
	default:
		return 0, true
	}
}
