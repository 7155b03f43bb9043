package domain

// DeleteOutcome reports whether a delete or drop changed anything.
// An absent target is a normal outcome, not an error.
type DeleteOutcome int

const (
	// NotFound means none of the targets existed.
	NotFound DeleteOutcome = iota
	// Deleted means at least one target was removed.
	Deleted
)

func (o DeleteOutcome) String() string {
	if o == Deleted {
		return "deleted"
	}
	return "not_found"
}

// OutcomeFromCount maps a removed-items count to an outcome.
func OutcomeFromCount(n int64) DeleteOutcome {
	if n > 0 {
		return Deleted
	}
	return NotFound
}
