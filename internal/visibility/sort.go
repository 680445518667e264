package visibility

import (
	"cmp"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// ByDateDesc orders newest first. Invalid dates count as oldest and sink to
// the end.
func ByDateDesc[R any](field func(R) domain.Timestamp) func(a, b R) int {
	return func(a, b R) int {
		return compareTimestamps(field(b), field(a))
	}
}

// ByDateAsc orders oldest first, with invalid dates first.
func ByDateAsc[R any](field func(R) domain.Timestamp) func(a, b R) int {
	return func(a, b R) int {
		return compareTimestamps(field(a), field(b))
	}
}

// ByKeyDesc orders by a computed integer key, largest first. Ties keep the
// order of the previous pass.
func ByKeyDesc[R any](key func(R) int) func(a, b R) int {
	return func(a, b R) int {
		return cmp.Compare(key(b), key(a))
	}
}

func compareTimestamps(a, b domain.Timestamp) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return -1
	case !b.Valid:
		return 1
	}
	return a.Time.Compare(b.Time)
}
