package promotions

import (
	"cmp"
	"slices"

	"github.com/aretw0/pipeview/pkg/domain"
)

// Compare is a total order over promotions for display: promotions that have
// not reached a terminal phase come first, then newer before older, then by
// name.
func Compare(a, b domain.Promotion) int {
	at, bt := a.Phase().IsTerminal(), b.Phase().IsTerminal()
	if at != bt {
		if !at {
			return -1
		}
		return 1
	}
	if c := b.CreationTimestamp.Compare(a.CreationTimestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// Sorted returns a sorted copy of items.
func Sorted(items []domain.Promotion) []domain.Promotion {
	out := slices.Clone(items)
	slices.SortStableFunc(out, Compare)
	return out
}
