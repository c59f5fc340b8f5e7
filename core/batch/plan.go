package batch

import (
	"fmt"

	"github.com/ankit-chaubey/exif-time-travel/core"
)

// checkTargets drops renames whose target is already claimed: by an earlier
// rename in the plan, or by a file on disk that the plan does not move away.
// Dropping a rename leaves its source in place, so the check repeats until
// no more renames are dropped.
func checkTargets(plan []core.Rename, exists func(name string) bool) ([]core.Rename, []error) {
	var kept []core.Rename
	var errs []error
	claimed := make(map[string]string)
	for _, r := range plan {
		if other, ok := claimed[r.To]; ok {
			errs = append(errs, fmt.Errorf("%w: %s and %s both map to %s", core.ErrTargetConflict, other, r.From, r.To))
			continue
		}
		claimed[r.To] = r.From
		kept = append(kept, r)
	}

	for {
		sources := make(map[string]bool, len(kept))
		for _, r := range kept {
			sources[r.From] = true
		}
		next := kept[:0:0]
		for _, r := range kept {
			if r.To != r.From && !sources[r.To] && exists(r.To) {
				errs = append(errs, fmt.Errorf("%w: %s maps to existing file %s", core.ErrTargetConflict, r.From, r.To))
				continue
			}
			next = append(next, r)
		}
		if len(next) == len(kept) {
			return kept, errs
		}
		kept = next
	}
}

// orderRenames sorts plan so that a file is only renamed onto a name once
// the file currently holding that name has been moved away. Relative order
// is otherwise preserved.
func orderRenames(plan []core.Rename) ([]core.Rename, error) {
	pending := make(map[string]bool, len(plan))
	for _, r := range plan {
		pending[r.From] = true
	}

	out := make([]core.Rename, 0, len(plan))
	done := make([]bool, len(plan))
	for len(out) < len(plan) {
		progressed := false
		for i, r := range plan {
			if done[i] || (r.To != r.From && pending[r.To]) {
				continue
			}
			out = append(out, r)
			done[i] = true
			delete(pending, r.From)
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("%w: renames form a cycle", core.ErrTargetConflict)
		}
	}
	return out, nil
}
