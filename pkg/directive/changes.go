package directive

import (
	"maps"

	"github.com/goliatone/go-formbind/pkg/control"
)

// Input names understood by Model.OnChanges.
const (
	InputModel    = "model"
	InputDisabled = "isDisabled"
	InputName     = "name"
	InputOptions  = "options"
)

// Change is one input's transition within a pass.
type Change struct {
	Previous    any
	Current     any
	FirstChange bool
}

// Changes maps input names to their transitions in a pass.
type Changes map[string]Change

// Tracker turns successive input snapshots into Changes. An input is
// reported when it first appears and whenever it stops being loosely
// identical to its previous value.
type Tracker struct {
	last map[string]any
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{last: map[string]any{}}
}

// Track diffs inputs against the previous snapshot.
func (t *Tracker) Track(inputs map[string]any) Changes {
	changes := Changes{}
	for key, current := range inputs {
		previous, seen := t.last[key]
		if seen && control.LooseIdentical(previous, current) {
			continue
		}
		changes[key] = Change{Previous: previous, Current: current, FirstChange: !seen}
	}
	t.last = maps.Clone(inputs)
	return changes
}

// IsPropertyUpdated reports whether the model input changed this pass in a
// way the view has not seen yet: always on the first change, otherwise when
// the new value is not loosely identical to viewModel.
func IsPropertyUpdated(changes Changes, viewModel any) bool {
	change, ok := changes[InputModel]
	if !ok {
		return false
	}
	if change.FirstChange {
		return true
	}
	return !control.LooseIdentical(viewModel, change.Current)
}
