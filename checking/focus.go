package checking

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"gomck/space"
)

// The states whose successors changed since the last computation. Values of
// these states and of every state that can reach them are no longer valid.
type focus struct {
	dirty map[space.StateId]struct{}
}

func newFocus() focus {
	return focus{dirty: map[space.StateId]struct{}{}}
}

func (f *focus) regenerate(states []space.StateId) {
	for _, state := range states {
		f.dirty[state] = struct{}{}
	}
}

func (f *focus) isEmpty() bool {
	return len(f.dirty) == 0
}

// Returns the dirty states together with all their predecessors in the space,
// sorted, and clears the focus.
func (f *focus) take(sp *space.Space) []space.StateId {
	affected := map[space.StateId]struct{}{}
	queue := maps.Keys(f.dirty)
	slices.Sort(queue)
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		if _, ok := affected[state]; ok {
			continue
		}
		affected[state] = struct{}{}
		if !sp.Contains(state) {
			continue
		}
		for _, node := range sp.DirectPredecessors(state) {
			if predecessor, ok := node.State(); ok {
				queue = append(queue, predecessor)
			}
		}
	}
	f.dirty = map[space.StateId]struct{}{}
	result := maps.Keys(affected)
	slices.Sort(result)
	return result
}
