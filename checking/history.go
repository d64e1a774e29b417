package checking

import (
	"fmt"

	"golang.org/x/exp/slices"

	"gomck/logic"
	"gomck/space"
)

// The value of a subproperty in a state together with the successors that
// determined it. Only next operators consult successors.
type CheckValue struct {
	Valuation  logic.ParamValuation
	NextStates []space.StateId
}

func valueOf(valuation logic.ParamValuation) CheckValue {
	return CheckValue{Valuation: valuation}
}

type timedValue struct {
	time  uint64
	value CheckValue
}

// The values a fixed point took in each state during its iterations, stamped
// with the synthetic time they were computed at.
type FixedPointHistory struct {
	states map[space.StateId][]timedValue
}

func NewFixedPointHistory() *FixedPointHistory {
	return &FixedPointHistory{states: map[space.StateId][]timedValue{}}
}

// Records the value of the state at the time. Entries of the state at the
// same or a later time are replaced.
func (h *FixedPointHistory) Insert(time uint64, state space.StateId, value CheckValue) {
	entries := h.states[state]
	cut := len(entries)
	for cut > 0 && entries[cut-1].time >= time {
		cut--
	}
	h.states[state] = append(entries[:cut], timedValue{time: time, value: value})
}

// Returns the last value of the state recorded strictly before the time and the
// time it was recorded at. Panics if there is no such entry.
func (h *FixedPointHistory) BeforeTime(time uint64, state space.StateId) (uint64, CheckValue) {
	entries := h.states[state]
	index := slices.IndexFunc(entries, func(e timedValue) bool { return e.time >= time })
	if index < 0 {
		index = len(entries)
	}
	if index == 0 {
		panic(fmt.Sprintf("checking: no history entry of state %v before time %v", state, time))
	}
	entry := entries[index-1]
	return entry.time, entry.value
}

// Returns the last recorded value of the state.
func (h *FixedPointHistory) Last(state space.StateId) (CheckValue, bool) {
	entries := h.states[state]
	if len(entries) == 0 {
		return CheckValue{}, false
	}
	return entries[len(entries)-1].value, true
}

func (h *FixedPointHistory) Len() int {
	return len(h.states)
}

func (h *FixedPointHistory) RemoveStates(states []space.StateId) {
	for _, state := range states {
		delete(h.states, state)
	}
}

func (h *FixedPointHistory) Clear() {
	h.states = map[space.StateId][]timedValue{}
}
