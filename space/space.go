package space

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"gomck/machine"
)

// Identifies a stored state. Ids start at one, increase and are never reused.
type StateId uint64

func (id StateId) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Identifies either the root or a state. The root precedes the initial states.
type NodeId uint64

const Root NodeId = 0

func (id StateId) Node() NodeId {
	return NodeId(id)
}

// Returns false for the root.
func (n NodeId) State() (StateId, bool) {
	if n == Root {
		return 0, false
	}
	return StateId(n), true
}

func (n NodeId) String() string {
	if n == Root {
		return "root"
	}
	return strconv.FormatUint(uint64(n), 10)
}

// Number of stored states at which the first garbage collection sweeps.
const initialSweepThreshold = 32

// The abstract state space: a graph from the root through the states.
//
// States are deduplicated by their key. Each edge keeps the input it was first
// generated with. The space is not safe for concurrent use.
type Space struct {
	states map[StateId]machine.State
	ids    map[string]StateId
	nextId StateId

	successors   map[NodeId]map[StateId]machine.Record
	predecessors map[StateId]map[NodeId]struct{}

	sweepThreshold int
}

func New() *Space {
	return &Space{
		states:         map[StateId]machine.State{},
		ids:            map[string]StateId{},
		nextId:         1,
		successors:     map[NodeId]map[StateId]machine.Record{},
		predecessors:   map[StateId]map[NodeId]struct{}{},
		sweepThreshold: initialSweepThreshold,
	}
}

// Adds an edge from the root to the state. Returns the id of the state and true
// if it was not stored before.
func (s *Space) AddInitialState(state machine.State, input machine.Record) (StateId, bool) {
	return s.AddStep(Root, state, input)
}

// Adds an edge from the node to the state. Returns the id of the state and true
// if it was not stored before. An existing edge keeps its input.
func (s *Space) AddStep(from NodeId, state machine.State, input machine.Record) (StateId, bool) {
	s.checkNode(from)
	id, inserted := s.addState(state)
	outgoing, ok := s.successors[from]
	if !ok {
		outgoing = map[StateId]machine.Record{}
		s.successors[from] = outgoing
	}
	if _, ok := outgoing[id]; !ok {
		outgoing[id] = input
		s.predecessors[id][from] = struct{}{}
	}
	return id, inserted
}

func (s *Space) addState(state machine.State) (StateId, bool) {
	key := state.Key()
	if id, ok := s.ids[key]; ok {
		return id, false
	}
	id := s.nextId
	s.nextId++
	s.states[id] = state
	s.ids[key] = id
	s.predecessors[id] = map[NodeId]struct{}{}
	return id, true
}

// Removes the outgoing edges of the node. States stay stored even if nothing
// leads to them. Returns the former direct successors.
func (s *Space) ClearStep(node NodeId) []StateId {
	s.checkNode(node)
	removed := sortedKeys(s.successors[node])
	for _, id := range removed {
		delete(s.predecessors[id], node)
	}
	delete(s.successors, node)
	return removed
}

func (s *Space) checkNode(node NodeId) {
	if id, ok := node.State(); ok {
		if _, ok := s.states[id]; !ok {
			panic(fmt.Sprintf("space: state %v is not stored", id))
		}
	}
}

func (s *Space) Contains(id StateId) bool {
	_, ok := s.states[id]
	return ok
}

// Panics if the state is not stored.
func (s *Space) State(id StateId) machine.State {
	state, ok := s.states[id]
	if !ok {
		panic(fmt.Sprintf("space: state %v is not stored", id))
	}
	return state
}

// All stored state ids in increasing order.
func (s *Space) StateIds() []StateId {
	return sortedKeys(s.states)
}

func (s *Space) NumStates() int {
	return len(s.states)
}

// Number of edges, including the edges from the root.
func (s *Space) NumTransitions() int {
	count := 0
	for _, outgoing := range s.successors {
		count += len(outgoing)
	}
	return count
}

func (s *Space) InitialStates() []StateId {
	return s.DirectSuccessors(Root)
}

// Sorted by id.
func (s *Space) DirectSuccessors(node NodeId) []StateId {
	return sortedKeys(s.successors[node])
}

// Sorted by id, the root first.
func (s *Space) DirectPredecessors(id StateId) []NodeId {
	return sortedKeys(s.predecessors[id])
}

// Returns true if the node has been explored, i.e. it has an outgoing edge.
func (s *Space) HasSuccessors(node NodeId) bool {
	return len(s.successors[node]) > 0
}

// The input of the edge. Returns false if there is no such edge.
func (s *Space) RepresentativeInput(from NodeId, to StateId) (machine.Record, bool) {
	input, ok := s.successors[from][to]
	return input, ok
}

// Returns true if the root and every state reachable from it have a successor.
func (s *Space) IsLeftTotal() bool {
	_, ok := s.firstDeadEnd()
	return !ok
}

// Panics if the space is not left-total.
func (s *Space) AssertLeftTotal() {
	if node, ok := s.firstDeadEnd(); ok {
		panic(fmt.Sprintf("space: node %v has no successor", node))
	}
}

func (s *Space) firstDeadEnd() (NodeId, bool) {
	dead := Root
	found := false
	s.walkReachable(func(node NodeId) bool {
		if !s.HasSuccessors(node) {
			dead, found = node, true
			return false
		}
		return true
	})
	return dead, found
}

// Breadth-first walk from the root in the order of ids. Stops when visit returns false.
func (s *Space) walkReachable(visit func(NodeId) bool) {
	queue := []NodeId{Root}
	seen := map[NodeId]bool{Root: true}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if !visit(node) {
			return
		}
		for _, id := range s.DirectSuccessors(node) {
			if !seen[id.Node()] {
				seen[id.Node()] = true
				queue = append(queue, id.Node())
			}
		}
	}
}

// Removes the states unreachable from the root once enough states are stored.
// Returns the removed states.
func (s *Space) GarbageCollect() []StateId {
	if len(s.states) < s.sweepThreshold {
		return nil
	}
	removed := s.MarkAndSweep()
	s.sweepThreshold = max(len(s.states)*3/2, s.sweepThreshold)
	return removed
}

// Removes every state unreachable from the root. Returns the removed states.
func (s *Space) MarkAndSweep() []StateId {
	reachable := map[StateId]bool{}
	s.walkReachable(func(node NodeId) bool {
		if id, ok := node.State(); ok {
			reachable[id] = true
		}
		return true
	})
	var removed []StateId
	for _, id := range s.StateIds() {
		if reachable[id] {
			continue
		}
		// unreachable states only lead to other states
		for _, successor := range s.DirectSuccessors(id.Node()) {
			delete(s.predecessors[successor], id.Node())
		}
		delete(s.successors, id.Node())
		delete(s.predecessors, id)
		delete(s.ids, s.states[id].Key())
		delete(s.states, id)
		removed = append(removed, id)
	}
	return removed
}

// The panic code of the earliest reachable state, in breadth-first order, that
// certainly panics. Returns false if there is none.
func (s *Space) FindPanic() (uint64, bool) {
	var code uint64
	found := false
	s.walkReachable(func(node NodeId) bool {
		id, ok := node.State()
		if !ok {
			return true
		}
		value, ok := s.states[id].Panic.ConcreteValue()
		if ok && !value.IsZero() {
			code, found = value.Unsigned(), true
			return false
		}
		return true
	})
	return code, found
}

func sortedKeys[K ~uint64, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
