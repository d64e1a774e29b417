package checking

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"gomck/logic"
	"gomck/property"
	"gomck/space"
)

// A subproperty of the checked property. Closed subproperties with the same key
// share a node.
type node struct {
	prop     property.Property
	closed   bool
	children []int
	// The fixed point binding a variable.
	binder int
}

type labelling map[space.StateId]CheckValue

// Checks a single property, keeping the labellings of its closed subproperties
// and the histories of its fixed points between computations.
type propertyChecker struct {
	prop      property.Property
	canonical property.Property

	nodes    []node
	interned map[string]int
	root     int

	cache     map[int]labelling
	histories map[int]*FixedPointHistory
	focus     focus
	time      uint64

	logger *zap.Logger
}

func newPropertyChecker(prop property.Property, logger *zap.Logger) *propertyChecker {
	pc := &propertyChecker{
		prop:      prop,
		canonical: property.Canonical(property.PNF(prop)),
		interned:  map[string]int{},
		cache:     map[int]labelling{},
		histories: map[int]*FixedPointHistory{},
		focus:     newFocus(),
		logger:    logger,
	}
	pc.root = pc.build(pc.canonical, map[string]int{})
	return pc
}

func (pc *propertyChecker) build(prop property.Property, bindings map[string]int) int {
	closed := property.IsClosed(prop)
	key := property.Key(prop)
	if index, ok := pc.interned[key]; ok && closed {
		return index
	}
	index := len(pc.nodes)
	pc.nodes = append(pc.nodes, node{prop: prop, closed: closed, binder: -1})
	switch p := prop.(type) {
	case property.Variable:
		binder, ok := bindings[p.Name]
		if !ok {
			panic(fmt.Sprintf("checking: free variable %v", p.Name))
		}
		pc.nodes[index].binder = binder
	case property.FixedPoint:
		previous, had := bindings[p.Variable]
		bindings[p.Variable] = index
		child := pc.build(p.Inner, bindings)
		if had {
			bindings[p.Variable] = previous
		} else {
			delete(bindings, p.Variable)
		}
		pc.nodes[index].children = []int{child}
		pc.histories[index] = NewFixedPointHistory()
	default:
		for _, child := range property.Children(prop) {
			childIndex := pc.build(child, bindings)
			pc.nodes[index].children = append(pc.nodes[index].children, childIndex)
		}
	}
	if closed {
		pc.interned[key] = index
		pc.cache[index] = labelling{}
	}
	return index
}

func (pc *propertyChecker) tick() uint64 {
	pc.time++
	return pc.time
}

// Returns an error if some atomic property can not be evaluated on the state.
// The fields of every state are the same, so one state suffices.
func (pc *propertyChecker) validate(state space.StateId, sp *space.Space) error {
	for _, n := range pc.nodes {
		if atomic, ok := n.prop.(property.Atomic); ok {
			if _, err := atomic.Evaluate(sp.State(state)); err != nil {
				return fmt.Errorf("checking: atomic property %v: %w", atomic, err)
			}
		}
	}
	return nil
}

func (pc *propertyChecker) purge(states []space.StateId) {
	for _, values := range pc.cache {
		for _, state := range states {
			delete(values, state)
		}
	}
	for _, history := range pc.histories {
		history.RemoveStates(states)
	}
}

func (pc *propertyChecker) clear() {
	for index := range pc.cache {
		pc.cache[index] = labelling{}
	}
	for _, history := range pc.histories {
		history.Clear()
	}
	pc.focus = newFocus()
	pc.time = 0
}

func (pc *propertyChecker) check(sp *space.Space) (Conclusion, error) {
	if !sp.IsLeftTotal() {
		return NotCheckable{}, nil
	}
	if !pc.focus.isEmpty() {
		purged := pc.focus.take(sp)
		pc.logger.Debug("Purging labellings", zap.Int("states", len(purged)))
		pc.purge(purged)
	}
	initial := sp.InitialStates()
	if err := pc.validate(initial[0], sp); err != nil {
		return nil, err
	}

	e := &evaluation{pc: pc, sp: sp, region: reachable(sp)}
	values, err := e.compute(pc.root, map[int]labelling{})
	if err != nil {
		return nil, err
	}

	result := logic.ParamTrue
	for _, state := range initial {
		result = result.And(values[state].Valuation)
	}
	if value, ok := result.Bool(); ok {
		return Known{Value: value}, nil
	}
	for _, state := range initial {
		if values[state].Valuation.IsUnknown() {
			culprit := e.deduce(pc.root, []space.StateId{state}, math.MaxUint64)
			return Unknown{Culprit: culprit}, nil
		}
	}
	panic(fmt.Sprintf("checking: property %v has valuation %v without an unknown initial state", pc.prop, result))
}

// States reachable from the root, sorted.
func reachable(sp *space.Space) []space.StateId {
	seen := map[space.StateId]struct{}{}
	queue := sp.InitialStates()
	var region []space.StateId
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		if _, ok := seen[state]; ok {
			continue
		}
		seen[state] = struct{}{}
		region = append(region, state)
		queue = append(queue, sp.DirectSuccessors(state.Node())...)
	}
	sortStates(region)
	return region
}
