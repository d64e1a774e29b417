package checking

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"gomck/logic"
	"gomck/property"
	"gomck/space"
)

// A single computation of a property over the states reachable in the space.
// The region is closed under successors.
type evaluation struct {
	pc     *propertyChecker
	sp     *space.Space
	region []space.StateId
}

func sortStates(states []space.StateId) {
	slices.Sort(states)
}

// Labels every state of the region with the value of the node.
// Env holds the current approximations of the fixed points binding free variables.
func (e *evaluation) compute(index int, env map[int]labelling) (labelling, error) {
	n := e.pc.nodes[index]
	if !n.closed {
		return e.computeStates(index, e.region, env)
	}
	cached := e.pc.cache[index]
	var missing []space.StateId
	for _, state := range e.region {
		if _, ok := cached[state]; !ok {
			missing = append(missing, state)
		}
	}
	if len(missing) > 0 {
		values, err := e.computeStates(index, missing, env)
		if err != nil {
			return nil, err
		}
		for state, value := range values {
			cached[state] = value
		}
	}
	return cached, nil
}

// Labels the target states of the region with the value of the node, ignoring
// the cache of the node itself.
func (e *evaluation) computeStates(index int, target []space.StateId, env map[int]labelling) (labelling, error) {
	n := e.pc.nodes[index]
	result := make(labelling, len(target))
	switch p := n.prop.(type) {
	case property.Const:
		for _, state := range target {
			result[state] = valueOf(logic.ParamFromBool(p.Value))
		}
	case property.Atomic:
		for _, state := range target {
			value, err := p.Evaluate(e.sp.State(state))
			if err != nil {
				return nil, err
			}
			result[state] = valueOf(logic.ParamFromValue(value))
		}
	case property.Negation:
		inner, err := e.compute(n.children[0], env)
		if err != nil {
			return nil, err
		}
		for _, state := range target {
			result[state] = valueOf(inner[state].Valuation.Not())
		}
	case property.And, property.Or:
		a, err := e.compute(n.children[0], env)
		if err != nil {
			return nil, err
		}
		b, err := e.compute(n.children[1], env)
		if err != nil {
			return nil, err
		}
		_, and := p.(property.And)
		for _, state := range target {
			if and {
				result[state] = valueOf(a[state].Valuation.And(b[state].Valuation))
			} else {
				result[state] = valueOf(a[state].Valuation.Or(b[state].Valuation))
			}
		}
	case property.Next:
		inner, err := e.compute(n.children[0], env)
		if err != nil {
			return nil, err
		}
		for _, state := range target {
			result[state] = e.next(p.Universal, state, func(s space.StateId) logic.ParamValuation {
				return inner[s].Valuation
			})
		}
	case property.Variable:
		approximation := env[n.binder]
		for _, state := range target {
			result[state] = approximation[state]
		}
	case property.FixedPoint:
		return e.fixedPoint(index, p.Greatest, target, env)
	default:
		panic(fmt.Sprintf("checking: unexpected property %v in canonical form", n.prop))
	}
	return result, nil
}

// The valuation of the next operator in the state given the valuations of its
// inner property. The next states are the successors having the resulting valuation.
func (e *evaluation) next(universal bool, state space.StateId, inner func(space.StateId) logic.ParamValuation) CheckValue {
	successors := e.sp.DirectSuccessors(state.Node())
	valuation := logic.ParamFromBool(universal)
	for _, successor := range successors {
		if universal {
			valuation = valuation.And(inner(successor))
		} else {
			valuation = valuation.Or(inner(successor))
		}
	}
	var nextStates []space.StateId
	for _, successor := range successors {
		if inner(successor) == valuation {
			nextStates = append(nextStates, successor)
		}
	}
	return CheckValue{Valuation: valuation, NextStates: nextStates}
}

// Kleene iteration of the fixed point on the target states from the ground value.
// Region states outside the target are already cached and keep their values.
func (e *evaluation) fixedPoint(index int, greatest bool, target []space.StateId, env map[int]labelling) (labelling, error) {
	history := e.pc.histories[index]
	ground := valueOf(logic.ParamFromBool(greatest))

	approximation := make(labelling, len(e.region))
	if len(target) < len(e.region) {
		for state, value := range e.pc.cache[index] {
			approximation[state] = value
		}
	}
	groundTime := e.pc.tick()
	for _, state := range target {
		approximation[state] = ground
		history.Insert(groundTime, state, ground)
	}

	inner := make(map[int]labelling, len(env)+1)
	for binder, values := range env {
		inner[binder] = values
	}
	inner[index] = approximation

	iterations := 0
	for {
		values, err := e.compute(e.pc.nodes[index].children[0], inner)
		if err != nil {
			return nil, err
		}
		time := e.pc.tick()
		iterations++
		changed := false
		for _, state := range target {
			value := values[state]
			if value.Valuation != approximation[state].Valuation {
				changed = true
				history.Insert(time, state, value)
			}
			approximation[state] = value
		}
		if !changed {
			break
		}
	}
	e.pc.logger.Debug("Fixed point reached",
		zap.Stringer("property", e.pc.nodes[index].prop),
		zap.Int("states", len(target)),
		zap.Int("iterations", iterations),
	)

	result := make(labelling, len(target))
	for _, state := range target {
		result[state] = approximation[state]
	}
	return result, nil
}

// The valuation of the node in the state as it was before the time bound.
// Variables and fixed points take their value from the history, the other
// nodes are evaluated from their children.
func (e *evaluation) valueBefore(index int, state space.StateId, bound uint64) logic.ParamValuation {
	n := e.pc.nodes[index]
	if n.closed {
		if value, ok := e.pc.cache[index][state]; ok {
			return value.Valuation
		}
	}
	switch p := n.prop.(type) {
	case property.Const:
		return logic.ParamFromBool(p.Value)
	case property.Atomic:
		value, err := p.Evaluate(e.sp.State(state))
		if err != nil {
			panic(fmt.Sprintf("checking: atomic property %v failed after validation: %v", p, err))
		}
		return logic.ParamFromValue(value)
	case property.Negation:
		return e.valueBefore(n.children[0], state, bound).Not()
	case property.And:
		return e.valueBefore(n.children[0], state, bound).And(e.valueBefore(n.children[1], state, bound))
	case property.Or:
		return e.valueBefore(n.children[0], state, bound).Or(e.valueBefore(n.children[1], state, bound))
	case property.Next:
		return e.next(p.Universal, state, func(s space.StateId) logic.ParamValuation {
			return e.valueBefore(n.children[0], s, bound)
		}).Valuation
	case property.Variable:
		_, value := e.pc.histories[n.binder].BeforeTime(bound, state)
		return value.Valuation
	case property.FixedPoint:
		_, value := e.pc.histories[index].BeforeTime(bound, state)
		return value.Valuation
	}
	panic(fmt.Sprintf("checking: unexpected property %v in canonical form", n.prop))
}

// Follows unknown valuations from the last state of the path down to an unknown
// atomic property. Passing a fixed point or a variable moves to the iteration
// that computed the unknown value, which lies strictly before the bound.
func (e *evaluation) deduce(index int, path []space.StateId, bound uint64) Culprit {
	state := path[len(path)-1]
	n := e.pc.nodes[index]
	switch p := n.prop.(type) {
	case property.Atomic:
		return Culprit{Path: slices.Clone(path), Atomic: p}
	case property.Negation:
		return e.deduce(n.children[0], path, bound)
	case property.And, property.Or:
		for _, child := range n.children {
			if e.valueBefore(child, state, bound).IsUnknown() {
				return e.deduce(child, path, bound)
			}
		}
	case property.Next:
		for _, successor := range e.sp.DirectSuccessors(state.Node()) {
			if e.valueBefore(n.children[0], successor, bound).IsUnknown() {
				return e.deduce(n.children[0], append(path, successor), bound)
			}
		}
	case property.FixedPoint:
		time, _ := e.pc.histories[index].BeforeTime(bound, state)
		return e.deduce(n.children[0], path, time)
	case property.Variable:
		time, _ := e.pc.histories[n.binder].BeforeTime(bound, state)
		return e.deduce(e.pc.nodes[n.binder].children[0], path, time)
	}
	panic(fmt.Sprintf("checking: property %v is not unknown in state %v", n.prop, state))
}
