package framework

import (
	"runtime/debug"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"gomck/machine"
	"gomck/space"
)

// Regenerates the space from the node by breadth-first search, keeping the
// nodes that already have successors. Declares the new states and the nodes
// with changed successors to the checker.
// Returns true if the successors of some node changed.
func (f *Framework) regenerate(from space.NodeId) (bool, error) {
	var added []space.StateId
	var changed []space.NodeId

	queue := []space.NodeId{from}
	first := true
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if !first && f.space.HasSuccessors(node) {
			continue
		}
		first = false
		f.stats.GeneratedStates++
		removed := f.space.ClearStep(node)

		steps, err := f.successors(node)
		if err != nil {
			return false, err
		}
		for _, step := range steps {
			f.stats.GeneratedTransitions++
			id, inserted := f.space.AddStep(node, step.state, step.input)
			if inserted {
				added = append(added, id)
			}
			if !f.space.HasSuccessors(id.Node()) {
				queue = append(queue, id.Node())
			}
		}
		if !slices.Equal(removed, f.space.DirectSuccessors(node)) {
			changed = append(changed, node)
		}
	}

	f.checker.DeclareRegeneration(f.space, added, changed)
	f.space.AssertLeftTotal()
	f.logger.Debug("Regenerated",
		zap.Stringer("node", from),
		zap.Int("new", len(added)),
		zap.Int("changed", len(changed)),
		zap.Int("states", f.space.NumStates()),
	)
	return len(changed) > 0, nil
}

type step struct {
	input machine.Record
	state machine.State
}

// Computes the successors of the node for every input the input precision
// enumerates, in enumeration order. Each successor decays by the step precision.
func (f *Framework) successors(node space.NodeId) ([]step, error) {
	inputMark := f.inputPrecision.Get(f.space, node)
	stepMark := f.stepPrecision.Get(f.space, node)

	var steps []step
	proto := inputMark.ProtoFirst()
	for {
		steps = append(steps, step{input: proto})
		if !inputMark.ProtoIncrement(&proto) {
			break
		}
	}

	var current *machine.State
	if id, ok := node.State(); ok {
		state := f.space.State(id)
		current = &state
	}

	var g errgroup.Group
	g.SetLimit(f.workers)
	errs := make([]error, len(steps))
	for i := range steps {
		i := i
		g.Go(func() error {
			errs[i] = f.interpret(node, func() {
				var next machine.State
				if current == nil {
					next = f.system.Init(steps[i].input)
				} else {
					next = f.system.Next(current.Result, steps[i].input)
				}
				steps[i].state = stepMark.ForceDecay(next)
			})
			return nil
		})
	}
	g.Wait()

	var failures []error
	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		return nil, generationError{node: node, errors: failures}
	}
	return steps, nil
}

// Runs a call into the system, recovering its panics into a CollaboratorError.
func (f *Framework) interpret(node space.NodeId, call func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &CollaboratorError{Node: node, Value: p, Stack: debug.Stack()}
		}
	}()
	call()
	return nil
}
