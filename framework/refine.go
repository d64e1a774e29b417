package framework

import (
	"fmt"

	"go.uber.org/zap"

	"gomck/array"
	"gomck/bitvector"
	"gomck/checking"
	"gomck/machine"
	"gomck/property"
	"gomck/space"
)

// Refines the precision along the culprit until the space changes.
func (f *Framework) refine(culprit checking.Culprit) error {
	for {
		changed, err := f.subrefine(culprit)
		if err != nil {
			return err
		}
		if changed {
			break
		}
	}
	f.stats.Refinements++
	return nil
}

type candidate struct {
	node space.NodeId
	mark machine.Mark
}

// Refines a single mark and regenerates from the refined node.
// Returns true if the space changed.
//
// The path is walked backwards from the culprit state. Decay happens last in a
// step, so the step precision of the preceding node is widened first if it
// can be. Otherwise the input precision of the most important refinable step is
// widened, preferring the earliest step among equally important ones.
func (f *Framework) subrefine(culprit checking.Culprit) (bool, error) {
	current := f.culpritMark(culprit.Atomic)
	var best *candidate

	for i := len(culprit.Path) - 1; i >= 0; i-- {
		state := culprit.Path[i]
		previous := space.Root
		if i > 0 {
			previous = culprit.Path[i-1].Node()
		}

		stepMark := f.stepPrecision.Get(f.space, previous)
		if stepMark.ApplyRefin(current) {
			f.stepPrecision.Insert(f.space, previous, stepMark)
			f.logger.Debug("Refining step precision", zap.Stringer("node", previous))
			return f.regenerate(previous)
		}

		input, ok := f.space.RepresentativeInput(previous, state)
		if !ok {
			panic(fmt.Sprintf("framework: culprit path has no edge from %v to %v", previous, state))
		}
		var inputMark machine.Mark
		var previousMark *machine.Mark
		err := f.interpret(previous, func() {
			if i == 0 {
				inputMark = f.system.RefineInit(input, current)
			} else {
				stateMark, mark := f.system.RefineNext(f.space.State(culprit.Path[i-1]).Result, input, current)
				inputMark = mark
				previousMark = &stateMark
			}
		})
		if err != nil {
			return false, err
		}

		inputPrecision := f.inputPrecision.Get(f.space, previous)
		if inputPrecision.ApplyRefin(inputMark) {
			if best == nil || inputPrecision.Importance() >= best.mark.Importance() {
				best = &candidate{node: previous, mark: inputPrecision}
			}
		}

		if previousMark == nil {
			break
		}
		// the preceding state did not panic, so its panic is not marked
		current = machine.StateMark{Panic: bitvector.NewUnmarked(bitvector.PanicWidth), Result: *previousMark}
	}

	if best == nil {
		return false, ErrIncomplete
	}
	f.inputPrecision.Insert(f.space, best.node, best.mark)
	f.logger.Debug("Refining input precision",
		zap.Stringer("node", best.node),
		zap.Stringer("precision", best.mark),
	)
	return f.regenerate(best.node)
}

// Marks the field the atomic property reads, or its element if it is indexed.
func (f *Framework) culpritMark(atomic property.Atomic) machine.StateMark {
	template := f.system.StateTemplate()
	mark := machine.NewUnmarkedState(template)
	if atomic.Name == machine.PanicField {
		mark.Panic = bitvector.NewMarked(bitvector.PanicWidth, bitvector.LowestImportance)
		return mark
	}
	field, ok := template.Field(atomic.Name)
	if !ok {
		panic(fmt.Sprintf("framework: culprit field %q is not in the state", atomic.Name))
	}
	if !field.IsArray() {
		mark.Result = mark.Result.JoinBits(atomic.Name, bitvector.NewMarked(field.Bits().Width(), bitvector.LowestImportance))
		return mark
	}
	a := field.Array()
	fieldMark := array.NewUnmarked(a.IndexWidth(), a.ElementWidth())
	if atomic.Index != nil {
		fieldMark = fieldMark.WithElement(*atomic.Index, bitvector.NewMarked(a.ElementWidth(), bitvector.LowestImportance))
	} else {
		fieldMark = array.NewMarked(a.IndexWidth(), a.ElementWidth(), bitvector.LowestImportance)
	}
	mark.Result = mark.Result.JoinArray(atomic.Name, fieldMark)
	return mark
}
