package framework

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"gomck/checking"
	"gomck/machine"
	"gomck/precision"
	"gomck/property"
	"gomck/space"
)

// Verifies properties of a system by abstraction refinement.
//
// The framework generates an abstract state space of the system, checks the
// property on it and, while the result is unknown, refines the precision along
// the culprit and regenerates the affected part of the space.
// The framework is not safe for concurrent use.
type Framework struct {
	system machine.System

	decay          bool
	assumeInherent bool
	workers        int
	logger         *zap.Logger

	defaultInputPrecision machine.Mark
	defaultStepPrecision  machine.StateMark

	space          *space.Space
	checker        *checking.Checker
	inputPrecision *precision.Precision[machine.Mark, *machine.Mark]
	stepPrecision  *precision.Precision[machine.StateMark, *machine.StateMark]

	// The space is invalid before the first generation and after a collaborator panic.
	valid bool
	// The culprit of the last unknown conclusion and the key of its property.
	culprit     *checking.Culprit
	culpritProp string

	stats Stats
}

func New(system machine.System, opts ...Option) *Framework {
	f := &Framework{
		system:                system,
		workers:               runtime.NumCPU(),
		logger:                zap.NewNop(),
		defaultInputPrecision: machine.NewUnmarked(system.InputTemplate()),
	}
	for _, opt := range opts {
		switch t := opt.(type) {
		case DecayOption:
			f.decay = t.Decay
		case LoggerOption:
			f.logger = t.Logger
		case WorkersOption:
			f.workers = max(t.Workers, 1)
		case AssumeInherentOption:
			f.assumeInherent = t.Assume
		case DefaultInputPrecisionOption:
			f.defaultInputPrecision = t.Mark
		}
	}
	if f.decay {
		f.defaultStepPrecision = machine.NewUnmarkedState(system.StateTemplate())
	} else {
		f.defaultStepPrecision = machine.NewMarkedState(system.StateTemplate(), 0)
	}
	f.checker = checking.New(checking.WithLogger(f.logger))
	f.Reset()
	return f
}

// Discards the space, the precisions and the statistics.
func (f *Framework) Reset() {
	f.space = space.New()
	f.checker.Purge()
	f.inputPrecision = precision.New[machine.Mark](f.defaultInputPrecision)
	f.stepPrecision = precision.New[machine.StateMark](f.defaultStepPrecision)
	f.valid = false
	f.culprit = nil
	f.culpritProp = ""
	f.stats = Stats{}
}

// The current abstract state space.
func (f *Framework) Space() *space.Space {
	return f.space
}

// Verifies the property, refining until it is known.
//
// Unless the inherent property is assumed, it is verified first and an
// InherentPanicError is returned if it does not hold.
// Returns ErrIncomplete if no refinement can decide the property.
func (f *Framework) Verify(ctx context.Context, prop property.Property) (bool, error) {
	inherent := property.IsInherent(prop)
	if inherent && f.assumeInherent {
		return false, ErrVerifiedInherentAssumed
	}
	if !inherent && !f.assumeInherent {
		f.logger.Info("Verifying the inherent property")
		holds, err := f.verifyProperty(ctx, property.Inherent())
		if err != nil {
			return false, err
		}
		if !holds {
			return false, &InherentPanicError{Message: f.panicMessage()}
		}
	}
	f.logger.Info("Verifying property", zap.Stringer("property", prop))
	return f.verifyProperty(ctx, prop)
}

func (f *Framework) verifyProperty(ctx context.Context, prop property.Property) (bool, error) {
	for {
		_, conclusion, err := f.Step(ctx, prop, -1)
		if err != nil {
			return false, err
		}
		if known, ok := conclusion.(checking.Known); ok {
			f.logger.Info("Reached conclusion",
				zap.Bool("holds", known.Value),
				zap.Int("refinements", f.stats.Refinements),
				zap.Int("states", f.space.NumStates()),
			)
			return known.Value, nil
		}
	}
}

// Performs verification steps until the property is known or the maximum number
// of refinements was made. A negative maximum means no limit.
// Returns the number of refinements made.
//
// The context is checked before each step, a step is never interrupted.
func (f *Framework) Step(ctx context.Context, prop property.Property, maxRefinements int) (int, checking.Conclusion, error) {
	refinements := 0
	for {
		if err := ctx.Err(); err != nil {
			return refinements, nil, err
		}
		refined, conclusion, err := f.step(prop)
		if refined {
			refinements++
		}
		if err != nil {
			return refinements, nil, err
		}
		if _, ok := conclusion.(checking.Known); ok {
			return refinements, conclusion, nil
		}
		if maxRefinements >= 0 && refinements >= maxRefinements {
			return refinements, conclusion, nil
		}
	}
}

// A single verification step: generate the space if it is invalid, otherwise
// refine on the culprit of the previous step, then check the property.
// Returns true if a refinement was made.
func (f *Framework) step(prop property.Property) (bool, checking.Conclusion, error) {
	key := property.Key(prop)
	refined := false
	if !f.valid {
		if _, err := f.regenerate(space.Root); err != nil {
			f.invalidate()
			return false, nil, err
		}
		f.valid = true
	} else if f.culprit != nil && f.culpritProp == key {
		culprit := *f.culprit
		f.culprit = nil
		if err := f.refine(culprit); err != nil {
			if errors.Is(err, ErrIncomplete) {
				f.logger.Warn("Verification is incomplete", zap.Stringer("property", prop), zap.Int("refinements", f.stats.Refinements))
			} else {
				f.invalidate()
			}
			return false, nil, err
		}
		refined = true
		f.garbageCollect()
	}

	conclusion, err := f.checker.CheckProperty(f.space, prop)
	if err != nil {
		return refined, nil, err
	}
	switch c := conclusion.(type) {
	case checking.Unknown:
		f.culprit = &c.Culprit
		f.culpritProp = key
		f.logger.Debug("Property is unknown", zap.Stringer("atomic", c.Culprit.Atomic), zap.Int("path", len(c.Culprit.Path)))
	case checking.NotCheckable:
		panic(fmt.Sprintf("framework: state space is not left-total after generation for %v", prop))
	}
	return refined, conclusion, nil
}

// Regenerates the space from the node. Returns true if the successors of some
// node changed.
func (f *Framework) Regenerate(from space.NodeId) (bool, error) {
	changed, err := f.regenerate(from)
	if err != nil {
		f.invalidate()
		return false, err
	}
	f.valid = true
	return changed, nil
}

// Discards the space so that the next step generates it from the root.
// Precisions refer to nodes of the space and are discarded with it.
func (f *Framework) invalidate() {
	f.logger.Debug("Invalidating the state space")
	stats := f.stats
	f.Reset()
	f.stats = stats
}

func (f *Framework) garbageCollect() {
	removed := f.space.GarbageCollect()
	if len(removed) == 0 {
		return
	}
	f.checker.RemoveStates(removed)
	f.logger.Debug("Collected unreachable states", zap.Int("removed", len(removed)))
}

// The message of the panic closest to the root, empty if no state panics.
func (f *Framework) panicMessage() string {
	code, ok := f.space.FindPanic()
	if !ok {
		return ""
	}
	return machine.PanicMessage(f.system, code)
}
