package framework_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gomck/checking"
	"gomck/examples/counter"
	"gomck/examples/latch"
	"gomck/framework"
	"gomck/machine"
	"gomck/property"
	"gomck/space"
)

func TestLatchRefinesOnce(t *testing.T) {
	tests := []struct {
		name string
		opts []framework.Option
	}{
		{name: "Default"},
		{name: "SingleWorker", opts: []framework.Option{framework.WithWorkers(1)}},
		{name: "Logged", opts: []framework.Option{framework.WithLogger(zaptest.NewLogger(t))}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := framework.New(latch.New(false), test.opts...)
			prop := property.MustParse("AG![x == 0]")

			refinements, conclusion, err := f.Step(context.Background(), prop, 0)
			require.NoError(t, err)
			assert.Equal(t, 0, refinements)
			unknown, ok := conclusion.(checking.Unknown)
			require.True(t, ok, "Expected an unknown conclusion before refining. Got: %v", conclusion)
			assert.Len(t, unknown.Culprit.Path, 2)
			assert.Equal(t, "x == 0", unknown.Culprit.Atomic.String())

			refinements, conclusion, err = f.Step(context.Background(), prop, -1)
			require.NoError(t, err)
			assert.Equal(t, 1, refinements)
			assert.Equal(t, checking.Known{Value: false}, conclusion)
			assert.Equal(t, 1, f.Stats().Refinements)
		})
	}
}

func TestLatchWithZeroInputHolds(t *testing.T) {
	f := framework.New(latch.New(true))
	refinements, conclusion, err := f.Step(context.Background(), property.MustParse("AG![x == 0]"), -1)
	require.NoError(t, err)
	assert.Equal(t, 0, refinements)
	assert.Equal(t, checking.Known{Value: true}, conclusion)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name     string
		system   machine.System
		prop     string
		expected bool
	}{
		{name: "LatchIsSet", system: latch.New(false), prop: "AG![x == 0]", expected: false},
		{name: "LatchCanBeSet", system: latch.New(false), prop: "EF![x == 1]", expected: true},
		{name: "LatchStaysZero", system: latch.New(true), prop: "AG![x == 0]", expected: true},
		{name: "CounterBounded", system: counter.New(10), prop: "AG![value <= 9]", expected: true},
		{name: "CounterNotAlwaysZero", system: counter.New(10), prop: "AG![value == 0]", expected: false},
		{name: "CounterResets", system: counter.New(10), prop: "AG![EF![value == 0]]", expected: true},
		{name: "CounterReaches", system: counter.New(10), prop: "EF![value == 3]", expected: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			f := framework.New(test.system)
			holds, err := f.Verify(ctx, property.MustParse(test.prop))
			require.NoError(t, err)
			assert.Equal(t, test.expected, holds, test.prop)
			assert.Empty(t, f.Stats().InherentPanicMessage)
		})
	}
}

func TestVerifyWithDecay(t *testing.T) {
	tests := []struct {
		name     string
		system   machine.System
		expected bool
	}{
		{name: "Latch", system: latch.New(false), expected: false},
		{name: "LatchWithZeroInput", system: latch.New(true), expected: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := framework.New(test.system, framework.WithDecay())
			holds, err := f.Verify(context.Background(), property.MustParse("AG![x == 0]"))
			require.NoError(t, err)
			assert.Equal(t, test.expected, holds)
			assert.Positive(t, f.Stats().Refinements, "decayed states are only known after refinement")
		})
	}
}

func TestInherentPanic(t *testing.T) {
	f := framework.New(counter.New(0))
	_, err := f.Verify(context.Background(), property.MustParse("AG![value <= 9]"))
	var inherent *framework.InherentPanicError
	require.ErrorAs(t, err, &inherent)
	assert.Equal(t, "attempt to calculate the remainder with a divisor of zero", inherent.Message)
	assert.Equal(t, inherent.Message, f.Stats().InherentPanicMessage)

	holds, err := f.Verify(context.Background(), property.Inherent())
	require.NoError(t, err)
	assert.False(t, holds)
}

func TestAssumedInherent(t *testing.T) {
	f := framework.New(counter.New(0), framework.AssumeInherent())
	_, err := f.Verify(context.Background(), property.Inherent())
	assert.ErrorIs(t, err, framework.ErrVerifiedInherentAssumed)

	// the panicking states are not looked at
	holds, err := f.Verify(context.Background(), property.MustParse("AG![value <= 255]"))
	require.NoError(t, err)
	assert.True(t, holds)
}

// A latch whose refinement never marks anything.
type blindLatch struct {
	*latch.Latch
}

func (b blindLatch) RefineNext(state machine.Record, input machine.Record, later machine.StateMark) (machine.Mark, machine.Mark) {
	return machine.NewUnmarked(b.StateTemplate()), machine.NewUnmarked(b.InputTemplate())
}

func TestIncomplete(t *testing.T) {
	f := framework.New(blindLatch{latch.New(false)})
	_, err := f.Verify(context.Background(), property.MustParse("AG![x == 0]"))
	assert.ErrorIs(t, err, framework.ErrIncomplete)
}

// A latch that panics once x can be set.
type panickingLatch struct {
	*latch.Latch
}

func (p panickingLatch) Next(state machine.Record, input machine.Record) machine.State {
	if state.Bits("x").CanBeTrue() {
		panic("unexpected latch state")
	}
	return p.Latch.Next(state, input)
}

func TestCollaboratorPanic(t *testing.T) {
	f := framework.New(panickingLatch{latch.New(false)})
	_, _, err := f.Step(context.Background(), property.MustParse("AG![x == 0]"), -1)

	var collaborator *framework.CollaboratorError
	require.ErrorAs(t, err, &collaborator)
	assert.Equal(t, "unexpected latch state", collaborator.Value)
	assert.NotEmpty(t, collaborator.Stack)
	assert.Zero(t, f.Space().NumStates(), "the space should be discarded after a panic")
}

func TestStepCancelled(t *testing.T) {
	f := framework.New(latch.New(false))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	refinements, conclusion, err := f.Step(ctx, property.MustParse("AG![x == 0]"), -1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, refinements)
	assert.Nil(t, conclusion)
}

func TestRegenerateAndReset(t *testing.T) {
	f := framework.New(latch.New(false))
	changed, err := f.Regenerate(space.Root)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, f.Space().NumStates())
	assert.True(t, f.Space().IsLeftTotal())

	f.Reset()
	assert.Zero(t, f.Space().NumStates())
	assert.Equal(t, framework.Stats{}, f.Stats())
}

func TestDefaultInputPrecision(t *testing.T) {
	l := latch.New(false)
	f := framework.New(l, framework.WithDefaultInputPrecision(machine.NewMarked(l.InputTemplate(), 1)))
	refinements, conclusion, err := f.Step(context.Background(), property.MustParse("AG![x == 0]"), -1)
	require.NoError(t, err)
	assert.Zero(t, refinements, "concrete inputs need no refinement")
	assert.Equal(t, checking.Known{Value: false}, conclusion)
}

func TestErrorsUnwrap(t *testing.T) {
	err := &framework.InherentPanicError{Message: "boom"}
	assert.Equal(t, "framework: inherent panic: boom", err.Error())
	assert.False(t, errors.Is(err, framework.ErrIncomplete))
}
