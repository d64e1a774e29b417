package precision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gomck/bitvector"
	"gomck/machine"
	"gomck/space"
)

func template() machine.Record {
	return machine.NewRecord(
		machine.BitvectorField("a", machine.Unsigned, bitvector.NewCombinedFull(2)),
		machine.BitvectorField("b", machine.Unsigned, bitvector.NewCombinedFull(2)),
	)
}

func stateWith(a bitvector.Combined) machine.State {
	return machine.NewState(template().WithBits("a", a))
}

func newPrecision() *Precision[machine.Mark, *machine.Mark] {
	return New[machine.Mark](machine.NewUnmarked(template()))
}

func TestGetDefault(t *testing.T) {
	p := newPrecision()
	s := space.New()
	assert.True(t, p.Get(s, space.Root).Equal(machine.NewUnmarked(template())))
	assert.Equal(t, 0, p.Len())
}

func TestRefine(t *testing.T) {
	p := newPrecision()
	s := space.New()
	offer := machine.NewMarked(template(), 2)

	assert.True(t, p.Refine(s, space.Root, offer))
	assert.Equal(t, uint64(0b10), p.Get(s, space.Root).Bits("a").Bits())
	assert.True(t, p.Refine(s, space.Root, offer))
	assert.Equal(t, uint64(0b11), p.Get(s, space.Root).Bits("a").Bits())
	assert.False(t, p.Get(s, space.Root).Bits("b").IsMarked())
	assert.Equal(t, []space.NodeId{space.Root}, p.Nodes())

	p.Reset()
	assert.False(t, p.Get(s, space.Root).IsMarked())
}

func TestGetJoinsCoveringStates(t *testing.T) {
	p := newPrecision()
	s := space.New()
	wide, _ := s.AddInitialState(stateWith(bitvector.NewCombinedFull(2)), template())
	narrow, _ := s.AddStep(wide.Node(), stateWith(bitvector.NewCombinedConcrete(bitvector.NewConcrete(1, 2))), template())

	mark := machine.NewUnmarked(template()).JoinBits("b", bitvector.NewMarked(2, 3))
	p.Insert(s, wide.Node(), mark)

	assert.True(t, p.Get(s, narrow.Node()).Equal(mark), "a covered state should be at least as precise as its cover")
	assert.False(t, p.Get(s, space.Root).IsMarked())

	p.Insert(s, narrow.Node(), machine.NewUnmarked(template()).JoinBits("a", bitvector.NewMarked(2, 1)))
	assert.False(t, p.Get(s, wide.Node()).Bits("a").IsMarked(), "a covering state should not take the marks of covered ones")
	got := p.Get(s, narrow.Node())
	assert.True(t, got.Bits("a").IsMarked())
	assert.True(t, got.Bits("b").IsMarked())
}
