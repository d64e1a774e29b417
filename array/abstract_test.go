package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomck/bitvector"
)

func known(value uint64, width uint32) bitvector.Combined {
	return bitvector.CombinedDomain.Known(value, width)
}

func TestAbstractReadWrite(t *testing.T) {
	a := NewAbstract(4, known(0, 8))
	a = a.Write(known(3, 4), known(9, 8))

	assert.Equal(t, known(9, 8), a.Read(known(3, 4)))
	assert.Equal(t, known(0, 8), a.Read(known(4, 4)))

	// an imprecise index reads the join of every element it may select
	index := bitvector.NewCombinedFromThreeValued(bitvector.NewThreeValuedKnownBits(2, ^uint64(1), 4))
	read := a.Read(index)
	assert.True(t, read.ContainsConcrete(bitvector.NewConcrete(0, 8)))
	assert.True(t, read.ContainsConcrete(bitvector.NewConcrete(9, 8)))

	// an imprecise write joins into every element it may select
	written := a.Write(index, known(5, 8))
	for _, i := range []uint64{2, 3} {
		element := written.Element(i)
		assert.True(t, element.ContainsConcrete(bitvector.NewConcrete(5, 8)), "element %v", i)
		assert.True(t, element.Contains(a.Element(i)), "element %v", i)
	}
	assert.Equal(t, known(0, 8), written.Element(4))
}

func TestAbstractLattice(t *testing.T) {
	a := NewAbstract(2, known(1, 4))
	b := a.Write(known(1, 2), known(2, 4))
	joined := a.Join(b)
	assert.True(t, joined.Contains(a))
	assert.True(t, joined.Contains(b))
	assert.False(t, a.Contains(joined))

	_, ok := a.Meet(b)
	assert.False(t, ok, "element 1 differs")
	met, ok := joined.Meet(b)
	require.True(t, ok)
	assert.True(t, met.Equal(b))
}

func TestMarkReadWrite(t *testing.T) {
	full := bitvector.NewCombinedFull(8)
	a := NewAbstract(2, full)
	later := bitvector.NewMarked(8, 2)

	arrayMark, indexMark := MarkRead(a, known(1, 2), later)
	assert.False(t, indexMark.IsMarked())
	assert.Equal(t, later, arrayMark.Element(1))
	assert.False(t, arrayMark.Element(0).IsMarked())

	arrayMark, indexMark = MarkRead(a, bitvector.NewCombinedFull(2), later)
	assert.True(t, indexMark.IsMarked())
	assert.False(t, arrayMark.IsMarked())

	laterArray := NewUnmarked(2, 8)
	require.True(t, laterArray.ApplyRefin(arrayMarkAt(2, later)))
	earlier, indexMark, elementMark := MarkWrite(a, known(2, 2), full, laterArray)
	assert.False(t, indexMark.IsMarked())
	assert.True(t, elementMark.IsMarked())
	assert.False(t, earlier.IsMarked())

	_, indexMark, elementMark = MarkWrite(a, bitvector.NewCombinedFull(2), full, laterArray)
	assert.True(t, indexMark.IsMarked())
	assert.False(t, elementMark.IsMarked())
}

func arrayMarkAt(index uint64, mark bitvector.Mark) Mark {
	m := NewUnmarked(2, mark.Width())
	m.marks = m.marks.Write(index, mark)
	return m
}

func TestMarkRefinAndDecay(t *testing.T) {
	m := NewUnmarked(2, 4)
	offer := arrayMarkAt(3, bitvector.NewMarked(4, 1))
	offer.ApplyJoin(arrayMarkAt(1, bitvector.NewMark(0b1, 1, 4)))

	require.True(t, m.ApplyRefin(offer))
	assert.Equal(t, uint64(0b1), m.Element(1).Bits(), "lowest index refined first")
	assert.False(t, m.Element(3).IsMarked())

	target := NewAbstract(2, known(0b1010, 4))
	decayed := m.ForceDecay(target)
	assert.Equal(t, uint64(0b1110), decayed.Element(1).ThreeValued().UnknownBits())
	assert.Equal(t, uint64(0b1111), decayed.Element(0).ThreeValued().UnknownBits())
}
