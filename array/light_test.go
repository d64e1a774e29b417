package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLightWrite(t *testing.T) {
	l := NewLight[int](15, 0)
	l = l.Write(3, 7)
	l = l.Write(4, 7)
	l = l.Write(15, 1)

	expected := []int{0, 0, 0, 7, 7, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	for i, value := range expected {
		if got := l.Get(uint64(i)); got != value {
			t.Errorf("Element %v should be %v. Got: %v", i, value, got)
		}
	}
	if len(l.runs) != 4 {
		t.Errorf("Neighbouring equal elements should share a run. Got: %v", l)
	}

	// writing the same element back merges the runs
	l = l.Write(3, 0).Write(4, 0).Write(15, 0)
	if !l.Equal(NewLight[int](15, 0)) {
		t.Errorf("Array should be filled with zeros again. Got: %v", l)
	}
}

func TestLightImmutable(t *testing.T) {
	original := NewLight[int](7, 0)
	written := original.Write(2, 5)
	assert.Equal(t, 0, original.Get(2))
	assert.Equal(t, 5, written.Get(2))
}

func TestLightMapAndReduce(t *testing.T) {
	l := NewLight[int](9, 1).Map(2, 5, func(e int) int { return e + 10 })
	assert.Equal(t, "[0..1]: 1, [2..5]: 11, [6..9]: 1", l.String())

	sum := func(a, b int) int { return a + b }
	// runs are reduced once each, not once per index
	assert.Equal(t, 13, l.Reduce(0, 9, sum))
	assert.Equal(t, 11, l.Reduce(3, 4, sum))
	assert.True(t, l.Any(5, 9, func(e int) bool { return e > 10 }))
	assert.False(t, l.Any(6, 9, func(e int) bool { return e > 10 }))

	var clipped [][2]uint64
	l.Runs(1, 6, func(first, last uint64, _ int) {
		clipped = append(clipped, [2]uint64{first, last})
	})
	assert.Equal(t, [][2]uint64{{1, 1}, {2, 5}, {6, 6}}, clipped)
}

func TestLightZip(t *testing.T) {
	a := NewLight[int](7, 0).Map(0, 3, func(int) int { return 1 })
	b := NewLight[int](7, 0).Map(2, 5, func(int) int { return 2 })
	zipped := Zip(a, b, func(x, y int) int { return x + y })
	assert.Equal(t, "[0..1]: 1, [2..3]: 3, [4..5]: 2, [6..7]: 0", zipped.String())
	assert.True(t, All(a, a, func(x, y int) bool { return x == y }))
	assert.False(t, All(a, b, func(x, y int) bool { return x == y }))
}
