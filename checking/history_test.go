package checking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gomck/logic"
	"gomck/space"
)

func TestHistoryBeforeTime(t *testing.T) {
	h := NewFixedPointHistory()
	h.Insert(1, 7, valueOf(logic.ParamFalse))
	h.Insert(4, 7, valueOf(logic.ParamUnknown))
	h.Insert(6, 7, valueOf(logic.ParamTrue))

	var beforeTimeTest = []struct {
		bound    uint64
		time     uint64
		expected logic.ParamValuation
	}{
		{2, 1, logic.ParamFalse},
		{4, 1, logic.ParamFalse},
		{5, 4, logic.ParamUnknown},
		{100, 6, logic.ParamTrue},
	}
	for _, test := range beforeTimeTest {
		time, value := h.BeforeTime(test.bound, 7)
		assert.Equal(t, test.time, time, "bound %v", test.bound)
		assert.Equal(t, test.expected, value.Valuation, "bound %v", test.bound)
	}
	assert.Panics(t, func() { h.BeforeTime(1, 7) })
	assert.Panics(t, func() { h.BeforeTime(10, 8) })
}

func TestHistoryInsertReplacesLater(t *testing.T) {
	h := NewFixedPointHistory()
	h.Insert(1, 3, valueOf(logic.ParamFalse))
	h.Insert(5, 3, valueOf(logic.ParamUnknown))
	h.Insert(9, 3, valueOf(logic.ParamTrue))

	h.Insert(5, 3, valueOf(logic.ParamTrue))
	time, value := h.BeforeTime(100, 3)
	assert.Equal(t, uint64(5), time, "entries at and after the inserted time should be replaced")
	assert.Equal(t, logic.ParamTrue, value.Valuation)
	_, value = h.BeforeTime(5, 3)
	assert.Equal(t, logic.ParamFalse, value.Valuation)

	last, ok := h.Last(3)
	assert.True(t, ok)
	assert.Equal(t, logic.ParamTrue, last.Valuation)

	h.RemoveStates([]space.StateId{3})
	_, ok = h.Last(3)
	assert.False(t, ok)
	assert.Equal(t, 0, h.Len())
}
