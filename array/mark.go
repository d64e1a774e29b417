package array

import "gomck/bitvector"

// A refinement mark of an array: one bit-vector mark per element.
type Mark struct {
	indexWidth   uint32
	elementWidth uint32
	marks        Light[bitvector.Mark]
}

func NewUnmarked(indexWidth, elementWidth uint32) Mark {
	return fillMark(indexWidth, bitvector.NewUnmarked(elementWidth))
}

// Marks every bit of every element.
func NewMarked(indexWidth, elementWidth uint32, importance uint8) Mark {
	return fillMark(indexWidth, bitvector.NewMarked(elementWidth, importance))
}

func fillMark(indexWidth uint32, fill bitvector.Mark) Mark {
	return Mark{
		indexWidth:   indexWidth,
		elementWidth: fill.Width(),
		marks:        NewLight(bitvector.Mask(indexWidth), fill),
	}
}

func (m Mark) IndexWidth() uint32 {
	return m.indexWidth
}

func (m Mark) ElementWidth() uint32 {
	return m.elementWidth
}

// Marks the element at a concrete index, joining with its current mark.
func (m Mark) WithElement(index uint64, mark bitvector.Mark) Mark {
	m.marks = m.marks.Write(index, m.marks.Get(index).Join(mark))
	return m
}

// The mark of the element at a concrete index.
func (m Mark) Element(index uint64) bitvector.Mark {
	return m.marks.Get(index)
}

func (m Mark) IsMarked() bool {
	return m.marks.Any(0, m.marks.Last(), bitvector.Mark.IsMarked)
}

// The largest importance of the element marks.
func (m Mark) Importance() uint8 {
	var importance uint8
	m.marks.Runs(0, m.marks.Last(), func(_, _ uint64, mark bitvector.Mark) {
		importance = max(importance, mark.Importance())
	})
	return importance
}

func (m *Mark) ApplyJoin(o Mark) {
	m.marks = Zip(m.marks, o.marks, bitvector.Mark.Join)
}

// Refines the element with the lowest index that the offer refines.
func (m *Mark) ApplyRefin(offer Mark) bool {
	refined := false
	var at uint64
	var result bitvector.Mark
	combined := Zip(m.marks, offer.marks, func(ours, theirs bitvector.Mark) [2]bitvector.Mark {
		return [2]bitvector.Mark{ours, theirs}
	})
	combined.Runs(0, combined.Last(), func(first, _ uint64, pair [2]bitvector.Mark) {
		if refined {
			return
		}
		ours := pair[0]
		if ours.ApplyRefin(pair[1]) {
			refined = true
			at = first
			result = ours
		}
	})
	if refined {
		m.marks = m.marks.Write(at, result)
	}
	return refined
}

// Makes every unmarked bit of every element unknown.
func (m Mark) ForceDecay(target Abstract) Abstract {
	target.elements = Zip(m.marks, target.elements, bitvector.Mark.ForceDecay)
	return target
}

func (m Mark) Limit(target Abstract) Mark {
	m.marks = Zip(m.marks, target.elements, bitvector.Mark.Limit)
	return m
}

func (m Mark) Equal(o Mark) bool {
	return m.indexWidth == o.indexWidth && m.elementWidth == o.elementWidth && m.marks.Equal(o.marks)
}

// The first array of the enumeration: each element is the first proto of its mark.
func (m Mark) ProtoFirst() Abstract {
	return Abstract{
		indexWidth:   m.indexWidth,
		elementWidth: m.elementWidth,
		elements:     mapLight(m.marks, bitvector.Mark.ProtoFirst),
	}
}

// Advances the elements as a mixed-radix counter, the lowest index first.
// On overflow the proto is reset to the first array and false is returned.
func (m Mark) ProtoIncrement(proto *Abstract) bool {
	advanced := false
	var at uint64
	var element bitvector.Combined
	m.marks.Runs(0, m.marks.Last(), func(first, last uint64, mark bitvector.Mark) {
		if advanced || !mark.IsMarked() {
			return
		}
		for index := first; ; index++ {
			current := proto.elements.Get(index)
			if mark.ProtoIncrement(&current) {
				advanced = true
				at, element = index, current
				return
			}
			// the element wrapped around, carry into the next one
			proto.elements = proto.elements.Write(index, current)
			if index == last {
				return
			}
		}
	})
	if !advanced {
		*proto = m.ProtoFirst()
		return false
	}
	proto.elements = proto.elements.Write(at, element)
	return true
}

func (m Mark) String() string {
	return "{" + m.marks.String() + "}"
}

// Backward mark of a read. A concrete index passes the mark to the element read,
// otherwise the index is marked so that it becomes concrete first.
func MarkRead(a Abstract, index bitvector.Combined, later bitvector.Mark) (Mark, bitvector.Mark) {
	earlier := NewUnmarked(a.indexWidth, a.elementWidth)
	if !later.IsMarked() {
		return earlier, bitvector.NewUnmarked(a.indexWidth)
	}
	if value, ok := index.ConcreteValue(); ok {
		element := a.elements.Get(value.Unsigned())
		earlier.marks = earlier.marks.Write(value.Unsigned(), later.Limit(element))
		return earlier, bitvector.NewUnmarked(a.indexWidth)
	}
	return earlier, bitvector.NewMarked(a.indexWidth, later.Importance()).Limit(index)
}

// Backward mark of a write.
//
// With a concrete index the mark of the written element passes to the element
// operand. Otherwise the index is marked alone if any element it may select is
// marked, and the array marks pass through unchanged if none is.
func MarkWrite(a Abstract, index, element bitvector.Combined, later Mark) (Mark, bitvector.Mark, bitvector.Mark) {
	unmarkedIndex := bitvector.NewUnmarked(a.indexWidth)
	unmarkedElement := bitvector.NewUnmarked(a.elementWidth)
	if value, ok := index.ConcreteValue(); ok {
		written := later.marks.Get(value.Unsigned())
		earlier := later
		earlier.marks = later.marks.Write(value.Unsigned(), unmarkedElement)
		return earlier, unmarkedIndex, written.Limit(element)
	}
	if later.marks.Any(index.UMin(), index.UMax(), bitvector.Mark.IsMarked) {
		importance := later.Importance()
		return NewUnmarked(a.indexWidth, a.elementWidth), bitvector.NewMarked(a.indexWidth, importance).Limit(index), unmarkedElement
	}
	return later, unmarkedIndex, unmarkedElement
}
