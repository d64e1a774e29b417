package array

import (
	"fmt"

	"gomck/bitvector"
)

// An array of bit-vector elements indexed by a bit-vector.
type Abstract struct {
	indexWidth   uint32
	elementWidth uint32
	elements     Light[bitvector.Combined]
}

// Creates an array with every element set to fill.
func NewAbstract(indexWidth uint32, fill bitvector.Combined) Abstract {
	return Abstract{
		indexWidth:   indexWidth,
		elementWidth: fill.Width(),
		elements:     NewLight(bitvector.Mask(indexWidth), fill),
	}
}

func (a Abstract) IndexWidth() uint32 {
	return a.indexWidth
}

func (a Abstract) ElementWidth() uint32 {
	return a.elementWidth
}

func (a Abstract) checkIndex(index bitvector.Combined) {
	if index.Width() != a.indexWidth {
		panic(fmt.Sprintf("array: index of width %v used with index width %v", index.Width(), a.indexWidth))
	}
}

func (a Abstract) checkElement(element bitvector.Combined) {
	if element.Width() != a.elementWidth {
		panic(fmt.Sprintf("array: element of width %v used with element width %v", element.Width(), a.elementWidth))
	}
}

// The element at a concrete index.
func (a Abstract) Element(index uint64) bitvector.Combined {
	return a.elements.Get(index)
}

// Joins every element the index may select.
func (a Abstract) Read(index bitvector.Combined) bitvector.Combined {
	a.checkIndex(index)
	return a.elements.Reduce(index.UMin(), index.UMax(), bitvector.Combined.Join)
}

// Overwrites the element if the index is concrete.
// Otherwise every element the index may select is joined with the written one.
func (a Abstract) Write(index, element bitvector.Combined) Abstract {
	a.checkIndex(index)
	a.checkElement(element)
	if value, ok := index.ConcreteValue(); ok {
		a.elements = a.elements.Write(value.Unsigned(), element)
		return a
	}
	a.elements = a.elements.Map(index.UMin(), index.UMax(), func(e bitvector.Combined) bitvector.Combined {
		return e.Join(element)
	})
	return a
}

func (a Abstract) Join(o Abstract) Abstract {
	a.elements = Zip(a.elements, o.elements, bitvector.Combined.Join)
	return a
}

// Returns false if some index has no element in both.
func (a Abstract) Meet(o Abstract) (Abstract, bool) {
	ok := true
	a.elements = Zip(a.elements, o.elements, func(x, y bitvector.Combined) bitvector.Combined {
		met, metOk := x.Meet(y)
		if !metOk {
			ok = false
			return x
		}
		return met
	})
	return a, ok
}

func (a Abstract) Contains(o Abstract) bool {
	return All(a.elements, o.elements, bitvector.Combined.Contains)
}

func (a Abstract) Equal(o Abstract) bool {
	return a.indexWidth == o.indexWidth && a.elementWidth == o.elementWidth && a.elements.Equal(o.elements)
}

func (a Abstract) String() string {
	return "{" + a.elements.String() + "}"
}
