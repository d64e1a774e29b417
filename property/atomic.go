package property

import (
	"fmt"

	"gomck/bitvector"
	"gomck/logic"
	"gomck/machine"
)

type Comparison int

const (
	Eq Comparison = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

var comparisonText = map[Comparison]string{
	Eq: "==",
	Ne: "!=",
	Lt: "<",
	Le: "<=",
	Gt: ">",
	Ge: ">=",
}

func (c Comparison) String() string {
	return comparisonText[c]
}

// The comparison that holds exactly when this one does not.
func (c Comparison) Complement() Comparison {
	switch c {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Lt:
		return Ge
	case Le:
		return Gt
	case Gt:
		return Le
	}
	return Lt
}

// Compares a field of the state, or an element of an array field, with a constant.
type Atomic struct {
	Name  string
	Index *uint64
	// Overrides the signedness declared by the field. Signless if not forced.
	Signedness machine.Signedness
	Comparison Comparison
	Constant   int64
}

func (p Atomic) String() string {
	left := p.Name
	if p.Index != nil {
		left += fmt.Sprintf("[%v]", *p.Index)
	}
	switch p.Signedness {
	case machine.Signed:
		left = "as_signed(" + left + ")"
	case machine.Unsigned:
		left = "as_unsigned(" + left + ")"
	}
	return fmt.Sprintf("%v %v %v", left, p.Comparison, p.Constant)
}

// Returns the atomic property with the complementary comparison.
func (p Atomic) Complement() Atomic {
	p.Comparison = p.Comparison.Complement()
	return p
}

// Evaluates the comparison on the abstract state.
//
// The result is true or false if the comparison has that result for every
// concrete member of the state, and unknown otherwise.
func (p Atomic) Evaluate(state machine.State) (logic.Value, error) {
	value, declared, err := state.Lookup(p.Name, p.Index)
	if err != nil {
		return logic.Unknown, err
	}
	switch p.Comparison {
	case Eq:
		return p.equals(value), nil
	case Ne:
		return p.equals(value).Not(), nil
	}
	signedness := declared
	if p.Signedness != machine.Signless {
		signedness = p.Signedness
	}
	switch signedness {
	case machine.Unsigned:
		// every unsigned value is above a negative constant
		if p.Constant < 0 {
			return p.order(1, 1), nil
		}
		c := uint64(p.Constant)
		return p.order(compareUnsigned(value.UMin(), c), compareUnsigned(value.UMax(), c)), nil
	case machine.Signed:
		return p.order(compareSigned(value.SMin(), p.Constant), compareSigned(value.SMax(), p.Constant)), nil
	}
	return logic.Unknown, &machine.SignednessNotEstablishedError{Name: p.Name}
}

func (p Atomic) equals(value bitvector.Combined) logic.Value {
	constant, ok := fitConstant(p.Constant, value.Width())
	if !ok || !value.ContainsConcrete(constant) {
		return logic.False
	}
	if _, ok := value.ConcreteValue(); ok {
		return logic.True
	}
	return logic.Unknown
}

// The constant as a bit-vector of the width, if it is representable as an
// unsigned or a signed value of that width.
func fitConstant(constant int64, width uint32) (bitvector.Concrete, bool) {
	if constant >= 0 {
		if uint64(constant) > bitvector.Mask(width) {
			return bitvector.Concrete{}, false
		}
		return bitvector.NewConcrete(uint64(constant), width), true
	}
	if width == 0 || (width < 64 && constant < -(int64(1)<<(width-1))) {
		return bitvector.Concrete{}, false
	}
	return bitvector.NewConcreteSigned(constant, width), true
}

// Decides the ordering from how the smallest and the largest value compare to the constant.
func (p Atomic) order(lowest, highest int) logic.Value {
	var always, never bool
	switch p.Comparison {
	case Lt:
		always, never = highest < 0, lowest >= 0
	case Le:
		always, never = highest <= 0, lowest > 0
	case Gt:
		always, never = lowest > 0, highest <= 0
	case Ge:
		always, never = lowest >= 0, highest < 0
	}
	switch {
	case always:
		return logic.True
	case never:
		return logic.False
	}
	return logic.Unknown
}

func compareUnsigned(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareSigned(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

