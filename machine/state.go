package machine

import (
	"fmt"

	"gomck/bitvector"
)

// Name under which the panic component of a state is looked up.
const PanicField = "__panic"

// The outcome of init or next: a panic code together with the resulting record.
type State struct {
	Panic  bitvector.Combined
	Result Record
}

// A state that certainly does not panic.
func NewState(result Record) State {
	return State{Panic: bitvector.NewCombinedConcrete(bitvector.NewConcrete(bitvector.NoPanic, bitvector.PanicWidth)), Result: result}
}

// Structural key: two states have the same key exactly when they are equal.
func (s State) Key() string {
	return s.String()
}

func (s State) Contains(o State) bool {
	return s.Panic.Contains(o.Panic) && s.Result.Contains(o.Result)
}

func (s State) Equal(o State) bool {
	return s.Panic == o.Panic && s.Result.Equal(o.Result)
}

func (s State) String() string {
	return fmt.Sprintf("%v: %v, %v", PanicField, s.Panic, s.Result)
}

// Resolves a field reference of an atomic property to a bit-vector value and its signedness.
//
// The panic field is unsigned. An index must be given for array fields and only for them.
func (s State) Lookup(name string, index *uint64) (bitvector.Combined, Signedness, error) {
	if name == PanicField {
		if index != nil {
			return bitvector.Combined{}, Signless, &IndexInvalidError{Name: name, Index: *index}
		}
		return s.Panic, Unsigned, nil
	}
	field, ok := s.Result.Field(name)
	if !ok {
		return bitvector.Combined{}, Signless, &FieldNotFoundError{Name: name}
	}
	if !field.IsArray() {
		if index != nil {
			return bitvector.Combined{}, Signless, &IndexInvalidError{Name: name, Index: *index}
		}
		return field.Bits(), field.Signedness, nil
	}
	if index == nil {
		return bitvector.Combined{}, Signless, &IndexRequiredError{Name: name}
	}
	value := field.Array()
	if *index > bitvector.Mask(value.IndexWidth()) {
		return bitvector.Combined{}, Signless, &IndexInvalidError{Name: name, Index: *index}
	}
	return value.Element(*index), field.Signedness, nil
}
