package machine

import "fmt"

type FieldNotFoundError struct {
	Name string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("machine: field %q not found", e.Name)
}

// The index is out of range, or given for a field that is not an array.
type IndexInvalidError struct {
	Name  string
	Index uint64
}

func (e *IndexInvalidError) Error() string {
	return fmt.Sprintf("machine: index %v is invalid for field %q", e.Index, e.Name)
}

type IndexRequiredError struct {
	Name string
}

func (e *IndexRequiredError) Error() string {
	return fmt.Sprintf("machine: array field %q requires an index", e.Name)
}

// An ordering comparison was made on a field of unknown signedness.
type SignednessNotEstablishedError struct {
	Name string
}

func (e *SignednessNotEstablishedError) Error() string {
	return fmt.Sprintf("machine: signedness of field %q is not established, use as_signed or as_unsigned", e.Name)
}
