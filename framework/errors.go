package framework

import (
	"errors"
	"fmt"
	"strings"

	"gomck/space"
)

// No refinement along the culprit changes the precision, so the property can
// not be decided.
var ErrIncomplete = errors.New("framework: incomplete verification")

// The inherent property was requested while it is assumed to hold.
var ErrVerifiedInherentAssumed = errors.New("framework: cannot verify the inherent property while assuming it")

// The space contains a state that panics, so other properties are not verified.
type InherentPanicError struct {
	Message string
}

func (e *InherentPanicError) Error() string {
	return fmt.Sprintf("framework: inherent panic: %v", e.Message)
}

// A panic raised by the system while it was interpreted from the node.
type CollaboratorError struct {
	Node  space.NodeId
	Value interface{}
	Stack []byte
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("framework: system panicked at node %v: %v", e.Node, e.Value)
}

// Aggregates the errors of the successors computed concurrently from a node.
type generationError struct {
	node   space.NodeId
	errors []error
}

func (ge generationError) Error() string {
	messages := make([]string, len(ge.errors))
	for i, err := range ge.errors {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("framework: %v errors occurred generating successors of node %v: %v", len(ge.errors), ge.node, strings.Join(messages, "; "))
}

func (ge generationError) Unwrap() []error {
	return ge.errors
}
