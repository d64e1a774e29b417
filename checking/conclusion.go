package checking

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"gomck/property"
	"gomck/space"
)

// The result of checking a property on a state space.
type Conclusion interface {
	// Returns true if the property holds and a description of the conclusion.
	// Unknown and NotCheckable conclusions return false.
	Response() (bool, string)

	isConclusion()
}

// The property has the value in every concrete run the space represents.
type Known struct {
	Value bool
}

// The abstraction is too coarse to decide the property.
type Unknown struct {
	Culprit Culprit
}

// The space has a node without successors, so paths can not be continued.
type NotCheckable struct{}

func (Known) isConclusion()        {}
func (Unknown) isConclusion()      {}
func (NotCheckable) isConclusion() {}

func (k Known) Response() (bool, string) {
	if k.Value {
		return true, "Property holds"
	}
	return false, "Property does not hold"
}

func (u Unknown) Response() (bool, string) {
	return false, "Property is unknown. " + u.Culprit.String()
}

func (NotCheckable) Response() (bool, string) {
	return false, "State space is not left-total"
}

// A path from an initial state to a state where the atomic property is unknown.
// Refining the precision along the path can make the atomic property known.
type Culprit struct {
	Path   []space.StateId
	Atomic property.Atomic
}

// The last state of the path.
func (c Culprit) State() space.StateId {
	return c.Path[len(c.Path)-1]
}

func (c Culprit) String() string {
	var buffer bytes.Buffer
	wrt := tabwriter.NewWriter(&buffer, 4, 4, 0, ' ', 0)
	out := fmt.Sprintf("Culprit: %v. Path: \n", c.Atomic)
	for _, id := range c.Path {
		fmt.Fprintf(wrt, "-> %v \n", id)
	}
	wrt.Flush()
	return out + buffer.String()
}
