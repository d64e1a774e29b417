package property

import "fmt"

// A property of computation tree logic extended with fixed points.
//
// Properties are immutable trees. Two properties are equal exactly when their
// keys are equal.
type Property interface {
	// Writes the property in the syntax accepted by Parse.
	String() string
	isProperty()
}

// A structural key of the property, equal for equal properties.
func Key(p Property) string {
	return p.String()
}

func Equal(a, b Property) bool {
	return Key(a) == Key(b)
}

type Const struct {
	Value bool
}

type Negation struct {
	Inner Property
}

type And struct {
	A, B Property
}

type Or struct {
	A, B Property
}

// Holds in a state if the inner property holds in all (universal) or some successors.
type Next struct {
	Universal bool
	Inner     Property
}

// Holds if the inner property holds eventually on all or some paths.
type Finally struct {
	Universal bool
	Inner     Property
}

// Holds if the inner property holds globally on all or some paths.
type Globally struct {
	Universal bool
	Inner     Property
}

// Holds if Hold holds on all or some paths until Until holds, which it eventually does.
type Until struct {
	Universal bool
	Hold      Property
	Until     Property
}

// Holds if Releasee holds on all or some paths up to and including the state
// where Releaser holds, or forever.
type Release struct {
	Universal bool
	Releaser  Property
	Releasee  Property
}

// The least or greatest fixed point of the inner property over the variable.
type FixedPoint struct {
	Greatest bool
	Variable string
	Inner    Property
}

// A reference to the variable of the innermost enclosing fixed point of that name.
type Variable struct {
	Name string
}

func (Const) isProperty()      {}
func (Atomic) isProperty()     {}
func (Negation) isProperty()   {}
func (And) isProperty()        {}
func (Or) isProperty()         {}
func (Next) isProperty()       {}
func (Finally) isProperty()    {}
func (Globally) isProperty()   {}
func (Until) isProperty()      {}
func (Release) isProperty()    {}
func (FixedPoint) isProperty() {}
func (Variable) isProperty()   {}

func (p Const) String() string {
	return fmt.Sprint(p.Value)
}

func (p Negation) String() string {
	return fmt.Sprintf("!(%v)", p.Inner)
}

func (p And) String() string {
	return writeBinary(p.A, "&&", p.B)
}

func (p Or) String() string {
	return writeBinary(p.A, "||", p.B)
}

// Operands that are themselves binary are parenthesized so that the text is unambiguous.
func writeBinary(a Property, operator string, b Property) string {
	operand := func(p Property) string {
		switch p.(type) {
		case And, Or:
			return "(" + p.String() + ")"
		}
		return p.String()
	}
	return operand(a) + " " + operator + " " + operand(b)
}

func quantifier(universal bool) string {
	if universal {
		return "A"
	}
	return "E"
}

func (p Next) String() string {
	return fmt.Sprintf("%vX![%v]", quantifier(p.Universal), p.Inner)
}

func (p Finally) String() string {
	return fmt.Sprintf("%vF![%v]", quantifier(p.Universal), p.Inner)
}

func (p Globally) String() string {
	return fmt.Sprintf("%vG![%v]", quantifier(p.Universal), p.Inner)
}

func (p Until) String() string {
	return fmt.Sprintf("%vU![%v, %v]", quantifier(p.Universal), p.Hold, p.Until)
}

func (p Release) String() string {
	return fmt.Sprintf("%vR![%v, %v]", quantifier(p.Universal), p.Releaser, p.Releasee)
}

func (p FixedPoint) String() string {
	kind := "lfp"
	if p.Greatest {
		kind = "gfp"
	}
	return fmt.Sprintf("%v![%v, %v]", kind, p.Variable, p.Inner)
}

func (p Variable) String() string {
	return p.Name
}

// The property every system is checked for first: it never panics.
func Inherent() Property {
	return Globally{Universal: true, Inner: Atomic{Name: PanicField, Comparison: Eq, Constant: 0}}
}

// Name of the panic component in atomic properties.
const PanicField = "__panic"

// Returns true if the property is the inherent property.
func IsInherent(p Property) bool {
	return Equal(p, Inherent())
}

// Direct subproperties, in the order they are written.
func Children(p Property) []Property {
	switch p := p.(type) {
	case Negation:
		return []Property{p.Inner}
	case And:
		return []Property{p.A, p.B}
	case Or:
		return []Property{p.A, p.B}
	case Next:
		return []Property{p.Inner}
	case Finally:
		return []Property{p.Inner}
	case Globally:
		return []Property{p.Inner}
	case Until:
		return []Property{p.Hold, p.Until}
	case Release:
		return []Property{p.Releaser, p.Releasee}
	case FixedPoint:
		return []Property{p.Inner}
	}
	return nil
}

// Returns true if every variable is bound by an enclosing fixed point.
func IsClosed(p Property) bool {
	return isClosed(p, nil)
}

func isClosed(p Property, bound []string) bool {
	switch p := p.(type) {
	case Variable:
		for _, name := range bound {
			if name == p.Name {
				return true
			}
		}
		return false
	case FixedPoint:
		return isClosed(p.Inner, append(bound[:len(bound):len(bound)], p.Variable))
	}
	for _, child := range Children(p) {
		if !isClosed(child, bound) {
			return false
		}
	}
	return true
}

// Returns true if the property contains a negation.
func ContainsNegation(p Property) bool {
	if _, ok := p.(Negation); ok {
		return true
	}
	for _, child := range Children(p) {
		if ContainsNegation(child) {
			return true
		}
	}
	return false
}
