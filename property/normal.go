package property

import "fmt"

// Prefix of the variables introduced by Canonical. Parsed variables may not use it.
const generatedPrefix = "__Z"

// Rewrites every temporal operator except next into a fixed point of the form
//
//	[lfp|gfp] Z. sufficient [or|and] (permitting [and|or] [A|E]X![Z])
//
// Until-like operators become least and release-like operators greatest fixed points.
// Each introduced variable is named by the number of fixed points enclosing it.
func Canonical(p Property) Property {
	return canonical(p, 0)
}

func canonical(p Property, depth int) Property {
	switch p := p.(type) {
	case Negation:
		return Negation{Inner: canonical(p.Inner, depth)}
	case And:
		return And{A: canonical(p.A, depth), B: canonical(p.B, depth)}
	case Or:
		return Or{A: canonical(p.A, depth), B: canonical(p.B, depth)}
	case Next:
		return Next{Universal: p.Universal, Inner: canonical(p.Inner, depth)}
	case Finally:
		return canonicalFixedPoint(p.Universal, false, Const{Value: true}, p.Inner, depth)
	case Globally:
		return canonicalFixedPoint(p.Universal, true, Const{Value: false}, p.Inner, depth)
	case Until:
		return canonicalFixedPoint(p.Universal, false, p.Hold, p.Until, depth)
	case Release:
		return canonicalFixedPoint(p.Universal, true, p.Releaser, p.Releasee, depth)
	case FixedPoint:
		return FixedPoint{Greatest: p.Greatest, Variable: p.Variable, Inner: canonical(p.Inner, depth+1)}
	}
	return p
}

func canonicalFixedPoint(universal, release bool, permitting, sufficient Property, depth int) Property {
	variable := fmt.Sprintf("%v%v", generatedPrefix, depth)
	permitting = canonical(permitting, depth+1)
	sufficient = canonical(sufficient, depth+1)
	next := Next{Universal: universal, Inner: Variable{Name: variable}}
	if release {
		return FixedPoint{
			Greatest: true,
			Variable: variable,
			Inner:    And{A: sufficient, B: Or{A: permitting, B: next}},
		}
	}
	return FixedPoint{
		Variable: variable,
		Inner:    Or{A: sufficient, B: And{A: permitting, B: next}},
	}
}

// Rewrites the property into positive normal form, pushing every negation into
// the atomic properties and constants.
//
// Panics if a fixed-point variable occurs under a negation its fixed point is not under.
func PNF(p Property) Property {
	result := pnf(p, false, map[string]bool{})
	if ContainsNegation(result) {
		panic(fmt.Sprintf("property: negation remains in positive normal form %v", result))
	}
	return result
}

// Complemented records for each bound variable whether its fixed point was complemented.
func pnf(p Property, complement bool, complemented map[string]bool) Property {
	switch p := p.(type) {
	case Const:
		return Const{Value: p.Value != complement}
	case Atomic:
		if complement {
			return p.Complement()
		}
		return p
	case Negation:
		return pnf(p.Inner, !complement, complemented)
	case And:
		a, b := pnf(p.A, complement, complemented), pnf(p.B, complement, complemented)
		if complement {
			return Or{A: a, B: b}
		}
		return And{A: a, B: b}
	case Or:
		a, b := pnf(p.A, complement, complemented), pnf(p.B, complement, complemented)
		if complement {
			return And{A: a, B: b}
		}
		return Or{A: a, B: b}
	case Next:
		return Next{Universal: p.Universal != complement, Inner: pnf(p.Inner, complement, complemented)}
	case Finally:
		inner := pnf(p.Inner, complement, complemented)
		if complement {
			return Globally{Universal: !p.Universal, Inner: inner}
		}
		return Finally{Universal: p.Universal, Inner: inner}
	case Globally:
		inner := pnf(p.Inner, complement, complemented)
		if complement {
			return Finally{Universal: !p.Universal, Inner: inner}
		}
		return Globally{Universal: p.Universal, Inner: inner}
	case Until:
		a, b := pnf(p.Hold, complement, complemented), pnf(p.Until, complement, complemented)
		if complement {
			return Release{Universal: !p.Universal, Releaser: a, Releasee: b}
		}
		return Until{Universal: p.Universal, Hold: a, Until: b}
	case Release:
		a, b := pnf(p.Releaser, complement, complemented), pnf(p.Releasee, complement, complemented)
		if complement {
			return Until{Universal: !p.Universal, Hold: a, Until: b}
		}
		return Release{Universal: p.Universal, Releaser: a, Releasee: b}
	case FixedPoint:
		// not lfp Z. f(Z) is gfp Z. not f(not Z)
		inner := withBinding(complemented, p.Variable, complement, func(inner map[string]bool) Property {
			return pnf(p.Inner, complement, inner)
		})
		return FixedPoint{Greatest: p.Greatest != complement, Variable: p.Variable, Inner: inner}
	case Variable:
		if bound, ok := complemented[p.Name]; ok && bound != complement {
			panic(fmt.Sprintf("property: variable %v occurs with the opposite polarity of its fixed point", p.Name))
		}
		return p
	}
	panic(fmt.Sprintf("property: unknown property type %T", p))
}

func withBinding(bindings map[string]bool, name string, value bool, f func(map[string]bool) Property) Property {
	previous, had := bindings[name]
	bindings[name] = value
	result := f(bindings)
	if had {
		bindings[name] = previous
	} else {
		delete(bindings, name)
	}
	return result
}

// Rewrites the property into existential normal form, where the only temporal
// operators are EX, EU and EG:
//
//	AX p = !EX !p
//	EF p = E[true U p]
//	AF p = !EG !p
//	AG p = !E[true U !p]
//	A[p U q] = !(E[!q U (!p && !q)] || EG !q)
//	E[p R q] = EG q || E[q U (p && q)]
//	A[p R q] = !E[!p U !q]
func ENF(p Property) Property {
	not := func(p Property) Property { return Negation{Inner: p} }
	eu := func(hold, until Property) Property { return Until{Hold: hold, Until: until} }
	eg := func(p Property) Property { return Globally{Inner: p} }
	switch p := p.(type) {
	case Negation:
		return not(ENF(p.Inner))
	case And:
		return And{A: ENF(p.A), B: ENF(p.B)}
	case Or:
		return Or{A: ENF(p.A), B: ENF(p.B)}
	case Next:
		if p.Universal {
			return not(Next{Inner: not(ENF(p.Inner))})
		}
		return Next{Inner: ENF(p.Inner)}
	case Finally:
		if p.Universal {
			return not(eg(not(ENF(p.Inner))))
		}
		return eu(Const{Value: true}, ENF(p.Inner))
	case Globally:
		if p.Universal {
			return not(eu(Const{Value: true}, not(ENF(p.Inner))))
		}
		return eg(ENF(p.Inner))
	case Until:
		hold, until := ENF(p.Hold), ENF(p.Until)
		if p.Universal {
			return not(Or{A: eu(not(until), And{A: not(hold), B: not(until)}), B: eg(not(until))})
		}
		return eu(hold, until)
	case Release:
		releaser, releasee := ENF(p.Releaser), ENF(p.Releasee)
		if p.Universal {
			return not(eu(not(releaser), not(releasee)))
		}
		return Or{A: eg(releasee), B: eu(releasee, And{A: releaser, B: releasee})}
	case FixedPoint:
		return FixedPoint{Greatest: p.Greatest, Variable: p.Variable, Inner: ENF(p.Inner)}
	}
	return p
}
