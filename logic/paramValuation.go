package logic

// The valuation of a property in a state.
//
// Dependent is reserved for verdicts that depend on a parameter of the system.
// No verdict produced by the checker is Dependent yet, but the connectives
// already order it between the known values and Unknown.
type ParamValuation int

const (
	ParamFalse ParamValuation = iota
	ParamTrue
	ParamDependent
	ParamUnknown
)

func ParamFromBool(b bool) ParamValuation {
	if b {
		return ParamTrue
	}
	return ParamFalse
}

func ParamFromValue(v Value) ParamValuation {
	switch v {
	case False:
		return ParamFalse
	case True:
		return ParamTrue
	}
	return ParamUnknown
}

// Returns the Boolean value and whether the valuation is definite.
func (p ParamValuation) Bool() (bool, bool) {
	switch p {
	case ParamTrue:
		return true, true
	case ParamFalse:
		return false, true
	}
	return false, false
}

func (p ParamValuation) IsUnknown() bool {
	return p == ParamUnknown
}

// Dependent counts as known: refinement cannot resolve it.
func (p ParamValuation) IsKnown() bool {
	return !p.IsUnknown()
}

func (p ParamValuation) Not() ParamValuation {
	switch p {
	case ParamFalse:
		return ParamTrue
	case ParamTrue:
		return ParamFalse
	}
	return p
}

// Rank of the valuation in conjunction, from the ground value True up to False.
func (p ParamValuation) andRank() int {
	switch p {
	case ParamTrue:
		return 0
	case ParamDependent:
		return 1
	case ParamUnknown:
		return 2
	}
	return 3
}

// Rank of the valuation in disjunction, from the ground value False up to True.
func (p ParamValuation) orRank() int {
	switch p {
	case ParamFalse:
		return 0
	case ParamDependent:
		return 1
	case ParamUnknown:
		return 2
	}
	return 3
}

// Compares the valuations in the upward conjunction order: True < Dependent < Unknown < False.
func (p ParamValuation) CompareAnd(o ParamValuation) int {
	return p.andRank() - o.andRank()
}

// Compares the valuations in the upward disjunction order: False < Dependent < Unknown < True.
func (p ParamValuation) CompareOr(o ParamValuation) int {
	return p.orRank() - o.orRank()
}

func (p ParamValuation) And(o ParamValuation) ParamValuation {
	if p.CompareAnd(o) >= 0 {
		return p
	}
	return o
}

func (p ParamValuation) Or(o ParamValuation) ParamValuation {
	if p.CompareOr(o) >= 0 {
		return p
	}
	return o
}

func (p ParamValuation) String() string {
	switch p {
	case ParamFalse:
		return "false"
	case ParamTrue:
		return "true"
	case ParamDependent:
		return "dependent"
	}
	return "unknown"
}
