package logic

// A Boolean extended to Kleene three-valued logic.
type Value int

const (
	False Value = iota
	Unknown
	True
)

func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

func (v Value) IsKnown() bool {
	return v != Unknown
}

func (v Value) IsTrue() bool {
	return v == True
}

func (v Value) IsFalse() bool {
	return v == False
}

// Returns the Boolean value and whether the value is known.
func (v Value) Bool() (bool, bool) {
	switch v {
	case True:
		return true, true
	case False:
		return false, true
	}
	return false, false
}

func (v Value) Not() Value {
	switch v {
	case False:
		return True
	case True:
		return False
	}
	return Unknown
}

// False < Unknown < True, so conjunction is the minimum.
func (v Value) And(o Value) Value {
	return min(v, o)
}

func (v Value) Or(o Value) Value {
	return max(v, o)
}

func (v Value) String() string {
	switch v {
	case False:
		return "false"
	case True:
		return "true"
	}
	return "unknown"
}
