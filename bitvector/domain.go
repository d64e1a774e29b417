package bitvector

// The capability set shared by the abstract bit-vector domains.
//
// Every operation is sound: for all concrete members of the operands, the concrete
// result is a member of the abstract result. Comparisons produce a width-1 value
// where 1 is true. Division and remainder additionally produce a panic component
// of PanicWidth bits.
type Abstract[T any] interface {
	Width() uint32

	// Smallest element containing both.
	Join(T) T
	// Returns false if the intersection is empty.
	Meet(T) (T, bool)
	// Returns true if every member of the argument is a member of the receiver.
	Contains(T) bool
	ContainsConcrete(Concrete) bool
	// Returns the value if the element represents exactly one concrete value.
	ConcreteValue() (Concrete, bool)

	UMin() uint64
	UMax() uint64
	SMin() int64
	SMax() int64

	Add(T) T
	Sub(T) T
	Mul(T) T
	Neg() T
	And(T) T
	Or(T) T
	Xor(T) T
	Not() T
	Shl(T) T
	Lshr(T) T
	Ashr(T) T
	Uext(uint32) T
	Sext(uint32) T

	Eq(T) T
	Ne(T) T
	Ult(T) T
	Ule(T) T
	Slt(T) T
	Sle(T) T

	Udiv(T) PanicResult[T]
	Sdiv(T) PanicResult[T]
	Urem(T) PanicResult[T]
	Srem(T) PanicResult[T]

	String() string
}

// A result together with the panic code computing it may have raised.
type PanicResult[T any] struct {
	Panic  T
	Result T
}

// Constructors of a domain, selected when a machine is built.
type Domain[T Abstract[T]] struct {
	Name         string
	FromConcrete func(Concrete) T
	Full         func(width uint32) T
}

var ThreeValuedDomain = Domain[ThreeValued]{
	Name:         "three-valued",
	FromConcrete: NewThreeValuedConcrete,
	Full:         NewThreeValuedFull,
}

var DualIntervalDomain = Domain[DualInterval]{
	Name:         "dual-interval",
	FromConcrete: NewDualIntervalConcrete,
	Full:         NewDualIntervalFull,
}

var CombinedDomain = Domain[Combined]{
	Name:         "combined",
	FromConcrete: NewCombinedConcrete,
	Full:         NewCombinedFull,
}

// Creates an abstract value of the domain holding exactly the given value.
func (d Domain[T]) Known(value uint64, width uint32) T {
	return d.FromConcrete(NewConcrete(value, width))
}

// Creates the abstract boolean holding both true and false.
func (d Domain[T]) UnknownBool() T {
	return d.Full(1)
}

// Creates the panic component for a divisor, given the panic code raised when the divisor is zero.
func divisionPanic[T Abstract[T]](d Domain[T], divisor T, code uint64) T {
	zero := NewConcrete(0, divisor.Width())
	canPanic := divisor.ContainsConcrete(zero)
	value, isConcrete := divisor.ConcreteValue()
	mustPanic := isConcrete && value.IsZero()

	switch {
	case mustPanic:
		return d.Known(code, PanicWidth)
	case canPanic:
		return d.Known(NoPanic, PanicWidth).Join(d.Known(code, PanicWidth))
	default:
		return d.Known(NoPanic, PanicWidth)
	}
}
