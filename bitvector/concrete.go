package bitvector

import "fmt"

// The widest supported bit-vector.
const MaxWidth = 64

// Panic codes produced by division and remainder.
const (
	NoPanic        uint64 = 0
	PanicDivByZero uint64 = 1
	PanicRemByZero uint64 = 2
)

// Width of the panic component of a panic-carrying result.
const PanicWidth = 32

// Returns a mask selecting the lowest width bits.
func Mask(width uint32) uint64 {
	if width >= MaxWidth {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

func signBit(width uint32) uint64 {
	if width == 0 {
		return 0
	}
	return uint64(1) << (width - 1)
}

func checkWidth(width uint32) {
	if width > MaxWidth {
		panic(fmt.Sprintf("bitvector: width %v exceeds the maximum of %v", width, MaxWidth))
	}
}

func checkSameWidth(a, b uint32) {
	if a != b {
		panic(fmt.Sprintf("bitvector: mismatched widths %v and %v", a, b))
	}
}

// A fixed-width two's-complement integer.
// All operations wrap modulo 2^width.
type Concrete struct {
	value uint64
	width uint32
}

// Create a concrete bit-vector. Bits above the width are discarded.
func NewConcrete(value uint64, width uint32) Concrete {
	checkWidth(width)
	return Concrete{value: value & Mask(width), width: width}
}

// Create a concrete bit-vector from a signed value, wrapping it to the width.
func NewConcreteSigned(value int64, width uint32) Concrete {
	return NewConcrete(uint64(value), width)
}

func (c Concrete) Width() uint32 {
	return c.width
}

func (c Concrete) Unsigned() uint64 {
	return c.value
}

// Returns the value interpreted as two's complement.
func (c Concrete) Signed() int64 {
	if c.width == 0 {
		return 0
	}
	if c.value&signBit(c.width) != 0 {
		return int64(c.value | ^Mask(c.width))
	}
	return int64(c.value)
}

func (c Concrete) IsZero() bool {
	return c.value == 0
}

func (c Concrete) IsSignBitSet() bool {
	return c.value&signBit(c.width) != 0
}

func (c Concrete) Add(o Concrete) Concrete {
	checkSameWidth(c.width, o.width)
	return NewConcrete(c.value+o.value, c.width)
}

func (c Concrete) Sub(o Concrete) Concrete {
	checkSameWidth(c.width, o.width)
	return NewConcrete(c.value-o.value, c.width)
}

func (c Concrete) Mul(o Concrete) Concrete {
	checkSameWidth(c.width, o.width)
	return NewConcrete(c.value*o.value, c.width)
}

func (c Concrete) Neg() Concrete {
	return NewConcrete(-c.value, c.width)
}

func (c Concrete) And(o Concrete) Concrete {
	checkSameWidth(c.width, o.width)
	return Concrete{value: c.value & o.value, width: c.width}
}

func (c Concrete) Or(o Concrete) Concrete {
	checkSameWidth(c.width, o.width)
	return Concrete{value: c.value | o.value, width: c.width}
}

func (c Concrete) Xor(o Concrete) Concrete {
	checkSameWidth(c.width, o.width)
	return Concrete{value: c.value ^ o.value, width: c.width}
}

func (c Concrete) Not() Concrete {
	return NewConcrete(^c.value, c.width)
}

// Logical shift left. Amounts of at least the width produce zero.
func (c Concrete) Shl(amount Concrete) Concrete {
	checkSameWidth(c.width, amount.width)
	if amount.value >= uint64(c.width) {
		return NewConcrete(0, c.width)
	}
	return NewConcrete(c.value<<amount.value, c.width)
}

// Logical shift right. Amounts of at least the width produce zero.
func (c Concrete) Lshr(amount Concrete) Concrete {
	checkSameWidth(c.width, amount.width)
	if amount.value >= uint64(c.width) {
		return NewConcrete(0, c.width)
	}
	return NewConcrete(c.value>>amount.value, c.width)
}

// Arithmetic shift right. Amounts of at least the width fill the result with the sign bit.
func (c Concrete) Ashr(amount Concrete) Concrete {
	checkSameWidth(c.width, amount.width)
	if amount.value >= uint64(c.width) {
		if c.IsSignBitSet() {
			return NewConcrete(^uint64(0), c.width)
		}
		return NewConcrete(0, c.width)
	}
	return NewConcreteSigned(c.Signed()>>amount.value, c.width)
}

// Zero-extends or truncates to the given width.
func (c Concrete) Uext(width uint32) Concrete {
	return NewConcrete(c.value, width)
}

// Sign-extends or truncates to the given width.
func (c Concrete) Sext(width uint32) Concrete {
	return NewConcreteSigned(c.Signed(), width)
}

func (c Concrete) Eq(o Concrete) bool {
	checkSameWidth(c.width, o.width)
	return c.value == o.value
}

func (c Concrete) Ult(o Concrete) bool {
	checkSameWidth(c.width, o.width)
	return c.value < o.value
}

func (c Concrete) Ule(o Concrete) bool {
	checkSameWidth(c.width, o.width)
	return c.value <= o.value
}

func (c Concrete) Slt(o Concrete) bool {
	checkSameWidth(c.width, o.width)
	return c.Signed() < o.Signed()
}

func (c Concrete) Sle(o Concrete) bool {
	checkSameWidth(c.width, o.width)
	return c.Signed() <= o.Signed()
}

// Unsigned division. Division by zero produces all ones and the division panic code.
func (c Concrete) Udiv(o Concrete) (Concrete, uint64) {
	checkSameWidth(c.width, o.width)
	if o.value == 0 {
		return NewConcrete(^uint64(0), c.width), PanicDivByZero
	}
	return NewConcrete(c.value/o.value, c.width), NoPanic
}

// Unsigned remainder. Remainder by zero produces the dividend and the remainder panic code.
func (c Concrete) Urem(o Concrete) (Concrete, uint64) {
	checkSameWidth(c.width, o.width)
	if o.value == 0 {
		return c, PanicRemByZero
	}
	return NewConcrete(c.value%o.value, c.width), NoPanic
}

// Signed division truncating towards zero. The most negative value divided by -1 wraps.
func (c Concrete) Sdiv(o Concrete) (Concrete, uint64) {
	checkSameWidth(c.width, o.width)
	if o.value == 0 {
		return NewConcrete(^uint64(0), c.width), PanicDivByZero
	}
	return NewConcreteSigned(c.Signed()/o.Signed(), c.width), NoPanic
}

// Signed remainder with the sign of the dividend.
func (c Concrete) Srem(o Concrete) (Concrete, uint64) {
	checkSameWidth(c.width, o.width)
	if o.value == 0 {
		return c, PanicRemByZero
	}
	return NewConcreteSigned(c.Signed()%o.Signed(), c.width), NoPanic
}

func (c Concrete) String() string {
	return fmt.Sprintf("%v'%v", c.width, c.value)
}
