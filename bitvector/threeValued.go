package bitvector

import (
	"fmt"
	"math/bits"
	"strings"
)

// A set of bit-vectors described bit by bit.
//
// Bit i may be zero if zeros has bit i set and may be one if ones has bit i set.
// Every bit must be possibly zero or possibly one.
type ThreeValued struct {
	zeros uint64
	ones  uint64
	width uint32
}

// Create a three-valued bit-vector from its possibly-zero and possibly-one flags.
// Panics if some bit is neither.
func NewThreeValued(zeros, ones uint64, width uint32) ThreeValued {
	checkWidth(width)
	mask := Mask(width)
	zeros &= mask
	ones &= mask
	if (zeros | ones) != mask {
		panic(fmt.Sprintf("bitvector: three-valued bit-vector with bits neither zero nor one (zeros %#x, ones %#x, width %v)", zeros, ones, width))
	}
	return ThreeValued{zeros: zeros, ones: ones, width: width}
}

func NewThreeValuedConcrete(c Concrete) ThreeValued {
	mask := Mask(c.width)
	return ThreeValued{zeros: ^c.value & mask, ones: c.value, width: c.width}
}

func NewThreeValuedFull(width uint32) ThreeValued {
	checkWidth(width)
	mask := Mask(width)
	return ThreeValued{zeros: mask, ones: mask, width: width}
}

// Bits selected by known take their value from value, the other bits are unknown.
func NewThreeValuedKnownBits(value, known uint64, width uint32) ThreeValued {
	mask := Mask(width)
	unknown := ^known & mask
	return NewThreeValued((^value&mask)|unknown, (value&mask)|unknown, width)
}

// The smallest three-valued bit-vector containing every value of the unsigned interval [min, max].
// The bits above the highest bit where min and max differ are known.
func threeValuedFromInterval(min, max uint64, width uint32) ThreeValued {
	different := min ^ max
	if different == 0 {
		return NewThreeValuedConcrete(NewConcrete(min, width))
	}
	unknown := Mask(highestBit(different) + 1)
	return NewThreeValuedKnownBits(min, ^unknown, width)
}

func (a ThreeValued) Width() uint32 {
	return a.width
}

func (a ThreeValued) Zeros() uint64 {
	return a.zeros
}

func (a ThreeValued) Ones() uint64 {
	return a.ones
}

// Bits that may be both zero and one.
func (a ThreeValued) UnknownBits() uint64 {
	return a.zeros & a.ones
}

// Bits that have a single possible value.
func (a ThreeValued) KnownBits() uint64 {
	return ^a.UnknownBits() & Mask(a.width)
}

func (a ThreeValued) UMin() uint64 {
	return a.ones &^ a.zeros
}

func (a ThreeValued) UMax() uint64 {
	return a.ones
}

func (a ThreeValued) SMin() int64 {
	sign := signBit(a.width)
	value := a.UMin()&^sign | a.ones&sign
	return NewConcrete(value, a.width).Signed()
}

func (a ThreeValued) SMax() int64 {
	sign := signBit(a.width)
	value := a.ones&^sign | a.UMin()&sign
	return NewConcrete(value, a.width).Signed()
}

// Returns the smallest member not below bound.
func (a ThreeValued) nextMember(bound uint64) (uint64, bool) {
	known := a.KnownBits()
	values := a.UMin()
	conflicts := (bound ^ values) & known
	if conflicts == 0 {
		return bound, true
	}
	j := highestBit(conflicts)
	above := ^Mask(j+1) & Mask(a.width)
	if values&(uint64(1)<<j) != 0 {
		// raise bit j, keep the bits above, minimise the bits below
		return bound&above | uint64(1)<<j | values&Mask(j), true
	}
	// bit j must drop, so some unknown zero bit above it must rise
	candidates := ^bound & a.UnknownBits() & above
	if candidates == 0 {
		return 0, false
	}
	p := lowestBit(candidates)
	return bound&^Mask(p+1) | uint64(1)<<p | values&Mask(p), true
}

// Returns the largest member not above bound.
func (a ThreeValued) prevMember(bound uint64) (uint64, bool) {
	known := a.KnownBits()
	values := a.UMin()
	conflicts := (bound ^ values) & known
	if conflicts == 0 {
		return bound, true
	}
	j := highestBit(conflicts)
	above := ^Mask(j+1) & Mask(a.width)
	if values&(uint64(1)<<j) == 0 {
		// drop bit j, keep the bits above, maximise the bits below
		return bound&above | a.ones&Mask(j), true
	}
	// bit j must rise, so some unknown one bit above it must drop
	candidates := bound & a.UnknownBits() & above
	if candidates == 0 {
		return 0, false
	}
	p := lowestBit(candidates)
	return bound&^Mask(p+1) | a.ones&Mask(p), true
}

func highestBit(value uint64) uint32 {
	return uint32(63 - bits.LeadingZeros64(value))
}

func lowestBit(value uint64) uint32 {
	return uint32(bits.TrailingZeros64(value))
}

func (a ThreeValued) ConcreteValue() (Concrete, bool) {
	if a.UnknownBits() != 0 {
		return Concrete{}, false
	}
	return Concrete{value: a.ones, width: a.width}, true
}

func (a ThreeValued) ContainsConcrete(c Concrete) bool {
	checkSameWidth(a.width, c.width)
	// every one of c must be possible, every zero of c must be possible
	return c.value&^a.ones == 0 && ^c.value&Mask(a.width)&^a.zeros == 0
}

func (a ThreeValued) Contains(o ThreeValued) bool {
	checkSameWidth(a.width, o.width)
	return o.zeros&^a.zeros == 0 && o.ones&^a.ones == 0
}

func (a ThreeValued) Join(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return ThreeValued{zeros: a.zeros | o.zeros, ones: a.ones | o.ones, width: a.width}
}

func (a ThreeValued) Meet(o ThreeValued) (ThreeValued, bool) {
	checkSameWidth(a.width, o.width)
	zeros := a.zeros & o.zeros
	ones := a.ones & o.ones
	if zeros|ones != Mask(a.width) {
		return ThreeValued{}, false
	}
	return ThreeValued{zeros: zeros, ones: ones, width: a.width}, true
}

func (a ThreeValued) CanBeTrue() bool {
	return a.ones != 0
}

func (a ThreeValued) CanBeFalse() bool {
	return a.zeros != 0 || a.width == 0
}

func (a ThreeValued) And(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return ThreeValued{zeros: a.zeros | o.zeros, ones: a.ones & o.ones, width: a.width}
}

func (a ThreeValued) Or(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return ThreeValued{zeros: a.zeros & o.zeros, ones: a.ones | o.ones, width: a.width}
}

func (a ThreeValued) Xor(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	zeros := (a.zeros & o.zeros) | (a.ones & o.ones)
	ones := (a.zeros & o.ones) | (a.ones & o.zeros)
	return ThreeValued{zeros: zeros, ones: ones, width: a.width}
}

func (a ThreeValued) Not() ThreeValued {
	return ThreeValued{zeros: a.ones, ones: a.zeros, width: a.width}
}

func threeValuedBool(canBeFalse, canBeTrue bool) ThreeValued {
	var zeros, ones uint64
	if canBeFalse {
		zeros = 1
	}
	if canBeTrue {
		ones = 1
	}
	return NewThreeValued(zeros, ones, 1)
}

func (a ThreeValued) Eq(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	mask := Mask(a.width)
	canBeSame := (a.zeros&o.zeros)|(a.ones&o.ones) == mask
	canBeDifferent := (a.zeros&o.ones)|(a.ones&o.zeros) != 0
	return threeValuedBool(canBeDifferent, canBeSame)
}

func (a ThreeValued) Ne(o ThreeValued) ThreeValued {
	return a.Eq(o).Not()
}

func (a ThreeValued) Ult(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return threeValuedBool(a.UMax() >= o.UMin(), a.UMin() < o.UMax())
}

func (a ThreeValued) Ule(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return threeValuedBool(a.UMax() > o.UMin(), a.UMin() <= o.UMax())
}

func (a ThreeValued) Slt(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return threeValuedBool(a.SMax() >= o.SMin(), a.SMin() < o.SMax())
}

func (a ThreeValued) Sle(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return threeValuedBool(a.SMax() > o.SMin(), a.SMin() <= o.SMax())
}

func (a ThreeValued) Uext(width uint32) ThreeValued {
	checkWidth(width)
	if width <= a.width {
		mask := Mask(width)
		return ThreeValued{zeros: a.zeros & mask, ones: a.ones & mask, width: width}
	}
	added := Mask(width) &^ Mask(a.width)
	return ThreeValued{zeros: a.zeros | added, ones: a.ones, width: width}
}

func (a ThreeValued) Sext(width uint32) ThreeValued {
	checkWidth(width)
	if width <= a.width || a.width == 0 {
		return a.Uext(width)
	}
	sign := signBit(a.width)
	added := Mask(width) &^ Mask(a.width)
	zeros, ones := a.zeros, a.ones
	if a.zeros&sign != 0 {
		zeros |= added
	}
	if a.ones&sign != 0 {
		ones |= added
	}
	return ThreeValued{zeros: zeros, ones: ones, width: width}
}

// Bits are written from the most significant, unknown bits as X.
func (a ThreeValued) String() string {
	out := strings.Builder{}
	out.WriteString("\"")
	for i := int(a.width) - 1; i >= 0; i-- {
		bit := uint64(1) << i
		switch {
		case a.zeros&bit != 0 && a.ones&bit != 0:
			out.WriteString("X")
		case a.ones&bit != 0:
			out.WriteString("1")
		default:
			out.WriteString("0")
		}
	}
	out.WriteString("\"")
	return out.String()
}
