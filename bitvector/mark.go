package bitvector

import (
	"fmt"
	"math/bits"
)

// Importance given to marks that nothing in particular asked for.
const LowestImportance uint8 = 1

// A refinement mark: the bits of a value whose knowledge is asked for.
//
// A marked bit of an input precision is enumerated during generation, a marked
// bit of a step precision survives decay. Marks also flow backwards through
// operations, from the result to the operands.
type Mark struct {
	bits       uint64
	importance uint8
	width      uint32
}

func NewUnmarked(width uint32) Mark {
	checkWidth(width)
	return Mark{width: width}
}

// Marks every bit.
func NewMarked(width uint32, importance uint8) Mark {
	return NewMark(Mask(width), importance, width)
}

func NewMark(marked uint64, importance uint8, width uint32) Mark {
	checkWidth(width)
	marked &= Mask(width)
	if marked == 0 {
		return Mark{width: width}
	}
	if importance == 0 {
		importance = LowestImportance
	}
	return Mark{bits: marked, importance: importance, width: width}
}

func (m Mark) Width() uint32 {
	return m.width
}

func (m Mark) Bits() uint64 {
	return m.bits
}

func (m Mark) IsMarked() bool {
	return m.bits != 0
}

// Zero for an unmarked mark.
func (m Mark) Importance() uint8 {
	return m.importance
}

// Keeps only the marks on bits that are unknown in the value.
func (m Mark) Limit(value Combined) Mark {
	checkSameWidth(m.width, value.Width())
	return NewMark(m.bits&value.tv.UnknownBits(), m.importance, m.width)
}

func (m Mark) Join(o Mark) Mark {
	checkSameWidth(m.width, o.width)
	return NewMark(m.bits|o.bits, max(m.importance, o.importance), m.width)
}

func (m *Mark) ApplyJoin(o Mark) {
	*m = m.Join(o)
}

// Marks the highest bit marked in the offer but not in the receiver.
// Returns false if there is no such bit.
func (m *Mark) ApplyRefin(offer Mark) bool {
	checkSameWidth(m.width, offer.width)
	applicants := offer.bits &^ m.bits
	if applicants == 0 {
		return false
	}
	highest := uint64(1) << (63 - bits.LeadingZeros64(applicants))
	*m = NewMark(m.bits|highest, max(m.importance, offer.importance), m.width)
	return true
}

// Makes every unmarked bit of the target unknown.
func (m Mark) ForceDecay(target Combined) Combined {
	checkSameWidth(m.width, target.Width())
	forced := ^m.bits & Mask(m.width)
	if forced == 0 {
		return target
	}
	tv := target.tv
	return NewCombinedFromThreeValued(NewThreeValued(tv.zeros|forced, tv.ones|forced, tv.width))
}

// The first value of the enumeration: marked bits are zero, the rest unknown.
func (m Mark) ProtoFirst() Combined {
	return NewCombinedFromThreeValued(NewThreeValuedKnownBits(0, m.bits, m.width))
}

// Advances the value of the marked bits as a binary counter.
// On overflow the proto is reset to the first value and false is returned.
func (m Mark) ProtoIncrement(proto *Combined) bool {
	if m.bits == 0 {
		return false
	}
	current := proto.tv.UMin()
	considered := m.bits
	for considered != 0 {
		lowest := considered & -considered
		if current&lowest == 0 {
			current |= lowest
			*proto = NewCombinedFromThreeValued(NewThreeValuedKnownBits(current, m.bits, m.width))
			return true
		}
		current &^= lowest
		considered &^= lowest
	}
	*proto = m.ProtoFirst()
	return false
}

func (m Mark) String() string {
	if m.bits == 0 {
		return "unmarked"
	}
	return fmt.Sprintf("%#x(%v)", m.bits, m.importance)
}

// Every operand bit that is unknown may be responsible for a marked result.
func markAll(operand Combined, later Mark) Mark {
	if !later.IsMarked() {
		return NewUnmarked(operand.Width())
	}
	return NewMarked(operand.Width(), later.importance).Limit(operand)
}

// Backward mark of negation and other operations without bitwise structure.
func MarkUnary(a Combined, later Mark) Mark {
	return markAll(a, later)
}

// Backward mark of addition, subtraction, multiplication, division, remainder and comparisons.
func MarkArith(a, b Combined, later Mark) (Mark, Mark) {
	return markAll(a, later), markAll(b, later)
}

// Backward mark of not.
func MarkNot(a Combined, later Mark) Mark {
	return later.Limit(a)
}

// Backward mark of and, or and xor: each result bit depends on the same operand bits.
func MarkBitwise(a, b Combined, later Mark) (Mark, Mark) {
	return later.Limit(a), later.Limit(b)
}

// Backward mark of zero extension or truncation from a to the width of later.
func MarkUext(a Combined, later Mark) Mark {
	return NewMark(later.bits, later.importance, a.Width()).Limit(a)
}

// Backward mark of sign extension or truncation from a to the width of later.
// Marks on the added high bits go to the sign bit.
func MarkSext(a Combined, later Mark) Mark {
	marked := later.bits & Mask(a.Width())
	if later.width > a.Width() && later.bits&^Mask(a.Width()) != 0 {
		marked |= signBit(a.Width())
	}
	return NewMark(marked, later.importance, a.Width()).Limit(a)
}

func MarkShl(a, amount Combined, later Mark) (Mark, Mark) {
	return markShift(a, amount, later, func(mark uint64, k uint32) uint64 {
		return mark >> k
	})
}

func MarkLshr(a, amount Combined, later Mark) (Mark, Mark) {
	return markShift(a, amount, later, func(mark uint64, k uint32) uint64 {
		return mark << k
	})
}

func MarkAshr(a, amount Combined, later Mark) (Mark, Mark) {
	width := a.Width()
	return markShift(a, amount, later, func(mark uint64, k uint32) uint64 {
		shifted := (mark << k) & Mask(width)
		// bits shifted in from the sign bit carry its mark
		if shifted>>k != mark {
			shifted |= signBit(width)
		}
		return shifted
	})
}

// Shifts the later mark back by every possible amount below the width.
// The amount is marked in full.
func markShift(a, amount Combined, later Mark, back func(mark uint64, k uint32) uint64) (Mark, Mark) {
	width := a.Width()
	if !later.IsMarked() {
		return NewUnmarked(width), NewUnmarked(width)
	}
	if width == 0 {
		return NewUnmarked(width), NewUnmarked(width)
	}
	tv := amount.ThreeValued()
	var earlier uint64
	last := min(tv.UMax(), uint64(width-1))
	for k := tv.UMin(); k <= last; k++ {
		if amount.ContainsConcrete(NewConcrete(k, width)) {
			earlier |= back(later.bits, uint32(k)) & Mask(width)
		}
	}
	return NewMark(earlier, later.importance, width).Limit(a), markAll(amount, later)
}
