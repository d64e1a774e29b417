package bitvector

import (
	"fmt"
	"math/bits"
)

// An unsigned interval [min, max].
type interval struct {
	min, max uint64
}

func (i interval) hull(o interval) interval {
	return interval{min: min(i.min, o.min), max: max(i.max, o.max)}
}

func (i interval) intersect(o interval) (interval, bool) {
	result := interval{min: max(i.min, o.min), max: min(i.max, o.max)}
	return result, result.min <= result.max
}

func (i interval) contains(o interval) bool {
	return i.min <= o.min && o.max <= i.max
}

// A set of bit-vectors described by one unsigned interval in each signed half-plane.
//
// The near half holds the non-negative values, the far half the negative ones.
// If one half holds no value, both intervals equal the populated one.
type DualInterval struct {
	near  interval
	far   interval
	width uint32
}

func NewDualIntervalConcrete(c Concrete) DualInterval {
	i := interval{min: c.value, max: c.value}
	return DualInterval{near: i, far: i, width: c.width}
}

func NewDualIntervalFull(width uint32) DualInterval {
	checkWidth(width)
	if width == 0 {
		return NewDualIntervalConcrete(NewConcrete(0, 0))
	}
	half := signBit(width)
	return DualInterval{
		near:  interval{min: 0, max: half - 1},
		far:   interval{min: half, max: Mask(width)},
		width: width,
	}
}

// Creates a dual interval from the populated halves. Panics if neither is populated.
func dualIntervalFromHalves(near, far *interval, width uint32) DualInterval {
	switch {
	case near != nil && far != nil:
		return DualInterval{near: *near, far: *far, width: width}
	case near != nil:
		return DualInterval{near: *near, far: *near, width: width}
	case far != nil:
		return DualInterval{near: *far, far: *far, width: width}
	}
	panic("bitvector: dual interval with neither half populated")
}

// Creates the smallest dual interval containing every unsigned interval given.
func dualIntervalFromUnsigned(width uint32, intervals ...interval) DualInterval {
	var near, far *interval
	add := func(target **interval, i interval) {
		if *target == nil {
			*target = &i
			return
		}
		hull := (*target).hull(i)
		*target = &hull
	}
	for _, i := range intervals {
		n, f := splitUnsigned(i, width)
		if n != nil {
			add(&near, *n)
		}
		if f != nil {
			add(&far, *f)
		}
	}
	return dualIntervalFromHalves(near, far, width)
}

// Splits an unsigned interval into its near and far parts.
func splitUnsigned(i interval, width uint32) (near, far *interval) {
	if width == 0 {
		return &interval{}, nil
	}
	half := signBit(width)
	if i.min < half {
		near = &interval{min: i.min, max: min(i.max, half-1)}
	}
	if i.max >= half {
		far = &interval{min: max(i.min, half), max: i.max}
	}
	return near, far
}

// Converts a wrapping interval of span+1 values starting at start into unsigned intervals.
// Returns false if the span covers every value.
func wrappingToUnsigned(start, span uint64, spanOverflow bool, width uint32) ([]interval, bool) {
	mask := Mask(width)
	if spanOverflow || span >= mask {
		return nil, false
	}
	start &= mask
	end := (start + span) & mask
	if start <= end {
		return []interval{{min: start, max: end}}, true
	}
	return []interval{{min: start, max: mask}, {min: 0, max: end}}, true
}

func (d DualInterval) halves() (near interval, hasNear bool, far interval, hasFar bool) {
	if d.width == 0 {
		return d.near, true, interval{}, false
	}
	half := signBit(d.width)
	return d.near, d.near.min < half, d.far, d.far.max >= half
}

func (d DualInterval) populated() []interval {
	near, hasNear, far, hasFar := d.halves()
	out := make([]interval, 0, 2)
	if hasNear {
		out = append(out, near)
	}
	if hasFar {
		out = append(out, far)
	}
	return out
}

func (d DualInterval) Width() uint32 {
	return d.width
}

func (d DualInterval) UMin() uint64 {
	near, hasNear, far, _ := d.halves()
	if hasNear {
		return near.min
	}
	return far.min
}

func (d DualInterval) UMax() uint64 {
	near, _, far, hasFar := d.halves()
	if hasFar {
		return far.max
	}
	return near.max
}

func (d DualInterval) SMin() int64 {
	near, _, far, hasFar := d.halves()
	if hasFar {
		return NewConcrete(far.min, d.width).Signed()
	}
	return NewConcrete(near.min, d.width).Signed()
}

func (d DualInterval) SMax() int64 {
	near, hasNear, far, _ := d.halves()
	if hasNear {
		return NewConcrete(near.max, d.width).Signed()
	}
	return NewConcrete(far.max, d.width).Signed()
}

func (d DualInterval) ConcreteValue() (Concrete, bool) {
	populated := d.populated()
	if len(populated) != 1 || populated[0].min != populated[0].max {
		return Concrete{}, false
	}
	return Concrete{value: populated[0].min, width: d.width}, true
}

func (d DualInterval) ContainsConcrete(c Concrete) bool {
	checkSameWidth(d.width, c.width)
	for _, i := range d.populated() {
		if i.min <= c.value && c.value <= i.max {
			return true
		}
	}
	return false
}

func (d DualInterval) Contains(o DualInterval) bool {
	checkSameWidth(d.width, o.width)
	near, hasNear, far, hasFar := d.halves()
	oNear, oHasNear, oFar, oHasFar := o.halves()
	if oHasNear && !(hasNear && near.contains(oNear)) {
		return false
	}
	if oHasFar && !(hasFar && far.contains(oFar)) {
		return false
	}
	return true
}

func (d DualInterval) Join(o DualInterval) DualInterval {
	checkSameWidth(d.width, o.width)
	return dualIntervalFromUnsigned(d.width, append(d.populated(), o.populated()...)...)
}

func (d DualInterval) Meet(o DualInterval) (DualInterval, bool) {
	checkSameWidth(d.width, o.width)
	near, hasNear, far, hasFar := d.halves()
	oNear, oHasNear, oFar, oHasFar := o.halves()
	var resultNear, resultFar *interval
	if hasNear && oHasNear {
		if i, ok := near.intersect(oNear); ok {
			resultNear = &i
		}
	}
	if hasFar && oHasFar {
		if i, ok := far.intersect(oFar); ok {
			resultFar = &i
		}
	}
	if resultNear == nil && resultFar == nil {
		return DualInterval{}, false
	}
	return dualIntervalFromHalves(resultNear, resultFar, d.width), true
}

// Converts to the smallest three-valued bit-vector containing the same values.
func (d DualInterval) ThreeValued() ThreeValued {
	var result *ThreeValued
	for _, i := range d.populated() {
		value := threeValuedFromInterval(i.min, i.max, d.width)
		if result == nil {
			result = &value
		} else {
			joined := result.Join(value)
			result = &joined
		}
	}
	return *result
}

// Converts a three-valued bit-vector to the smallest dual interval containing the same values.
func dualIntervalFromThreeValued(tv ThreeValued) DualInterval {
	if tv.width == 0 {
		return NewDualIntervalConcrete(NewConcrete(0, 0))
	}
	sign := signBit(tv.width)
	var near, far *interval
	if tv.zeros&sign != 0 {
		near = &interval{min: tv.UMin() &^ sign, max: tv.UMax() &^ sign}
	}
	if tv.ones&sign != 0 {
		far = &interval{min: tv.UMin() | sign, max: tv.UMax() | sign}
	}
	return dualIntervalFromHalves(near, far, tv.width)
}

// Applies a wrapping operation to every pair of populated halves and joins the results.
func (d DualInterval) pairwise(o DualInterval, op func(a, b interval) ([]interval, bool)) DualInterval {
	checkSameWidth(d.width, o.width)
	var results []interval
	for _, a := range d.populated() {
		for _, b := range o.populated() {
			intervals, ok := op(a, b)
			if !ok {
				return NewDualIntervalFull(d.width)
			}
			results = append(results, intervals...)
		}
	}
	return dualIntervalFromUnsigned(d.width, results...)
}

func (d DualInterval) Add(o DualInterval) DualInterval {
	return d.pairwise(o, func(a, b interval) ([]interval, bool) {
		span, carry := bits.Add64(a.max-a.min, b.max-b.min, 0)
		return wrappingToUnsigned(a.min+b.min, span, carry != 0, d.width)
	})
}

func (d DualInterval) Sub(o DualInterval) DualInterval {
	return d.pairwise(o, func(a, b interval) ([]interval, bool) {
		span, carry := bits.Add64(a.max-a.min, b.max-b.min, 0)
		return wrappingToUnsigned(a.min-b.max, span, carry != 0, d.width)
	})
}

func (d DualInterval) Mul(o DualInterval) DualInterval {
	return d.pairwise(o, func(a, b interval) ([]interval, bool) {
		loHi, loLo := bits.Mul64(a.min, b.min)
		hiHi, hiLo := bits.Mul64(a.max, b.max)
		span, borrow := bits.Sub64(hiLo, loLo, 0)
		spanHi := hiHi - loHi - borrow
		return wrappingToUnsigned(loLo, span, spanHi != 0, d.width)
	})
}

func (d DualInterval) Neg() DualInterval {
	return NewDualIntervalConcrete(NewConcrete(0, d.width)).Sub(d)
}

func (d DualInterval) Not() DualInterval {
	mask := Mask(d.width)
	var out []interval
	for _, i := range d.populated() {
		out = append(out, interval{min: ^i.max & mask, max: ^i.min & mask})
	}
	return dualIntervalFromUnsigned(d.width, out...)
}

func (d DualInterval) And(o DualInterval) DualInterval {
	return dualIntervalFromThreeValued(d.ThreeValued().And(o.ThreeValued()))
}

func (d DualInterval) Or(o DualInterval) DualInterval {
	return dualIntervalFromThreeValued(d.ThreeValued().Or(o.ThreeValued()))
}

func (d DualInterval) Xor(o DualInterval) DualInterval {
	return dualIntervalFromThreeValued(d.ThreeValued().Xor(o.ThreeValued()))
}

func (d DualInterval) Shl(amount DualInterval) DualInterval {
	return dualIntervalFromThreeValued(d.ThreeValued().Shl(amount.ThreeValued()))
}

func (d DualInterval) Lshr(amount DualInterval) DualInterval {
	return dualIntervalFromThreeValued(d.ThreeValued().Lshr(amount.ThreeValued()))
}

func (d DualInterval) Ashr(amount DualInterval) DualInterval {
	return dualIntervalFromThreeValued(d.ThreeValued().Ashr(amount.ThreeValued()))
}

func (d DualInterval) Uext(width uint32) DualInterval {
	checkWidth(width)
	if width >= d.width {
		return dualIntervalFromUnsigned(width, d.populated()...)
	}
	return d.truncate(width)
}

func (d DualInterval) Sext(width uint32) DualInterval {
	checkWidth(width)
	if width < d.width {
		return d.truncate(width)
	}
	near, hasNear, far, hasFar := d.halves()
	var out []interval
	if hasNear {
		out = append(out, near)
	}
	if hasFar {
		added := Mask(width) &^ Mask(d.width)
		out = append(out, interval{min: far.min | added, max: far.max | added})
	}
	return dualIntervalFromUnsigned(width, out...)
}

func (d DualInterval) truncate(width uint32) DualInterval {
	var out []interval
	for _, i := range d.populated() {
		intervals, ok := wrappingToUnsigned(i.min, i.max-i.min, false, width)
		if !ok {
			return NewDualIntervalFull(width)
		}
		out = append(out, intervals...)
	}
	return dualIntervalFromUnsigned(width, out...)
}

func dualIntervalBool(canBeFalse, canBeTrue bool) DualInterval {
	switch {
	case canBeFalse && canBeTrue:
		return NewDualIntervalFull(1)
	case canBeTrue:
		return NewDualIntervalConcrete(NewConcrete(1, 1))
	case canBeFalse:
		return NewDualIntervalConcrete(NewConcrete(0, 1))
	}
	panic("bitvector: boolean that is neither false nor true")
}

func (d DualInterval) Eq(o DualInterval) DualInterval {
	_, canBeSame := d.Meet(o)
	dv, dConcrete := d.ConcreteValue()
	ov, oConcrete := o.ConcreteValue()
	canBeDifferent := !(dConcrete && oConcrete && dv == ov)
	return dualIntervalBool(canBeDifferent, canBeSame)
}

func (d DualInterval) Ne(o DualInterval) DualInterval {
	return d.Eq(o).Not()
}

func (d DualInterval) Ult(o DualInterval) DualInterval {
	checkSameWidth(d.width, o.width)
	return dualIntervalBool(d.UMax() >= o.UMin(), d.UMin() < o.UMax())
}

func (d DualInterval) Ule(o DualInterval) DualInterval {
	checkSameWidth(d.width, o.width)
	return dualIntervalBool(d.UMax() > o.UMin(), d.UMin() <= o.UMax())
}

func (d DualInterval) Slt(o DualInterval) DualInterval {
	checkSameWidth(d.width, o.width)
	return dualIntervalBool(d.SMax() >= o.SMin(), d.SMin() < o.SMax())
}

func (d DualInterval) Sle(o DualInterval) DualInterval {
	checkSameWidth(d.width, o.width)
	return dualIntervalBool(d.SMax() > o.SMin(), d.SMin() <= o.SMax())
}

func (d DualInterval) Udiv(o DualInterval) PanicResult[DualInterval] {
	checkSameWidth(d.width, o.width)
	minResult, _ := NewConcrete(d.UMin(), d.width).Udiv(NewConcrete(o.UMax(), o.width))
	maxResult, _ := NewConcrete(d.UMax(), d.width).Udiv(NewConcrete(o.UMin(), o.width))
	return PanicResult[DualInterval]{
		Panic:  divisionPanic(DualIntervalDomain, o, PanicDivByZero),
		Result: dualIntervalFromUnsigned(d.width, interval{min: minResult.value, max: maxResult.value}),
	}
}

func (d DualInterval) Urem(o DualInterval) PanicResult[DualInterval] {
	checkSameWidth(d.width, o.width)
	panicValue := divisionPanic(DualIntervalDomain, o, PanicRemByZero)

	dividendMin := NewConcrete(d.UMin(), d.width)
	dividendMax := NewConcrete(d.UMax(), d.width)
	divisorMin := NewConcrete(o.UMin(), o.width)
	divisorMax := NewConcrete(o.UMax(), o.width)
	minQuotient, _ := dividendMin.Udiv(divisorMax)
	maxQuotient, _ := dividendMax.Udiv(divisorMin)
	if minQuotient == maxQuotient {
		minResult, _ := dividendMin.Urem(divisorMax)
		maxResult, _ := dividendMax.Urem(divisorMin)
		return PanicResult[DualInterval]{
			Panic:  panicValue,
			Result: dualIntervalFromUnsigned(d.width, interval{min: minResult.value, max: maxResult.value}),
		}
	}
	// the remainder never exceeds the dividend, nor the divisor if that is nonzero
	bound := d.UMax()
	if o.UMin() > 0 {
		bound = min(bound, o.UMax()-1)
	}
	return PanicResult[DualInterval]{
		Panic:  panicValue,
		Result: dualIntervalFromUnsigned(d.width, interval{min: 0, max: bound}),
	}
}

func (d DualInterval) Sdiv(o DualInterval) PanicResult[DualInterval] {
	checkSameWidth(d.width, o.width)
	return PanicResult[DualInterval]{
		Panic:  divisionPanic(DualIntervalDomain, o, PanicDivByZero),
		Result: d.concreteOrFull(o, Concrete.Sdiv),
	}
}

func (d DualInterval) Srem(o DualInterval) PanicResult[DualInterval] {
	checkSameWidth(d.width, o.width)
	return PanicResult[DualInterval]{
		Panic:  divisionPanic(DualIntervalDomain, o, PanicRemByZero),
		Result: d.concreteOrFull(o, Concrete.Srem),
	}
}

func (d DualInterval) concreteOrFull(o DualInterval, op func(Concrete, Concrete) (Concrete, uint64)) DualInterval {
	dv, dConcrete := d.ConcreteValue()
	ov, oConcrete := o.ConcreteValue()
	if !dConcrete || !oConcrete {
		return NewDualIntervalFull(d.width)
	}
	result, _ := op(dv, ov)
	return NewDualIntervalConcrete(result)
}

func (d DualInterval) String() string {
	populated := d.populated()
	if len(populated) == 1 {
		return fmt.Sprintf("[%v..%v]", populated[0].min, populated[0].max)
	}
	return fmt.Sprintf("[%v..%v]∪[%v..%v]", populated[0].min, populated[0].max, populated[1].min, populated[1].max)
}
