package bitvector

import "fmt"

// The product of the three-valued and dual-interval domains.
//
// After every operation the components narrow each other, so bounds known to
// one of them are never lost by the other.
type Combined struct {
	tv ThreeValued
	di DualInterval
}

func NewCombinedConcrete(c Concrete) Combined {
	return Combined{tv: NewThreeValuedConcrete(c), di: NewDualIntervalConcrete(c)}
}

func NewCombinedFull(width uint32) Combined {
	return Combined{tv: NewThreeValuedFull(width), di: NewDualIntervalFull(width)}
}

func NewCombinedFromThreeValued(tv ThreeValued) Combined {
	return combine(tv, NewDualIntervalFull(tv.width))
}

func NewCombinedFromDualInterval(di DualInterval) Combined {
	return combine(NewThreeValuedFull(di.width), di)
}

// Restricts each half of the dual interval by the three-valued bounds of that half,
// then restricts the three-valued bit-vector to the resulting unsigned hull.
// Panics if the components share no value.
func combine(tv ThreeValued, di DualInterval) Combined {
	result, ok := tryCombine(tv, di)
	if !ok {
		panic(fmt.Sprintf("bitvector: combining %v with %v leaves neither half populated", tv, di))
	}
	return result
}

func tryCombine(tv ThreeValued, di DualInterval) (Combined, bool) {
	checkSameWidth(tv.width, di.width)
	if tv.width == 0 {
		return Combined{tv: tv, di: di}, true
	}

	fromTv := dualIntervalFromThreeValued(tv)
	tvNear, tvHasNear, tvFar, tvHasFar := fromTv.halves()
	diNear, diHasNear, diFar, diHasFar := di.halves()

	// each half keeps only the part of the interval between members of both
	tighten := func(tvHalf, diHalf interval) *interval {
		i, ok := tvHalf.intersect(diHalf)
		if !ok {
			return nil
		}
		lo, ok := tv.nextMember(i.min)
		if !ok {
			return nil
		}
		hi, ok := tv.prevMember(i.max)
		if !ok || lo > hi {
			return nil
		}
		return &interval{min: lo, max: hi}
	}
	var near, far *interval
	if tvHasNear && diHasNear {
		near = tighten(tvNear, diNear)
	}
	if tvHasFar && diHasFar {
		far = tighten(tvFar, diFar)
	}
	if near == nil && far == nil {
		return Combined{}, false
	}
	narrowed := dualIntervalFromHalves(near, far, tv.width)

	bounds := threeValuedFromInterval(narrowed.UMin(), narrowed.UMax(), tv.width)
	narrowedTv, ok := tv.Meet(bounds)
	if !ok {
		return Combined{}, false
	}
	return Combined{tv: narrowedTv, di: narrowed}, true
}

func combineBool(tv ThreeValued, di DualInterval) Combined {
	canBeFalse := tv.CanBeFalse() && di.ContainsConcrete(NewConcrete(0, 1))
	canBeTrue := tv.CanBeTrue() && di.ContainsConcrete(NewConcrete(1, 1))
	return Combined{tv: threeValuedBool(canBeFalse, canBeTrue), di: dualIntervalBool(canBeFalse, canBeTrue)}
}

func combinePanicResult(tv PanicResult[ThreeValued], di PanicResult[DualInterval]) PanicResult[Combined] {
	panicValue, ok := tryCombine(tv.Panic, di.Panic)
	if !ok {
		panic("bitvector: combined panic meet is empty")
	}
	return PanicResult[Combined]{
		Panic:  panicValue,
		Result: combine(tv.Result, di.Result),
	}
}

func (c Combined) ThreeValued() ThreeValued {
	return c.tv
}

func (c Combined) DualInterval() DualInterval {
	return c.di
}

func (c Combined) Width() uint32 {
	return c.tv.width
}

func (c Combined) Join(o Combined) Combined {
	return combine(c.tv.Join(o.tv), c.di.Join(o.di))
}

func (c Combined) Meet(o Combined) (Combined, bool) {
	tv, ok := c.tv.Meet(o.tv)
	if !ok {
		return Combined{}, false
	}
	di, ok := c.di.Meet(o.di)
	if !ok {
		return Combined{}, false
	}
	// the components may still disagree on every value
	return tryCombine(tv, di)
}

func (c Combined) Contains(o Combined) bool {
	return c.tv.Contains(o.tv) && c.di.Contains(o.di)
}

func (c Combined) ContainsConcrete(value Concrete) bool {
	return c.tv.ContainsConcrete(value) && c.di.ContainsConcrete(value)
}

func (c Combined) ConcreteValue() (Concrete, bool) {
	if value, ok := c.tv.ConcreteValue(); ok {
		return value, true
	}
	return c.di.ConcreteValue()
}

func (c Combined) UMin() uint64 {
	return max(c.tv.UMin(), c.di.UMin())
}

func (c Combined) UMax() uint64 {
	return min(c.tv.UMax(), c.di.UMax())
}

func (c Combined) SMin() int64 {
	return max(c.tv.SMin(), c.di.SMin())
}

func (c Combined) SMax() int64 {
	return min(c.tv.SMax(), c.di.SMax())
}

func (c Combined) CanBeTrue() bool {
	return c.tv.CanBeTrue()
}

func (c Combined) CanBeFalse() bool {
	return c.tv.CanBeFalse()
}

func (c Combined) Add(o Combined) Combined { return combine(c.tv.Add(o.tv), c.di.Add(o.di)) }
func (c Combined) Sub(o Combined) Combined { return combine(c.tv.Sub(o.tv), c.di.Sub(o.di)) }
func (c Combined) Mul(o Combined) Combined { return combine(c.tv.Mul(o.tv), c.di.Mul(o.di)) }
func (c Combined) Neg() Combined           { return combine(c.tv.Neg(), c.di.Neg()) }
func (c Combined) And(o Combined) Combined { return combine(c.tv.And(o.tv), c.di.And(o.di)) }
func (c Combined) Or(o Combined) Combined  { return combine(c.tv.Or(o.tv), c.di.Or(o.di)) }
func (c Combined) Xor(o Combined) Combined { return combine(c.tv.Xor(o.tv), c.di.Xor(o.di)) }
func (c Combined) Not() Combined           { return combine(c.tv.Not(), c.di.Not()) }

func (c Combined) Shl(o Combined) Combined  { return combine(c.tv.Shl(o.tv), c.di.Shl(o.di)) }
func (c Combined) Lshr(o Combined) Combined { return combine(c.tv.Lshr(o.tv), c.di.Lshr(o.di)) }
func (c Combined) Ashr(o Combined) Combined { return combine(c.tv.Ashr(o.tv), c.di.Ashr(o.di)) }

func (c Combined) Uext(width uint32) Combined { return combine(c.tv.Uext(width), c.di.Uext(width)) }
func (c Combined) Sext(width uint32) Combined { return combine(c.tv.Sext(width), c.di.Sext(width)) }

func (c Combined) Eq(o Combined) Combined  { return combineBool(c.tv.Eq(o.tv), c.di.Eq(o.di)) }
func (c Combined) Ne(o Combined) Combined  { return combineBool(c.tv.Ne(o.tv), c.di.Ne(o.di)) }
func (c Combined) Ult(o Combined) Combined { return combineBool(c.tv.Ult(o.tv), c.di.Ult(o.di)) }
func (c Combined) Ule(o Combined) Combined { return combineBool(c.tv.Ule(o.tv), c.di.Ule(o.di)) }
func (c Combined) Slt(o Combined) Combined { return combineBool(c.tv.Slt(o.tv), c.di.Slt(o.di)) }
func (c Combined) Sle(o Combined) Combined { return combineBool(c.tv.Sle(o.tv), c.di.Sle(o.di)) }

func (c Combined) Udiv(o Combined) PanicResult[Combined] {
	return combinePanicResult(c.tv.Udiv(o.tv), c.di.Udiv(o.di))
}

func (c Combined) Sdiv(o Combined) PanicResult[Combined] {
	return combinePanicResult(c.tv.Sdiv(o.tv), c.di.Sdiv(o.di))
}

func (c Combined) Urem(o Combined) PanicResult[Combined] {
	return combinePanicResult(c.tv.Urem(o.tv), c.di.Urem(o.di))
}

func (c Combined) Srem(o Combined) PanicResult[Combined] {
	return combinePanicResult(c.tv.Srem(o.tv), c.di.Srem(o.di))
}

func (c Combined) String() string {
	if value, ok := c.ConcreteValue(); ok {
		return fmt.Sprint(value.Unsigned())
	}
	return fmt.Sprintf("%v%v", c.tv, c.di)
}
