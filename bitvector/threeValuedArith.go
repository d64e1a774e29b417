package bitvector

import "math/bits"

// Operand pairs with at most this many unknown bits in total are divided exhaustively.
const signedDivisionEnumerationLimit = 12

func (a ThreeValued) Add(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return minmaxCompute(a.width, func(k uint32) (uint64, uint64, uint64, uint64) {
		mod := Mask(k + 1)
		lmin, lmax := a.UMin()&mod, a.UMax()&mod
		rmin, rmax := o.UMin()&mod, o.UMax()&mod
		minSum, minCarry := bits.Add64(lmin, rmin, 0)
		maxSum, maxCarry := bits.Add64(lmax, rmax, 0)
		minHi, minLo := shiftRight128(minCarry, minSum, k)
		maxHi, maxLo := shiftRight128(maxCarry, maxSum, k)
		return minHi, minLo, maxHi, maxLo
	})
}

func (a ThreeValued) Sub(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return minmaxCompute(a.width, func(k uint32) (uint64, uint64, uint64, uint64) {
		mod := Mask(k + 1)
		lmin, lmax := a.UMin()&mod, a.UMax()&mod
		// the right operand is subtracted, so its extremes swap
		rmin, rmax := o.UMax()&mod, o.UMin()&mod
		minDiff, minBorrow := bits.Sub64(lmin, rmin, 0)
		maxDiff, maxBorrow := bits.Sub64(lmax, rmax, 0)
		minHi, minLo := shiftRight128(minBorrow, minDiff, k)
		maxHi, maxLo := shiftRight128(maxBorrow, maxDiff, k)
		return minHi, minLo, maxHi, maxLo
	})
}

func (a ThreeValued) Mul(o ThreeValued) ThreeValued {
	checkSameWidth(a.width, o.width)
	return minmaxCompute(a.width, func(k uint32) (uint64, uint64, uint64, uint64) {
		mod := Mask(k + 1)
		minHi, minLo := bits.Mul64(a.UMin()&mod, o.UMin()&mod)
		maxHi, maxLo := bits.Mul64(a.UMax()&mod, o.UMax()&mod)
		minHi, minLo = shiftRight128(minHi, minLo, k)
		maxHi, maxLo = shiftRight128(maxHi, maxLo, k)
		return minHi, minLo, maxHi, maxLo
	})
}

func (a ThreeValued) Neg() ThreeValued {
	return NewThreeValuedConcrete(NewConcrete(0, a.width)).Sub(a)
}

// Computes each result bit k from the extremes of the operation on the operands taken modulo 2^(k+1),
// shifted right by k. If the extremes are equal, bit k is known.
func minmaxCompute(width uint32, zetaK func(k uint32) (minHi, minLo, maxHi, maxLo uint64)) ThreeValued {
	var zeros, ones uint64
	for k := uint32(0); k < width; k++ {
		minHi, minLo, maxHi, maxLo := zetaK(k)
		bit := uint64(1) << k
		if minHi != maxHi || minLo != maxLo {
			zeros |= bit
			ones |= bit
		} else if minLo&1 == 1 {
			ones |= bit
		} else {
			zeros |= bit
		}
	}
	return NewThreeValued(zeros, ones, width)
}

// The carry or borrow is bit 64 of a 65-bit value.
func shiftRight128(hi, lo uint64, k uint32) (uint64, uint64) {
	if k == 0 {
		return hi, lo
	}
	return hi >> k, lo>>k | hi<<(64-k)
}

func (a ThreeValued) Udiv(o ThreeValued) PanicResult[ThreeValued] {
	checkSameWidth(a.width, o.width)
	minResult, _ := NewConcrete(a.UMin(), a.width).Udiv(NewConcrete(o.UMax(), o.width))
	maxResult, _ := NewConcrete(a.UMax(), a.width).Udiv(NewConcrete(o.UMin(), o.width))
	return PanicResult[ThreeValued]{
		Panic:  divisionPanic(ThreeValuedDomain, o, PanicDivByZero),
		Result: threeValuedFromInterval(minResult.Unsigned(), maxResult.Unsigned(), a.width),
	}
}

func (a ThreeValued) Urem(o ThreeValued) PanicResult[ThreeValued] {
	checkSameWidth(a.width, o.width)
	panicValue := divisionPanic(ThreeValuedDomain, o, PanicRemByZero)

	dividendMin := NewConcrete(a.UMin(), a.width)
	dividendMax := NewConcrete(a.UMax(), a.width)
	divisorMin := NewConcrete(o.UMin(), o.width)
	divisorMax := NewConcrete(o.UMax(), o.width)
	minQuotient, _ := dividendMin.Udiv(divisorMax)
	maxQuotient, _ := dividendMax.Udiv(divisorMin)
	if minQuotient != maxQuotient {
		return PanicResult[ThreeValued]{Panic: panicValue, Result: NewThreeValuedFull(a.width)}
	}

	// with a single quotient the remainder is linear in both operands
	minResult, _ := dividendMin.Urem(divisorMax)
	maxResult, _ := dividendMax.Urem(divisorMin)
	return PanicResult[ThreeValued]{
		Panic:  panicValue,
		Result: threeValuedFromInterval(minResult.Unsigned(), maxResult.Unsigned(), a.width),
	}
}

func (a ThreeValued) Sdiv(o ThreeValued) PanicResult[ThreeValued] {
	checkSameWidth(a.width, o.width)
	return PanicResult[ThreeValued]{
		Panic:  divisionPanic(ThreeValuedDomain, o, PanicDivByZero),
		Result: a.enumerateSigned(o, func(x, y Concrete) Concrete { r, _ := x.Sdiv(y); return r }),
	}
}

func (a ThreeValued) Srem(o ThreeValued) PanicResult[ThreeValued] {
	checkSameWidth(a.width, o.width)
	return PanicResult[ThreeValued]{
		Panic:  divisionPanic(ThreeValuedDomain, o, PanicRemByZero),
		Result: a.enumerateSigned(o, func(x, y Concrete) Concrete { r, _ := x.Srem(y); return r }),
	}
}

// Joins op over every concrete operand pair if there are few enough of them.
// Otherwise the result is fully unknown.
func (a ThreeValued) enumerateSigned(o ThreeValued, op func(x, y Concrete) Concrete) ThreeValued {
	unknown := bits.OnesCount64(a.UnknownBits()) + bits.OnesCount64(o.UnknownBits())
	if unknown > signedDivisionEnumerationLimit {
		return NewThreeValuedFull(a.width)
	}
	var result *ThreeValued
	a.forEachConcrete(func(x Concrete) {
		o.forEachConcrete(func(y Concrete) {
			value := NewThreeValuedConcrete(op(x, y))
			if result == nil {
				result = &value
			} else {
				joined := result.Join(value)
				result = &joined
			}
		})
	})
	return *result
}

// Calls f with every member in increasing order of the unknown bits.
func (a ThreeValued) forEachConcrete(f func(Concrete)) {
	unknown := a.UnknownBits()
	base := a.UMin()
	// iterate over the subsets of the unknown bits
	subset := uint64(0)
	for {
		f(NewConcrete(base|subset, a.width))
		if subset == unknown {
			return
		}
		subset = (subset - unknown) & unknown
	}
}
