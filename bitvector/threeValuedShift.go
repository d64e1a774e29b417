package bitvector

func (a ThreeValued) Shl(amount ThreeValued) ThreeValued {
	return a.shift(amount, func(k uint32) ThreeValued {
		mask := Mask(a.width)
		return ThreeValued{
			zeros: (a.zeros<<k | Mask(k)) & mask,
			ones:  (a.ones << k) & mask,
			width: a.width,
		}
	}, NewThreeValuedConcrete(NewConcrete(0, a.width)))
}

func (a ThreeValued) Lshr(amount ThreeValued) ThreeValued {
	return a.shift(amount, func(k uint32) ThreeValued {
		mask := Mask(a.width)
		high := mask &^ (mask >> k)
		return ThreeValued{
			zeros: a.zeros>>k | high,
			ones:  a.ones >> k,
			width: a.width,
		}
	}, NewThreeValuedConcrete(NewConcrete(0, a.width)))
}

func (a ThreeValued) Ashr(amount ThreeValued) ThreeValued {
	mask := Mask(a.width)
	sign := signBit(a.width)
	var signZeros, signOnes uint64
	if a.zeros&sign != 0 {
		signZeros = mask
	}
	if a.ones&sign != 0 {
		signOnes = mask
	}
	overflow := ThreeValued{zeros: signZeros, ones: signOnes, width: a.width}

	return a.shift(amount, func(k uint32) ThreeValued {
		high := mask &^ (mask >> k)
		return ThreeValued{
			zeros: a.zeros>>k | signZeros&high,
			ones:  a.ones>>k | signOnes&high,
			width: a.width,
		}
	}, overflow)
}

// Joins the shifts by every possible amount below the width.
// If the amount can be at least the width, the overflow value is joined as well.
func (a ThreeValued) shift(amount ThreeValued, byConstant func(k uint32) ThreeValued, overflow ThreeValued) ThreeValued {
	checkSameWidth(a.width, amount.width)
	if a.width == 0 {
		return a
	}
	var result *ThreeValued
	join := func(value ThreeValued) {
		if result == nil {
			result = &value
			return
		}
		joined := result.Join(value)
		result = &joined
	}

	last := min(amount.UMax(), uint64(a.width-1))
	for k := amount.UMin(); k <= last; k++ {
		if amount.ContainsConcrete(NewConcrete(k, a.width)) {
			join(byConstant(uint32(k)))
		}
	}
	if amount.UMax() >= uint64(a.width) {
		join(overflow)
	}
	return *result
}
