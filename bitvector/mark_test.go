package bitvector

import "testing"

func TestMarkProtoEnumeration(t *testing.T) {
	tests := []struct {
		marked uint64
		width  uint32
	}{
		{0, 4},
		{0b1, 4},
		{0b1010, 4},
		{0b1111, 4},
		{0b10000001, 8},
	}
	for _, test := range tests {
		mark := NewMark(test.marked, LowestImportance, test.width)
		proto := mark.ProtoFirst()
		first := proto
		seen := map[uint64]bool{}
		for {
			tv := proto.ThreeValued()
			if tv.KnownBits() != test.marked {
				t.Errorf("Proto %v should know exactly the marked bits %#x", proto, test.marked)
			}
			if seen[tv.UMin()] {
				t.Errorf("Proto value %#x was produced twice for mark %v", tv.UMin(), mark)
			}
			seen[tv.UMin()] = true
			if !mark.ProtoIncrement(&proto) {
				break
			}
		}
		expected := 1 << popCount(test.marked)
		if len(seen) != expected {
			t.Errorf("Mark %v should enumerate %v protos. Got: %v", mark, expected, len(seen))
		}
		if proto != first {
			t.Errorf("After overflow the proto should be reset to %v. Got: %v", first, proto)
		}
	}
}

func popCount(value uint64) int {
	count := 0
	for value != 0 {
		value &= value - 1
		count++
	}
	return count
}

func TestMarkApplyRefin(t *testing.T) {
	mark := NewMark(0b0001, 2, 4)
	if !mark.ApplyRefin(NewMark(0b0111, 3, 4)) {
		t.Fatalf("Offering new bits should refine the mark")
	}
	if mark.Bits() != 0b0101 {
		t.Errorf("Only the highest new bit should be marked. Got: %#b", mark.Bits())
	}
	if mark.Importance() != 3 {
		t.Errorf("The importance should be raised to the offer's. Got: %v", mark.Importance())
	}
	if mark.ApplyRefin(NewMark(0b0100, 5, 4)) {
		t.Errorf("Offering only marked bits should not refine the mark")
	}
	if mark.ApplyRefin(NewUnmarked(4)) {
		t.Errorf("Offering nothing should not refine the mark")
	}
}

func TestMarkJoinAndLimit(t *testing.T) {
	joined := NewMark(0b0011, 1, 4).Join(NewMark(0b1000, 4, 4))
	if joined.Bits() != 0b1011 || joined.Importance() != 4 {
		t.Errorf("Join should unite the bits and keep the larger importance. Got: %v", joined)
	}

	value := NewCombinedFromThreeValued(NewThreeValuedKnownBits(0b0001, 0b0011, 4))
	limited := joined.Limit(value)
	if limited.Bits() != 0b1000 {
		t.Errorf("Limit should keep only marks on unknown bits. Got: %#b", limited.Bits())
	}
	if NewMark(0b0011, 2, 4).Limit(value).IsMarked() {
		t.Errorf("Marks on known bits should be removed")
	}
}

func TestMarkForceDecay(t *testing.T) {
	value := NewCombinedConcrete(NewConcrete(0b1010, 4))
	decayed := NewMark(0b1100, 1, 4).ForceDecay(value)
	tv := decayed.ThreeValued()
	if tv.KnownBits() != 0b1100 || tv.UMin()&0b1100 != 0b1000 {
		t.Errorf("Only the marked bits should stay known. Got: %v", decayed)
	}
	if kept := NewMarked(4, 1).ForceDecay(value); kept != value {
		t.Errorf("A fully marked value should not decay. Got: %v", kept)
	}
}

func TestMarkBackward(t *testing.T) {
	full := NewCombinedFull(8)
	later := NewMark(0b1, 2, 8)

	a, b := MarkArith(full, full, later)
	if a.Bits() != 0xff || b.Bits() != 0xff || a.Importance() != 2 {
		t.Errorf("Arithmetic should mark every operand bit. Got: %v, %v", a, b)
	}
	a, b = MarkArith(full, full, NewUnmarked(8))
	if a.IsMarked() || b.IsMarked() {
		t.Errorf("An unmarked result should not mark the operands. Got: %v, %v", a, b)
	}

	a, b = MarkBitwise(full, NewCombinedConcrete(NewConcrete(3, 8)), NewMark(0b11, 1, 8))
	if a.Bits() != 0b11 || b.IsMarked() {
		t.Errorf("Bitwise operations should mark the same unknown bits. Got: %v, %v", a, b)
	}

	narrow := NewCombinedFull(4)
	if mark := MarkUext(narrow, NewMark(0xf0|0b10, 1, 8)); mark.Bits() != 0b10 {
		t.Errorf("Zero extension should drop the marks on added bits. Got: %v", mark)
	}
	if mark := MarkSext(narrow, NewMark(0xf0, 1, 8)); mark.Bits() != 0b1000 {
		t.Errorf("Sign extension should move the marks on added bits to the sign bit. Got: %v", mark)
	}

	amount := NewCombinedConcrete(NewConcrete(2, 8))
	value, amountMark := MarkShl(full, amount, NewMark(0b100, 1, 8))
	if value.Bits() != 0b1 || amountMark.IsMarked() {
		t.Errorf("Shifting left by two should move the mark two bits down. Got: %v, %v", value, amountMark)
	}
	value, _ = MarkLshr(full, amount, NewMark(0b1, 1, 8))
	if value.Bits() != 0b100 {
		t.Errorf("Shifting right by two should move the mark two bits up. Got: %v", value)
	}
	value, _ = MarkAshr(full, amount, NewMark(0b11000000, 1, 8))
	if value.Bits() != 0b10000000 {
		t.Errorf("Bits shifted in by an arithmetic shift should mark the sign bit. Got: %v", value)
	}
}
