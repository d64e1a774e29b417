package property

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomck/bitvector"
	"gomck/logic"
	"gomck/machine"
)

func index(i uint64) *uint64 {
	return &i
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Property
		text     string
	}{
		{
			input: "AG![a == 0] && !(EF![as_signed(b[32]) != 3])",
			expected: And{
				A: Globally{Universal: true, Inner: Atomic{Name: "a", Comparison: Eq, Constant: 0}},
				B: Negation{Inner: Finally{Inner: Atomic{Name: "b", Index: index(32), Signedness: machine.Signed, Comparison: Ne, Constant: 3}}},
			},
			text: "AG![a == 0] && !(EF![as_signed(b[32]) != 3])",
		},
		{
			input: "EU![as_signed(prOpeRty) > 37, ((ALREADY_UNSIGNED <= 0x5E)) || (!(abc >= -3))]",
			expected: Until{
				Hold: Atomic{Name: "prOpeRty", Signedness: machine.Signed, Comparison: Gt, Constant: 37},
				Until: Or{
					A: Atomic{Name: "ALREADY_UNSIGNED", Comparison: Le, Constant: 0x5E},
					B: Negation{Inner: Atomic{Name: "abc", Comparison: Ge, Constant: -3}},
				},
			},
			text: "EU![as_signed(prOpeRty) > 37, ALREADY_UNSIGNED <= 94 || !(abc >= -3)]",
		},
		{
			input:    "lfp![Z, x == 1 || EX![Z]]",
			expected: FixedPoint{Variable: "Z", Inner: Or{A: Atomic{Name: "x", Comparison: Eq, Constant: 1}, B: Next{Inner: Variable{Name: "Z"}}}},
			text:     "lfp![Z, x == 1 || EX![Z]]",
		},
		{
			input:    "AR![true, x!=1] && y < 2 && false",
			expected: And{A: And{A: Release{Universal: true, Releaser: Const{Value: true}, Releasee: Atomic{Name: "x", Comparison: Ne, Constant: 1}}, B: Atomic{Name: "y", Comparison: Lt, Constant: 2}}, B: Const{Value: false}},
			text:     "(AR![true, x != 1] && y < 2) && false",
		},
	}
	for _, test := range tests {
		parsed, err := Parse(test.input)
		require.NoError(t, err, test.input)
		if diff := cmp.Diff(test.expected, parsed); diff != "" {
			t.Errorf("Parsing %q gave an unexpected property (-want +got):\n%v", test.input, diff)
		}
		if parsed.String() != test.text {
			t.Errorf("Expected %q to be written as %q. Got: %q", test.input, test.text, parsed.String())
		}
		reparsed, err := Parse(parsed.String())
		require.NoError(t, err)
		assert.True(t, Equal(parsed, reparsed), "the written property should parse to itself")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  ParseErrorKind
	}{
		{"property > 3 token_after_end", SyntaxError},
		{"x == 1 && y == 2 || z == 3", SyntaxError},
		{"AG![x == ]", SyntaxError},
		{"AY![x == 1]", SyntaxError},
		{"x # 1", LexError},
		{"x == 99999999999999999999999", LexError},
		{"lfp![Z, !(EX![Z])]", NotMonotoneError},
		{"lfp![__Z0, x == 0]", SyntaxError},
		{"AG![x == 0", SyntaxError},
	}
	for _, test := range tests {
		_, err := Parse(test.input)
		var parseError *ParseError
		if !errors.As(err, &parseError) {
			t.Errorf("Parsing %q should fail with a parse error. Got: %v", test.input, err)
			continue
		}
		if parseError.Kind != test.kind {
			t.Errorf("Parsing %q should fail with %v. Got: %v", test.input, test.kind, parseError)
		}
	}
}

func TestInherent(t *testing.T) {
	assert.Equal(t, "AG![__panic == 0]", Inherent().String())
	assert.True(t, IsInherent(MustParse("AG![__panic == 0]")))
	assert.False(t, IsInherent(MustParse("AG![__panic != 1]")))
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"EF![p == 1]", "lfp![__Z0, p == 1 || (true && EX![__Z0])]"},
		{"AG![p == 1]", "gfp![__Z0, p == 1 && (false || AX![__Z0])]"},
		{"EU![h == 1, u == 1]", "lfp![__Z0, u == 1 || (h == 1 && EX![__Z0])]"},
		{"AR![r == 1, e == 1]", "gfp![__Z0, e == 1 && (r == 1 || AX![__Z0])]"},
		{"AG![EF![p == 1]]", "gfp![__Z0, lfp![__Z1, p == 1 || (true && EX![__Z1])] && (false || AX![__Z0])]"},
		{"AX![p == 1]", "AX![p == 1]"},
	}
	for _, test := range tests {
		canonical := Canonical(MustParse(test.input))
		if canonical.String() != test.expected {
			t.Errorf("Expected the canonical form of %v to be %v. Got: %v", test.input, test.expected, canonical)
		}
		if !IsClosed(canonical) {
			t.Errorf("The canonical form of a closed property should be closed. Got: %v", canonical)
		}
	}
}

func TestPNF(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"!(AG![p == 1])", "EF![p != 1]"},
		{"!(EU![a < 1, b >= 2])", "AR![a >= 1, b < 2]"},
		{"!(a == 1 && !(b <= 2))", "a != 1 || b <= 2"},
		{"!(EX![true])", "AX![false]"},
		{"!(lfp![Z, p == 1 || EX![Z]])", "gfp![Z, p != 1 && AX![Z]]"},
	}
	for _, test := range tests {
		pnf := PNF(MustParse(test.input))
		if pnf.String() != test.expected {
			t.Errorf("Expected the positive normal form of %v to be %v. Got: %v", test.input, test.expected, pnf)
		}
		assert.False(t, ContainsNegation(pnf))
	}
}

func TestPNFPolarityMismatch(t *testing.T) {
	unchecked := FixedPoint{Variable: "Z", Inner: Negation{Inner: Variable{Name: "Z"}}}
	assert.Panics(t, func() { PNF(unchecked) })
}

func TestENF(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AX![p == 1]", "!(EX![!(p == 1)])"},
		{"EF![p == 1]", "EU![true, p == 1]"},
		{"AF![p == 1]", "!(EG![!(p == 1)])"},
		{"AG![p == 1]", "!(EU![true, !(p == 1)])"},
		{"AR![a == 1, b == 1]", "!(EU![!(a == 1), !(b == 1)])"},
		{"ER![a == 1, b == 1]", "EG![b == 1] || EU![b == 1, a == 1 && b == 1]"},
	}
	for _, test := range tests {
		enf := ENF(MustParse(test.input))
		if enf.String() != test.expected {
			t.Errorf("Expected the existential normal form of %v to be %v. Got: %v", test.input, test.expected, enf)
		}
	}
}

func TestIsClosed(t *testing.T) {
	assert.True(t, IsClosed(MustParse("lfp![Z, EX![Z]]")))
	assert.False(t, IsClosed(Or{A: Const{}, B: Next{Inner: Variable{Name: "Z"}}}))
	assert.False(t, IsClosed(FixedPoint{Variable: "Y", Inner: Variable{Name: "Z"}}))
}

func TestAtomicEvaluate(t *testing.T) {
	known := func(value uint64, width uint32) bitvector.Combined {
		return bitvector.NewCombinedConcrete(bitvector.NewConcrete(value, width))
	}
	// x is 0b1X1X: one of 10, 11, 14, 15
	x := bitvector.NewCombinedFromThreeValued(bitvector.NewThreeValuedKnownBits(0b1010, 0b1010, 4))
	state := machine.NewState(machine.NewRecord(
		machine.BitvectorField("x", machine.Unsigned, x),
		machine.BitvectorField("s", machine.Signed, known(0b1111, 4)),
		machine.BitvectorField("raw", machine.Signless, known(3, 4)),
	))
	tests := []struct {
		input    string
		expected logic.Value
	}{
		{"x == 10", logic.Unknown},
		{"x == 12", logic.False},
		{"x != 12", logic.True},
		{"x == 100", logic.False},
		{"x >= 10", logic.True},
		{"x < 10", logic.False},
		{"x <= 14", logic.Unknown},
		{"x > -1", logic.True},
		{"as_signed(x) < 0", logic.True},
		{"s == -1", logic.True},
		{"s < 0", logic.True},
		{"as_unsigned(s) == 15", logic.True},
		{"as_unsigned(s) > 14", logic.True},
		{"raw == 3", logic.True},
		{"as_signed(raw) <= 3", logic.True},
		{"__panic == 0", logic.True},
	}
	for _, test := range tests {
		value, err := MustParse(test.input).(Atomic).Evaluate(state)
		require.NoError(t, err, test.input)
		if value != test.expected {
			t.Errorf("Expected %v to be %v. Got: %v", test.input, test.expected, value)
		}
		complement, err := MustParse(test.input).(Atomic).Complement().Evaluate(state)
		require.NoError(t, err)
		if complement != value.Not() {
			t.Errorf("The complement of %v should be %v. Got: %v", test.input, value.Not(), complement)
		}
	}

	_, err := MustParse("raw < 3").(Atomic).Evaluate(state)
	var signedness *machine.SignednessNotEstablishedError
	assert.True(t, errors.As(err, &signedness))
	_, err = MustParse("missing == 3").(Atomic).Evaluate(state)
	var notFound *machine.FieldNotFoundError
	assert.True(t, errors.As(err, &notFound))
}
