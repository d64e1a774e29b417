package property

import (
	"fmt"
	"strings"

	"gomck/machine"
)

// Parses a property such as
//
//	AG![x == 0] && !(EF![as_signed(mem[3]) < -1])
//	EU![a == 1, b != 0]
//	lfp![Z, p == 1 || EX![Z]]
//
// Binary connectives of one kind chain, different kinds must be parenthesized.
func Parse(input string) (Property, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, tokens: tokens}
	result, err := p.parseProperty()
	if err != nil {
		return nil, err
	}
	if len(p.tokens) > 0 {
		return nil, p.errorAt(&p.tokens[0], "extraneous tokens")
	}
	if err := checkMonotone(result, false, map[string]bool{}); err != nil {
		err.Input = input
		return nil, err
	}
	return result, nil
}

// Parses the property, panicking on errors. For properties written in code.
func MustParse(input string) Property {
	p, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return p
}

type parser struct {
	input     string
	tokens    []token
	variables []string
}

func (p *parser) peek() *token {
	if len(p.tokens) == 0 {
		return nil
	}
	return &p.tokens[0]
}

func (p *parser) next() *token {
	t := p.peek()
	if t != nil {
		p.tokens = p.tokens[1:]
	}
	return t
}

func (p *parser) errorAt(t *token, reason string) *ParseError {
	if t == nil {
		return &ParseError{Kind: SyntaxError, Input: p.input, Offset: -1, Reason: reason}
	}
	return &ParseError{Kind: SyntaxError, Input: p.input, Offset: t.offset, Reason: fmt.Sprintf("%v (have %v %q)", reason, t.typ, t.text)}
}

func (p *parser) expect(typ tokenType, when string) (*token, error) {
	t := p.next()
	if t == nil || t.typ != typ {
		return nil, p.errorAt(t, fmt.Sprintf("expected %v when parsing %v", typ, when))
	}
	return t, nil
}

func (p *parser) parseProperty() (Property, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t == nil || (t.typ != andToken && t.typ != orToken) {
		return expr, nil
	}
	chain := t.typ
	for t != nil && t.typ == chain {
		p.next()
		right, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if chain == andToken {
			expr = And{A: expr, B: right}
		} else {
			expr = Or{A: expr, B: right}
		}
		t = p.peek()
	}
	return expr, nil
}

func (p *parser) parseExpression() (Property, error) {
	t := p.next()
	if t == nil {
		return nil, p.errorAt(nil, "expected a property")
	}
	switch t.typ {
	case identToken:
		switch {
		case t.text == "true" || t.text == "false":
			return Const{Value: t.text == "true"}, nil
		case p.isVariable(t.text):
			return Variable{Name: t.text}, nil
		}
		return p.parseAtomic(t)
	case macroToken:
		return p.parseMacro(t)
	case exclamationToken:
		if _, err := p.expect(openParenToken, "a negation"); err != nil {
			return nil, err
		}
		inner, err := p.parseProperty()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(closeParenToken, "a negation"); err != nil {
			return nil, err
		}
		return Negation{Inner: inner}, nil
	case openParenToken:
		inner, err := p.parseProperty()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(closeParenToken, "a parenthesized property"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorAt(t, "expected an identifier or a macro invocation")
}

func (p *parser) isVariable(name string) bool {
	for _, v := range p.variables {
		if v == name {
			return true
		}
	}
	return false
}

func (p *parser) parseMacro(t *token) (Property, error) {
	name := t.text
	switch name {
	case "lfp", "gfp":
		return p.parseFixedPoint(name == "gfp")
	}
	if len(name) != 2 || (name[0] != 'A' && name[0] != 'E') {
		return nil, p.errorAt(t, "unknown macro invocation")
	}
	universal := name[0] == 'A'
	switch name[1] {
	case 'X', 'F', 'G':
		inner, err := p.parseBracketed(1, name)
		if err != nil {
			return nil, err
		}
		switch name[1] {
		case 'X':
			return Next{Universal: universal, Inner: inner[0]}, nil
		case 'F':
			return Finally{Universal: universal, Inner: inner[0]}, nil
		}
		return Globally{Universal: universal, Inner: inner[0]}, nil
	case 'U', 'R':
		operands, err := p.parseBracketed(2, name)
		if err != nil {
			return nil, err
		}
		if name[1] == 'U' {
			return Until{Universal: universal, Hold: operands[0], Until: operands[1]}, nil
		}
		return Release{Universal: universal, Releaser: operands[0], Releasee: operands[1]}, nil
	}
	return nil, p.errorAt(t, "unknown macro invocation")
}

// Parses [p] or [p, q].
func (p *parser) parseBracketed(count int, when string) ([]Property, error) {
	if _, err := p.expect(openSquareToken, when); err != nil {
		return nil, err
	}
	var operands []Property
	for i := 0; i < count; i++ {
		if i > 0 {
			if _, err := p.expect(commaToken, when); err != nil {
				return nil, err
			}
		}
		operand, err := p.parseProperty()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	if _, err := p.expect(closeSquareToken, when); err != nil {
		return nil, err
	}
	return operands, nil
}

func (p *parser) parseFixedPoint(greatest bool) (Property, error) {
	const when = "a fixed point"
	if _, err := p.expect(openSquareToken, when); err != nil {
		return nil, err
	}
	variable, err := p.expect(identToken, when)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(variable.text, "__") {
		return nil, p.errorAt(variable, "fixed-point variables may not start with __")
	}
	if _, err := p.expect(commaToken, when); err != nil {
		return nil, err
	}
	p.variables = append(p.variables, variable.text)
	inner, err := p.parseProperty()
	p.variables = p.variables[:len(p.variables)-1]
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(closeSquareToken, when); err != nil {
		return nil, err
	}
	return FixedPoint{Greatest: greatest, Variable: variable.text, Inner: inner}, nil
}

func (p *parser) parseAtomic(first *token) (Property, error) {
	atomic := Atomic{}
	name := first
	forced := map[string]machine.Signedness{"as_signed": machine.Signed, "as_unsigned": machine.Unsigned}
	if signedness, ok := forced[first.text]; ok {
		if _, err := p.expect(openParenToken, "forced signedness"); err != nil {
			return nil, err
		}
		var err error
		if name, err = p.expect(identToken, "forced signedness"); err != nil {
			return nil, err
		}
		atomic.Signedness = signedness
	}
	atomic.Name = name.text
	if t := p.peek(); t != nil && t.typ == openSquareToken {
		p.next()
		index, err := p.expect(numberToken, "an index")
		if err != nil {
			return nil, err
		}
		if index.number < 0 {
			return nil, p.errorAt(index, "expected a nonnegative index")
		}
		value := uint64(index.number)
		atomic.Index = &value
		if _, err := p.expect(closeSquareToken, "an index"); err != nil {
			return nil, err
		}
	}
	if atomic.Signedness != machine.Signless {
		if _, err := p.expect(closeParenToken, "forced signedness"); err != nil {
			return nil, err
		}
	}
	comparison, err := p.expect(comparisonToken, "an atomic property")
	if err != nil {
		return nil, err
	}
	atomic.Comparison = comparison.comparison
	constant, err := p.expect(numberToken, "an atomic property")
	if err != nil {
		return nil, err
	}
	atomic.Constant = constant.number
	return atomic, nil
}

// Fixed-point variables must occur under an even number of negations below their fixed point.
func checkMonotone(prop Property, negated bool, bindings map[string]bool) *ParseError {
	switch prop := prop.(type) {
	case Negation:
		return checkMonotone(prop.Inner, !negated, bindings)
	case Variable:
		if bindings[prop.Name] != negated {
			return &ParseError{Kind: NotMonotoneError, Offset: -1, Reason: fmt.Sprintf("variable %v occurs negated", prop.Name)}
		}
		return nil
	case FixedPoint:
		var err *ParseError
		withBinding(bindings, prop.Variable, negated, func(inner map[string]bool) Property {
			err = checkMonotone(prop.Inner, negated, inner)
			return nil
		})
		return err
	}
	for _, child := range Children(prop) {
		if err := checkMonotone(child, negated, bindings); err != nil {
			return err
		}
	}
	return nil
}
