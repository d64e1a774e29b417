package property

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenType int

const (
	identToken tokenType = iota
	// an identifier directly followed by an exclamation mark
	macroToken
	numberToken
	exclamationToken
	openParenToken
	closeParenToken
	openSquareToken
	closeSquareToken
	commaToken
	andToken
	orToken
	comparisonToken
)

var tokenNames = map[tokenType]string{
	identToken:       "identifier",
	macroToken:       "macro invocation",
	numberToken:      "number",
	exclamationToken: "'!'",
	openParenToken:   "'('",
	closeParenToken:  "')'",
	openSquareToken:  "'['",
	closeSquareToken: "']'",
	commaToken:       "','",
	andToken:         "'&&'",
	orToken:          "'||'",
	comparisonToken:  "comparison",
}

func (t tokenType) String() string {
	return tokenNames[t]
}

type token struct {
	typ        tokenType
	text       string
	number     int64
	comparison Comparison
	offset     int
}

var punctuation = []struct {
	text       string
	typ        tokenType
	comparison Comparison
}{
	// longer texts first
	{"&&", andToken, 0},
	{"||", orToken, 0},
	{"==", comparisonToken, Eq},
	{"!=", comparisonToken, Ne},
	{"<=", comparisonToken, Le},
	{">=", comparisonToken, Ge},
	{"<", comparisonToken, Lt},
	{">", comparisonToken, Gt},
	{"!", exclamationToken, 0},
	{"(", openParenToken, 0},
	{")", closeParenToken, 0},
	{"[", openSquareToken, 0},
	{"]", closeSquareToken, 0},
	{",", commaToken, 0},
}

func isIdentStart(r byte) bool {
	return r == '_' || unicode.IsLetter(rune(r))
}

func isIdentPart(r byte) bool {
	return isIdentStart(r) || unicode.IsDigit(rune(r))
}

func lex(input string) ([]token, error) {
	var tokens []token
	pos := 0
	for pos < len(input) {
		c := input[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++
		case isIdentStart(c):
			start := pos
			for pos < len(input) && isIdentPart(input[pos]) {
				pos++
			}
			name := input[start:pos]
			typ := identToken
			// a macro invocation, unless the exclamation mark starts an inequality
			if pos < len(input) && input[pos] == '!' && !strings.HasPrefix(input[pos:], "!=") {
				typ = macroToken
				pos++
			}
			tokens = append(tokens, token{typ: typ, text: name, offset: start})
		case unicode.IsDigit(rune(c)) || (c == '-' && pos+1 < len(input) && unicode.IsDigit(rune(input[pos+1]))):
			start := pos
			pos++
			for pos < len(input) && isIdentPart(input[pos]) {
				pos++
			}
			number, err := strconv.ParseInt(input[start:pos], 0, 64)
			if err != nil {
				// large unsigned constants are taken in two's complement
				unsigned, uerr := strconv.ParseUint(input[start:pos], 0, 64)
				if uerr != nil {
					return nil, &ParseError{Kind: LexError, Input: input, Offset: start, Reason: "invalid number " + input[start:pos]}
				}
				number = int64(unsigned)
			}
			tokens = append(tokens, token{typ: numberToken, text: input[start:pos], number: number, offset: start})
		default:
			matched := false
			for _, p := range punctuation {
				if strings.HasPrefix(input[pos:], p.text) {
					tokens = append(tokens, token{typ: p.typ, text: p.text, comparison: p.comparison, offset: pos})
					pos += len(p.text)
					matched = true
					break
				}
			}
			if !matched {
				return nil, &ParseError{Kind: LexError, Input: input, Offset: pos, Reason: "unexpected character " + strconv.QuoteRune(rune(c))}
			}
		}
	}
	return tokens, nil
}
