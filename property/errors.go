package property

import "fmt"

type ParseErrorKind int

const (
	// The text contains characters that form no token.
	LexError ParseErrorKind = iota
	// The tokens do not form a property.
	SyntaxError
	// A fixed-point variable occurs under a negation.
	NotMonotoneError
)

func (k ParseErrorKind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case SyntaxError:
		return "syntax error"
	}
	return "not monotone"
}

// The property text could not be parsed.
type ParseError struct {
	Kind   ParseErrorKind
	Input  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("property: %v beyond the end of %q: %v", e.Kind, e.Input, e.Reason)
	}
	return fmt.Sprintf("property: %v at offset %v of %q: %v", e.Kind, e.Offset, e.Input, e.Reason)
}
