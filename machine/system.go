package machine

import (
	"fmt"

	"gomck/bitvector"
)

// A transition system interpreted over abstract bit-vectors.
//
// Init and Next are the forward interpretation. RefineInit and RefineNext are the
// backward interpretation: given a mark on the result of the corresponding forward
// call, they return marks on its arguments, naming the bits that made the marked
// result bits imprecise.
//
// Implementations must be sound: every concrete behaviour of the system is
// contained in the abstract one. Panics raised by implementations are recovered
// by the caller. Init and Next may be called concurrently.
type System interface {
	InputTemplate() Record
	StateTemplate() Record
	Init(input Record) State
	Next(state Record, input Record) State
	// Returns the mark on the input.
	RefineInit(input Record, later StateMark) Mark
	// Returns the marks on the state and on the input.
	RefineNext(state Record, input Record, later StateMark) (Mark, Mark)
	// Describes a nonzero panic code.
	PanicMessage(code uint64) string
}

// Messages of the panic codes raised by the bit-vector operations themselves.
var builtinPanicMessages = map[uint64]string{
	bitvector.PanicDivByZero: "attempt to divide by zero",
	bitvector.PanicRemByZero: "attempt to calculate the remainder with a divisor of zero",
}

// Describes the panic codes raised by division and remainder.
// Returns false for other codes.
func BuiltinPanicMessage(code uint64) (string, bool) {
	message, ok := builtinPanicMessages[code]
	return message, ok
}

// Resolves a panic code with the system, falling back to the built-in messages.
func PanicMessage(system System, code uint64) string {
	if message, ok := BuiltinPanicMessage(code); ok {
		return message
	}
	if message := system.PanicMessage(code); message != "" {
		return message
	}
	return fmt.Sprintf("panic with code %v", code)
}
