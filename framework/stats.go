package framework

// Statistics of the verification since the last reset.
type Stats struct {
	Refinements          int
	GeneratedStates      int
	FinalStates          int
	GeneratedTransitions int
	FinalTransitions     int
	// Message of the panic closest to the root, empty if no state panics.
	InherentPanicMessage string
}

func (f *Framework) Stats() Stats {
	stats := f.stats
	stats.FinalStates = f.space.NumStates()
	stats.FinalTransitions = f.space.NumTransitions()
	stats.InherentPanicMessage = f.panicMessage()
	return stats
}
