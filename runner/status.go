package runner

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"gomck/checking"
	"gomck/framework"
)

// The status of a run of verification steps.
type Status struct {
	Running  bool
	RunId    uuid.UUID
	Property string
	Started  time.Time
	Finished time.Time

	Refinements int
	// Nil while running and if the run failed.
	Conclusion checking.Conclusion
	Err        error

	Stats framework.Stats
}

func (s Status) String() string {
	var buffer bytes.Buffer
	wrt := tabwriter.NewWriter(&buffer, 4, 4, 1, ' ', 0)
	fmt.Fprintf(wrt, "Run:\t%v\n", s.RunId)
	fmt.Fprintf(wrt, "Property:\t%v\n", s.Property)
	fmt.Fprintf(wrt, "Running:\t%v\n", s.Running)
	fmt.Fprintf(wrt, "Refinements:\t%v\n", s.Refinements)
	switch {
	case s.Err != nil:
		fmt.Fprintf(wrt, "Error:\t%v\n", s.Err)
	case s.Conclusion != nil:
		_, response := s.Conclusion.Response()
		fmt.Fprintf(wrt, "Conclusion:\t%v\n", response)
	}
	fmt.Fprintf(wrt, "States:\t%v\n", s.Stats.FinalStates)
	fmt.Fprintf(wrt, "Transitions:\t%v\n", s.Stats.FinalTransitions)
	wrt.Flush()
	return buffer.String()
}
