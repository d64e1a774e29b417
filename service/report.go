package service

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"gomck/runner"
)

// The status of the last run as reported by the service.
type Report struct {
	RunId       string
	Property    string
	Running     bool
	Refinements int
	// True if the run concluded that the property holds.
	Holds bool
	// Description of the conclusion, empty while running and if the run failed.
	Conclusion  string
	Error       string
	States      int
	Transitions int
}

func newReport(status runner.Status) Report {
	report := Report{
		Property:    status.Property,
		Running:     status.Running,
		Refinements: status.Refinements,
		States:      status.Stats.FinalStates,
		Transitions: status.Stats.FinalTransitions,
	}
	if status.Property != "" {
		report.RunId = status.RunId.String()
	}
	if status.Conclusion != nil {
		report.Holds, report.Conclusion = status.Conclusion.Response()
	}
	if status.Err != nil {
		report.Error = status.Err.Error()
	}
	return report
}

func (r Report) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"runId":       r.RunId,
		"property":    r.Property,
		"running":     r.Running,
		"refinements": r.Refinements,
		"holds":       r.Holds,
		"conclusion":  r.Conclusion,
		"error":       r.Error,
		"states":      r.States,
		"transitions": r.Transitions,
	})
}

func reportFromStruct(s *structpb.Struct) Report {
	fields := s.GetFields()
	return Report{
		RunId:       fields["runId"].GetStringValue(),
		Property:    fields["property"].GetStringValue(),
		Running:     fields["running"].GetBoolValue(),
		Refinements: int(fields["refinements"].GetNumberValue()),
		Holds:       fields["holds"].GetBoolValue(),
		Conclusion:  fields["conclusion"].GetStringValue(),
		Error:       fields["error"].GetStringValue(),
		States:      int(fields["states"].GetNumberValue()),
		Transitions: int(fields["transitions"].GetNumberValue()),
	}
}

func (r Report) String() string {
	switch {
	case r.RunId == "":
		return "No verification has been run"
	case r.Running:
		return fmt.Sprintf("Run %v: verifying %v, %v states", r.RunId, r.Property, r.States)
	case r.Error != "":
		return fmt.Sprintf("Run %v: verifying %v failed after %v refinements: %v", r.RunId, r.Property, r.Refinements, r.Error)
	}
	return fmt.Sprintf("Run %v: %v after %v refinements. %v states, %v transitions", r.RunId, r.Conclusion, r.Refinements, r.States, r.Transitions)
}
