package framework

import (
	"go.uber.org/zap"

	"gomck/machine"
)

// Configures the Framework.
type Option interface {
	frameworkOpt()
}

// Configures whether states decay after each step.
//
// With decay every bit of a generated state is made unknown unless the step
// precision keeps it, and refinement widens the step precision before the input
// precision. Default value is no decay.
type DecayOption struct {
	Decay bool
}

func (DecayOption) frameworkOpt() {}

func WithDecay() Option {
	return DecayOption{Decay: true}
}

// Configures the logger used by the framework and its checker.
//
// Default value is a logger that discards everything.
type LoggerOption struct {
	Logger *zap.Logger
}

func (LoggerOption) frameworkOpt() {}

func WithLogger(logger *zap.Logger) Option {
	return LoggerOption{Logger: logger}
}

// Configures the number of successors computed concurrently during generation.
//
// Default value is the number of CPUs.
type WorkersOption struct {
	Workers int
}

func (WorkersOption) frameworkOpt() {}

func WithWorkers(workers int) Option {
	return WorkersOption{Workers: workers}
}

// Configures whether the inherent property is assumed to hold.
//
// If it is not assumed, Verify checks the inherent property before the
// requested one. Default value is not assumed.
type AssumeInherentOption struct {
	Assume bool
}

func (AssumeInherentOption) frameworkOpt() {}

func AssumeInherent() Option {
	return AssumeInherentOption{Assume: true}
}

// Configures the input precision of nodes that were never refined.
//
// Default value is the unmarked input precision, so inputs start fully unknown.
type DefaultInputPrecisionOption struct {
	Mark machine.Mark
}

func (DefaultInputPrecisionOption) frameworkOpt() {}

func WithDefaultInputPrecision(mark machine.Mark) Option {
	return DefaultInputPrecisionOption{Mark: mark}
}
