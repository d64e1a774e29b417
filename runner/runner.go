package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gomck/checking"
	"gomck/framework"
	"gomck/property"
)

var (
	ErrRunning    = errors.New("runner: a verification is already running")
	ErrNotStarted = errors.New("runner: the runner has not been started")
	ErrStopped    = errors.New("runner: the runner has been stopped")
)

// The Runner performs verification steps on a background goroutine.
//
// Commands are executed sequentially in the order they are given. A step is
// accepted at once and runs until the property is known, the maximum number of
// refinements was made, or the runner is stopped. The status can be read while
// a step runs.
type Runner struct {
	sync.Mutex

	fw     *framework.Framework
	logger *zap.Logger

	cmd  chan command
	resp chan error
	// Serializes sending commands and receiving their responses.
	send sync.Mutex

	started bool
	stopped bool
	status  Status
	// Cancels the running step.
	cancel context.CancelFunc
	// Closed when the running step finishes.
	finished chan struct{}
}

// Create a new Runner performing the steps of the framework.
// The framework must not be used by others while the runner is started.
func New(fw *framework.Framework, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	finished := make(chan struct{})
	close(finished)
	return &Runner{
		fw:       fw,
		logger:   logger,
		cmd:      make(chan command),
		resp:     make(chan error),
		finished: finished,
	}
}

// Start the Runner
//
// The Runner must be started before commands can be given to it.
func (r *Runner) Start() {
	r.Lock()
	if r.started {
		r.Unlock()
		return
	}
	r.started = true
	r.Unlock()

	go func() {
		for cmd := range r.cmd {
			switch t := cmd.(type) {
			case stepCmd:
				r.resp <- nil
				r.run(t)
			case resetCmd:
				r.fw.Reset()
				r.Lock()
				r.status = Status{Stats: r.fw.Stats()}
				r.Unlock()
				r.resp <- nil
			case stopCmd:
				close(r.cmd)
				r.resp <- nil
			}
		}
	}()
}

// Checks that a command can be given. Must be called with the lock held.
func (r *Runner) ready() error {
	switch {
	case !r.started:
		return ErrNotStarted
	case r.stopped:
		return ErrStopped
	case r.status.Running:
		return ErrRunning
	}
	return nil
}

// Start verification steps on the property. A negative maximum means no limit.
// Returns the id of the run.
//
// Must be called after the runner has been started.
func (r *Runner) Step(text string, maxRefinements int) (uuid.UUID, error) {
	prop, err := property.Parse(text)
	if err != nil {
		return uuid.Nil, err
	}
	r.send.Lock()
	defer r.send.Unlock()
	r.Lock()
	if err := r.ready(); err != nil {
		r.Unlock()
		return uuid.Nil, err
	}
	id := uuid.New()
	r.status = Status{
		Running:  true,
		RunId:    id,
		Property: prop.String(),
		Started:  time.Now(),
		Stats:    r.status.Stats,
	}
	r.finished = make(chan struct{})
	r.Unlock()

	r.cmd <- stepCmd{Id: id, Property: prop, MaxRefinements: maxRefinements}
	return id, <-r.resp
}

func (r *Runner) run(cmd stepCmd) {
	ctx, cancel := context.WithCancel(context.Background())
	r.Lock()
	r.cancel = cancel
	if r.stopped {
		cancel()
	}
	r.Unlock()

	logger := r.logger.With(zap.Stringer("run", cmd.Id), zap.Stringer("property", cmd.Property))
	logger.Info("Starting verification steps", zap.Int("maxRefinements", cmd.MaxRefinements))
	refinements, conclusion, err := r.step(ctx, cmd)
	cancel()
	if err != nil {
		logger.Warn("Verification steps failed", zap.Error(err))
	} else {
		holds, response := conclusion.Response()
		logger.Info("Finished verification steps",
			zap.Int("refinements", refinements),
			zap.Bool("holds", holds),
			zap.String("conclusion", response),
		)
	}
	stats := r.fw.Stats()

	r.Lock()
	r.status.Running = false
	r.status.Refinements = refinements
	r.status.Conclusion = conclusion
	r.status.Err = err
	r.status.Finished = time.Now()
	r.status.Stats = stats
	r.cancel = nil
	close(r.finished)
	r.Unlock()
}

// Runs the framework, turning its invariant panics into errors so that the
// runner stays usable.
func (r *Runner) step(ctx context.Context, cmd stepCmd) (refinements int, conclusion checking.Conclusion, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.fw.Reset()
			err = fmt.Errorf("runner: verification panicked: %v", p)
		}
	}()
	return r.fw.Step(ctx, cmd.Property, cmd.MaxRefinements)
}

// The status of the current or last run.
func (r *Runner) Status() Status {
	r.Lock()
	defer r.Unlock()
	return r.status
}

// Wait until the current run finishes and return its status.
func (r *Runner) Wait(ctx context.Context) (Status, error) {
	r.Lock()
	finished := r.finished
	r.Unlock()
	select {
	case <-finished:
		return r.Status(), nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// Discard the state space, the precisions and the statistics.
//
// Must be called after the runner has been started.
func (r *Runner) Reset() error {
	r.send.Lock()
	defer r.send.Unlock()
	r.Lock()
	if err := r.ready(); err != nil {
		r.Unlock()
		return err
	}
	r.Unlock()
	r.cmd <- resetCmd{}
	return <-r.resp
}

// Stop the runner, cancelling the running step after its current iteration.
//
// Must be called after the runner has been started.
func (r *Runner) Stop() error {
	r.Lock()
	if !r.started {
		r.Unlock()
		return ErrNotStarted
	}
	if r.stopped {
		r.Unlock()
		return ErrStopped
	}
	r.stopped = true
	if r.cancel != nil {
		r.cancel()
	}
	r.Unlock()
	r.send.Lock()
	defer r.send.Unlock()
	r.cmd <- stopCmd{}
	return <-r.resp
}
