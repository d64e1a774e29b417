package checking

import (
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"gomck/property"
	"gomck/space"
)

// Configures the Checker.
type Option interface {
	checkerOpt()
}

// Configures the logger of the Checker.
//
// Default value is a logger that discards everything.
type LoggerOption struct {
	Logger *zap.Logger
}

func (LoggerOption) checkerOpt() {}

func WithLogger(logger *zap.Logger) Option {
	return LoggerOption{Logger: logger}
}

// The Checker decides properties on abstract state spaces.
//
// Labellings are kept between checks of the same property. The caller declares
// every change of the space through DeclareRegeneration and RemoveStates so
// that only the affected labels are computed again.
type Checker struct {
	properties map[string]*propertyChecker
	logger     *zap.Logger
}

func New(opts ...Option) *Checker {
	c := &Checker{
		properties: map[string]*propertyChecker{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		switch t := opt.(type) {
		case LoggerOption:
			c.logger = t.Logger
		}
	}
	return c
}

// Decides the property on the space.
//
// Returns an error if an atomic property refers to a field or index the states
// do not have. The error is returned before any labelling is computed.
func (c *Checker) CheckProperty(sp *space.Space, prop property.Property) (Conclusion, error) {
	key := property.Key(prop)
	pc, ok := c.properties[key]
	if !ok {
		pc = newPropertyChecker(prop, c.logger)
		c.properties[key] = pc
	}
	conclusion, err := pc.check(sp)
	if err != nil {
		c.logger.Debug("Property can not be checked", zap.Stringer("property", prop), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("Property checked", zap.Stringer("property", prop), zap.Any("conclusion", conclusion))
	return conclusion, nil
}

// Declares that the states were added and that the successors of the nodes changed.
// The labels of these states and of all states reaching them are computed again
// by the next check.
func (c *Checker) DeclareRegeneration(sp *space.Space, newStates []space.StateId, changedSuccessors []space.NodeId) {
	affected := slices.Clone(newStates)
	for _, node := range changedSuccessors {
		if state, ok := node.State(); ok {
			affected = append(affected, state)
		}
	}
	for _, pc := range c.properties {
		pc.focus.regenerate(affected)
	}
	c.logger.Debug("Regeneration declared",
		zap.Int("new", len(newStates)),
		zap.Int("changed", len(changedSuccessors)),
	)
}

// Forgets the labels of states removed from the space.
func (c *Checker) RemoveStates(states []space.StateId) {
	if len(states) == 0 {
		return
	}
	for _, pc := range c.properties {
		pc.purge(states)
		for _, state := range states {
			delete(pc.focus.dirty, state)
		}
	}
}

// Forgets every label.
func (c *Checker) Purge() {
	for _, pc := range c.properties {
		pc.clear()
	}
}

// Checked properties, sorted by key.
func (c *Checker) Properties() []string {
	keys := maps.Keys(c.properties)
	slices.Sort(keys)
	return keys
}
