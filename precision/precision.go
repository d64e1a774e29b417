package precision

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"gomck/machine"
	"gomck/space"
)

// The refinement capability of a mark type M, implemented on *M.
type Refinable[M any] interface {
	*M
	ApplyJoin(M)
	ApplyRefin(M) bool
}

type entry[M any] struct {
	mark M
	// nil for the root
	state *machine.State
}

// Marks assigned to nodes of the state space, with a default for the rest.
//
// Precision is monotone: a state is at least as precise as every stored state
// whose value covers it. Marks only grow until the precision is reset.
type Precision[M any, P Refinable[M]] struct {
	defaultMark M
	entries     map[space.NodeId]entry[M]
}

func New[M any, P Refinable[M]](defaultMark M) *Precision[M, P] {
	return &Precision[M, P]{
		defaultMark: defaultMark,
		entries:     map[space.NodeId]entry[M]{},
	}
}

func (p *Precision[M, P]) Default() M {
	return p.defaultMark
}

// Number of nodes with their own mark.
func (p *Precision[M, P]) Len() int {
	return len(p.entries)
}

// Nodes with their own mark, in increasing order.
func (p *Precision[M, P]) Nodes() []space.NodeId {
	nodes := maps.Keys(p.entries)
	slices.Sort(nodes)
	return nodes
}

// The mark of the node joined with the marks of every stored state covering it.
func (p *Precision[M, P]) Get(s *space.Space, node space.NodeId) M {
	mark := p.defaultMark
	if e, ok := p.entries[node]; ok {
		mark = e.mark
	}
	id, ok := node.State()
	if !ok {
		return mark
	}
	state := s.State(id)
	for _, other := range p.Nodes() {
		e := p.entries[other]
		if other == node || e.state == nil {
			continue
		}
		if e.state.Contains(state) {
			P(&mark).ApplyJoin(e.mark)
		}
	}
	return mark
}

// Sets the mark of the node.
func (p *Precision[M, P]) Insert(s *space.Space, node space.NodeId, mark M) {
	e := entry[M]{mark: mark}
	if id, ok := node.State(); ok {
		state := s.State(id)
		e.state = &state
	}
	p.entries[node] = e
}

// Refines the mark of the node by the offer. Returns false if the offer does
// not refine it, leaving the precision unchanged.
func (p *Precision[M, P]) Refine(s *space.Space, node space.NodeId, offer M) bool {
	mark := p.Get(s, node)
	if !P(&mark).ApplyRefin(offer) {
		return false
	}
	p.Insert(s, node, mark)
	return true
}

// Forgets every node mark.
func (p *Precision[M, P]) Reset() {
	p.entries = map[space.NodeId]entry[M]{}
}
