package space

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Writes the reachable part of the space in the Graphviz DOT language.
// States are labelled with their values, edges with their representative inputs.
func (s *Space) WriteDot(w io.Writer) error {
	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "digraph space {")
	fmt.Fprintf(out, "  %v [shape=point];\n", dotNode(Root))
	s.walkReachable(func(node NodeId) bool {
		if id, ok := node.State(); ok {
			fmt.Fprintf(out, "  %v [label=%v];\n", dotNode(node), strconv.Quote(id.String()+": "+s.states[id].String()))
		}
		for _, successor := range s.DirectSuccessors(node) {
			input := s.successors[node][successor]
			fmt.Fprintf(out, "  %v -> %v [label=%v];\n", dotNode(node), dotNode(successor.Node()), strconv.Quote(input.String()))
		}
		return true
	})
	fmt.Fprintln(out, "}")
	return out.Flush()
}

func dotNode(node NodeId) string {
	if node == Root {
		return "root"
	}
	return "s" + node.String()
}
