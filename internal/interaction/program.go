package interaction

import "fmt"

// noTarget marks an absent jump edge; reaching it terminates the current
// root subtree.
const noTarget = -1

// CompiledOp is one Program entry: an executable node plus the resolved
// jump labels for its outgoing edges.
type CompiledOp struct {
	Node   *Node
	Next   int
	Failed int
}

// Program is the immutable linear instruction sequence produced by
// compiling a node graph. Owned exclusively by its Definition; computed
// once at load time, never mutated afterward.
type Program struct {
	ops   []CompiledOp
	roots []int
}

// Len returns the number of compiled ops
func (p *Program) Len() int {
	return len(p.ops)
}

// Op returns the op at a program index
func (p *Program) Op(i int) (CompiledOp, bool) {
	if i < 0 || i >= len(p.ops) {
		return CompiledOp{}, false
	}
	return p.ops[i], true
}

// Roots returns the entry indices of the definition's root children, in
// declaration order.
func (p *Program) Roots() []int {
	return p.roots
}

// IndexOf returns the program index a node id compiled to, or -1. Shared
// subtrees compile exactly once, so every node has at most one index.
func (p *Program) IndexOf(nodeID string) int {
	for i, op := range p.ops {
		if op.Node != nil && op.Node.ID == nodeID {
			return i
		}
	}
	return -1
}

// validate checks that every jump label resolves in bounds
func (p *Program) validate() error {
	for i, op := range p.ops {
		if op.Node == nil {
			return fmt.Errorf("op %d has no node", i)
		}
		if op.Next != noTarget && (op.Next < 0 || op.Next >= len(p.ops)) {
			return fmt.Errorf("op %d (%s): next label %d out of bounds", i, op.Node.ID, op.Next)
		}
		if op.Failed != noTarget && (op.Failed < 0 || op.Failed >= len(p.ops)) {
			return fmt.Errorf("op %d (%s): failed label %d out of bounds", i, op.Node.ID, op.Failed)
		}
	}
	for _, root := range p.roots {
		if root < 0 || root >= len(p.ops) {
			return fmt.Errorf("root entry %d out of bounds", root)
		}
	}
	return nil
}
