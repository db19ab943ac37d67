// Package tree reconstructs the hierarchical call structure of a trace
// from its entry/exit event stream.
package tree

import "time"

// NodeType classifies an execution node.
type NodeType string

const (
	Root         NodeType = "root"
	CodeUnit     NodeType = "codeUnit"
	Method       NodeType = "method"
	SystemMethod NodeType = "systemMethod"
	UserDebug    NodeType = "userDebug"
	Exception    NodeType = "exception"
)

// ExecutionNode is one node of the reconstructed call tree. Nodes are
// exclusively owned by their parent; exactly one Root exists per trace.
type ExecutionNode struct {
	Type NodeType `json:"type"`
	Name string   `json:"name"`

	// StartTime/EndTime are wall-clock times of day (no date component).
	StartTime time.Duration `json:"startTime"`
	EndTime   time.Duration `json:"endTime"`

	// StartElapsed/EndElapsed are transaction-relative nanoseconds, the
	// preferred clock for durations.
	StartElapsed int64 `json:"startElapsed"`
	EndElapsed   int64 `json:"endElapsed"`

	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`

	Children []*ExecutionNode  `json:"children,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Duration returns the node's elapsed duration.
func (n *ExecutionNode) Duration() time.Duration {
	if n.EndElapsed < n.StartElapsed {
		return 0
	}
	return time.Duration(n.EndElapsed - n.StartElapsed)
}

// Walk visits n and every descendant in depth-first order.
func (n *ExecutionNode) Walk(fn func(*ExecutionNode)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the total number of nodes in the subtree rooted at n.
func (n *ExecutionNode) Count() int {
	total := 0
	n.Walk(func(*ExecutionNode) { total++ })
	return total
}
