package tree

import (
	"apexlens/internal/apexlog"
)

// expectedExit is stashed in node metadata while a node is open so a pop
// can verify the exit tag matches the entry that created the node.
const expectedExitKey = "_expectedExit"

// Build reconstructs the execution tree from a tokenized line stream.
//
// The builder keeps an explicit call-local stack seeded with the root.
// Entry events push, matching exit events pop, leaf events attach to the
// current top. The stack always unwinds to exactly the root: mismatched or
// surplus exits are ignored rather than corrupting ancestors, and any
// single-line failure skips that line only.
func Build(res *apexlog.Result) *ExecutionNode {
	root := &ExecutionNode{
		Type: Root,
		Name: "Execution",
	}
	if res.Empty() {
		return root
	}

	first := res.Lines[0]
	root.StartTime = first.Time
	root.StartElapsed = first.Elapsed
	root.StartLine = first.LineNo

	stack := []*ExecutionNode{root}
	top := func() *ExecutionNode { return stack[len(stack)-1] }

	for _, ll := range res.Lines {
		switch {
		case ll.IsEntry():
			node := &ExecutionNode{
				Type:         nodeTypeFor(ll.Event),
				Name:         entryName(ll),
				StartTime:    ll.Time,
				StartElapsed: ll.Elapsed,
				StartLine:    ll.LineNo,
				Metadata:     map[string]string{expectedExitKey: apexlog.ExitFor(ll.Event)},
			}
			top().Children = append(top().Children, node)
			stack = append(stack, node)

		case ll.IsExit():
			// Pop only when there is something above the root and the exit
			// tag pairs with the entry that opened the top node.
			if len(stack) > 1 && top().Metadata[expectedExitKey] == ll.Event {
				n := top()
				n.EndTime = ll.Time
				n.EndElapsed = ll.Elapsed
				n.EndLine = ll.LineNo
				delete(n.Metadata, expectedExitKey)
				if len(n.Metadata) == 0 {
					n.Metadata = nil
				}
				stack = stack[:len(stack)-1]
			}

		case ll.Event == apexlog.EventUserDebug:
			top().Children = append(top().Children, leafNode(UserDebug, debugName(ll), ll))

		case ll.Event == apexlog.EventExceptionThrown, ll.Event == apexlog.EventFatalError:
			top().Children = append(top().Children, leafNode(Exception, exceptionName(ll), ll))
		}
	}

	// Close everything still open; malformed input never leaves half-open
	// ancestors behind.
	last := res.Lines[len(res.Lines)-1]
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		if n.EndLine == 0 {
			n.EndTime = last.Time
			n.EndElapsed = last.Elapsed
			n.EndLine = last.LineNo
		}
		delete(n.Metadata, expectedExitKey)
		if len(n.Metadata) == 0 {
			n.Metadata = nil
		}
		stack = stack[:len(stack)-1]
	}

	return root
}

func leafNode(t NodeType, name string, ll apexlog.LogLine) *ExecutionNode {
	return &ExecutionNode{
		Type:         t,
		Name:         name,
		StartTime:    ll.Time,
		EndTime:      ll.Time,
		StartElapsed: ll.Elapsed,
		EndElapsed:   ll.Elapsed,
		StartLine:    ll.LineNo,
		EndLine:      ll.LineNo,
	}
}

func nodeTypeFor(event string) NodeType {
	switch event {
	case apexlog.EventCodeUnitStarted:
		return CodeUnit
	case apexlog.EventSystemMethodEntry:
		return SystemMethod
	default:
		return Method
	}
}

// entryName extracts the unit/method name from an entry line. The name is
// the last detail field; code units sometimes carry an id field before it.
func entryName(ll apexlog.LogLine) string {
	name := ll.LastField()
	if name == "" {
		name = ll.Event
	}
	return name
}

// debugName is the debug message, prefixed with its declared level.
func debugName(ll apexlog.LogLine) string {
	// USER_DEBUG|[line]|LEVEL|message
	if len(ll.Fields) >= 3 {
		return ll.Field(1) + ": " + ll.Field(2)
	}
	return ll.LastField()
}

// exceptionName is "Type: message" for EXCEPTION_THROWN, or the raw
// message for FATAL_ERROR.
func exceptionName(ll apexlog.LogLine) string {
	if ll.Event == apexlog.EventExceptionThrown && len(ll.Fields) >= 3 {
		return ll.Field(1) + ": " + ll.Field(2)
	}
	return ll.LastField()
}
