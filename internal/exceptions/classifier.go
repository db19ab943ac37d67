// Package exceptions assigns a severity to every exception event in a
// trace using a bounded lookahead heuristic. The classification is
// reproducible, not guaranteed: exceptions resolved outside the lookahead
// window can be misjudged, and that behavior is deliberately preserved.
package exceptions

import (
	"strings"

	"apexlens/internal/apexlog"
	"apexlens/internal/tree"
)

// Severity orders exception outcomes from benign to transaction-fatal.
type Severity string

const (
	Handled   Severity = "handled"
	Warning   Severity = "warning"
	Unhandled Severity = "unhandled"
	Fatal     Severity = "fatal"
)

// Record is one classified exception.
type Record struct {
	Severity Severity            `json:"severity"`
	Node     *tree.ExecutionNode `json:"-"`
	Message  string              `json:"message"`
	LineNo   int                 `json:"lineNo"`
}

// lookahead bounds the raw-line scan after an exception-thrown line.
const lookahead = 20

// continuationMarkers indicate normal execution resumed, i.e. the
// exception was caught.
var continuationMarkers = []string{
	"|METHOD_ENTRY|",
	"|METHOD_EXIT|",
	"|SYSTEM_METHOD_ENTRY|",
	"|SYSTEM_METHOD_EXIT|",
	"|CONSTRUCTOR_ENTRY|",
	"|STATEMENT_EXECUTE|",
	"|VARIABLE_ASSIGNMENT|",
	"|USER_DEBUG|",
}

// Classify walks the execution tree's exception nodes and assigns each a
// severity from the surrounding raw-line context.
func Classify(root *tree.ExecutionNode, raw []string) []Record {
	traceHasFatal := false
	for _, line := range raw {
		if strings.Contains(line, "|"+apexlog.EventFatalError) {
			traceHasFatal = true
			break
		}
	}

	var records []Record
	root.Walk(func(n *tree.ExecutionNode) {
		if n.Type != tree.Exception {
			return
		}
		rec := Record{
			Node:    n,
			Message: n.Name,
			LineNo:  n.StartLine,
		}
		if isFatalLine(raw, n.StartLine) {
			rec.Severity = Fatal
		} else {
			rec.Severity = classifyThrown(raw, n.StartLine, traceHasFatal)
		}
		records = append(records, rec)
	})
	return records
}

func isFatalLine(raw []string, lineNo int) bool {
	if lineNo < 1 || lineNo > len(raw) {
		return false
	}
	return strings.Contains(raw[lineNo-1], "|"+apexlog.EventFatalError)
}

// classifyThrown scans up to lookahead lines after the throw site.
// A fatal marker first means nothing caught it; a continuation marker
// first means a handler resumed execution; another throw keeps the scan
// going (re-throw chain). An unresolved window falls back on whether the
// trace failed at all.
func classifyThrown(raw []string, lineNo int, traceHasFatal bool) Severity {
	for i := lineNo; i < len(raw) && i-lineNo < lookahead; i++ {
		line := raw[i]
		if strings.Contains(line, "|"+apexlog.EventFatalError) {
			return Unhandled
		}
		if strings.Contains(line, "|"+apexlog.EventExceptionThrown+"|") {
			continue // possible re-throw, keep scanning
		}
		for _, marker := range continuationMarkers {
			if strings.Contains(line, marker) {
				return Handled
			}
		}
	}
	if traceHasFatal {
		return Unhandled
	}
	return Warning
}

// AnyFatalOrUnhandled reports whether the record set marks the
// transaction as failed.
func AnyFatalOrUnhandled(records []Record) bool {
	for _, r := range records {
		if r.Severity == Fatal || r.Severity == Unhandled {
			return true
		}
	}
	return false
}
