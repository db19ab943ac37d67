// Package apexlog tokenizes raw Salesforce debug-log text into structured
// log-line records. The tokenizer is tolerant by design: lines that do not
// match the pipe-delimited grammar are dropped, never reported as errors.
package apexlog

import "time"

// Event type tags as they appear in the raw log. Only the tags the
// downstream analyzers care about are named here; the tokenizer itself
// accepts any tag.
const (
	EventExecutionStarted  = "EXECUTION_STARTED"
	EventExecutionFinished = "EXECUTION_FINISHED"
	EventCodeUnitStarted   = "CODE_UNIT_STARTED"
	EventCodeUnitFinished  = "CODE_UNIT_FINISHED"
	EventMethodEntry       = "METHOD_ENTRY"
	EventMethodExit        = "METHOD_EXIT"
	EventConstructorEntry  = "CONSTRUCTOR_ENTRY"
	EventConstructorExit   = "CONSTRUCTOR_EXIT"
	EventSystemMethodEntry = "SYSTEM_METHOD_ENTRY"
	EventSystemMethodExit  = "SYSTEM_METHOD_EXIT"
	EventUserDebug         = "USER_DEBUG"
	EventExceptionThrown   = "EXCEPTION_THROWN"
	EventFatalError        = "FATAL_ERROR"
	EventSOQLBegin         = "SOQL_EXECUTE_BEGIN"
	EventSOQLEnd           = "SOQL_EXECUTE_END"
	EventDMLBegin          = "DML_BEGIN"
	EventDMLEnd            = "DML_END"
	EventLimitUsage        = "LIMIT_USAGE_FOR_NS"
	EventCumulativeLimits  = "CUMULATIVE_LIMIT_USAGE"
	EventUserInfo          = "USER_INFO"
	EventStatementExecute  = "STATEMENT_EXECUTE"
	EventVariableAssign    = "VARIABLE_ASSIGNMENT"
)

// LogLine is one tokenized log line. Immutable once produced.
type LogLine struct {
	// Time is the wall-clock time of day the platform stamped on the line.
	// Debug logs carry no date, so only intra-trace deltas are meaningful.
	Time time.Duration

	// Elapsed is the parenthesized tick value: nanoseconds since the start
	// of the transaction. This is the reliable intra-trace clock.
	Elapsed int64

	// Event is the event-type tag (second pipe field).
	Event string

	// Fields are the remaining pipe-delimited detail fields, in order.
	Fields []string

	// LineNo is the 1-based line number in the raw text.
	LineNo int
}

// Field returns the i-th detail field, or "" when absent.
func (l LogLine) Field(i int) string {
	if i < 0 || i >= len(l.Fields) {
		return ""
	}
	return l.Fields[i]
}

// LastField returns the final detail field, or "" for a bare event.
func (l LogLine) LastField() string {
	if len(l.Fields) == 0 {
		return ""
	}
	return l.Fields[len(l.Fields)-1]
}

// IsEntry reports whether the event opens a new execution scope.
func (l LogLine) IsEntry() bool {
	switch l.Event {
	case EventCodeUnitStarted, EventMethodEntry, EventConstructorEntry, EventSystemMethodEntry:
		return true
	}
	return false
}

// IsExit reports whether the event closes an execution scope.
func (l LogLine) IsExit() bool {
	switch l.Event {
	case EventCodeUnitFinished, EventMethodExit, EventConstructorExit, EventSystemMethodExit:
		return true
	}
	return false
}

// ExitFor returns the exit tag paired with an entry tag, or "" when the
// tag is not an entry event.
func ExitFor(entry string) string {
	switch entry {
	case EventCodeUnitStarted:
		return EventCodeUnitFinished
	case EventMethodEntry:
		return EventMethodExit
	case EventConstructorEntry:
		return EventConstructorExit
	case EventSystemMethodEntry:
		return EventSystemMethodExit
	}
	return ""
}
