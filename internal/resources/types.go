// Package resources extracts database operations and governor-limit
// snapshots from a tokenized trace.
package resources

import "time"

// OperationKind distinguishes query from DML operations.
type OperationKind string

const (
	SOQL OperationKind = "soql"
	DML  OperationKind = "dml"
)

// DatabaseOperation is one completed SOQL query or DML statement.
type DatabaseOperation struct {
	Kind      OperationKind `json:"kind"`
	Statement string        `json:"statement"` // query text, or "Op Type" for DML
	RowCount  int           `json:"rowCount"`
	Duration  time.Duration `json:"duration"`
	LineNo    int           `json:"lineNo"`
}

// Canonical governor-limit counter names.
const (
	LimitQueries       = "soqlQueries"
	LimitQueryRows     = "queryRows"
	LimitCPUTimeMs     = "cpuTimeMs"
	LimitHeapBytes     = "heapBytes"
	LimitDMLStatements = "dmlStatements"
	LimitDMLRows       = "dmlRows"
)

// defaultLimits are the platform's documented synchronous-transaction
// ceilings, used for any counter a snapshot does not mention.
var defaultLimits = map[string]int{
	LimitQueries:       100,
	LimitQueryRows:     50000,
	LimitCPUTimeMs:     10000,
	LimitHeapBytes:     6000000,
	LimitDMLStatements: 150,
	LimitDMLRows:       10000,
}

// Counter is one used/ceiling pair from a limit snapshot.
type Counter struct {
	Used int `json:"used"`
	Max  int `json:"max"`
}

// GovernorLimitSnapshot is one limit-usage block. Snapshots accumulate in
// appearance order; the last one is the authoritative end-of-transaction
// state.
type GovernorLimitSnapshot struct {
	Counters map[string]Counter `json:"counters"`
	LineNo   int                `json:"lineNo"`
}

// Counter returns the named counter, falling back to zero usage against
// the platform default ceiling when the snapshot never mentioned it.
func (s GovernorLimitSnapshot) Counter(name string) Counter {
	if c, ok := s.Counters[name]; ok {
		return c
	}
	return Counter{Used: 0, Max: defaultLimits[name]}
}

// Result is the output of one extraction pass.
type Result struct {
	Operations []DatabaseOperation     `json:"operations"`
	Snapshots  []GovernorLimitSnapshot `json:"snapshots"`
}

// FinalSnapshot returns the last snapshot, or a synthetic all-defaults
// snapshot when the trace carried none. All percentage-based decisions
// downstream read this one.
func (r *Result) FinalSnapshot() GovernorLimitSnapshot {
	if len(r.Snapshots) > 0 {
		return r.Snapshots[len(r.Snapshots)-1]
	}
	return GovernorLimitSnapshot{Counters: map[string]Counter{}}
}
