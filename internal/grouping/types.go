// Package grouping correlates many scanned traces into transaction
// groups: clusters of logs inferred to belong to one end-to-end user
// action, with per-group phases, pattern flags, and recommendations.
package grouping

import (
	"time"

	"apexlens/internal/metadata"
)

// PhaseType splits a group's activity between platform automation and UI
// execution.
type PhaseType string

const (
	PhaseBackend  PhaseType = "backend"
	PhaseFrontend PhaseType = "frontend"
)

// LogPhase is a sub-interval of a group attributed to one phase type.
type LogPhase struct {
	Name              string               `json:"name"`
	Type              PhaseType            `json:"type"`
	Members           []*metadata.Metadata `json:"-"`
	MemberPaths       []string             `json:"memberPaths"`
	Duration          time.Duration        `json:"duration"`
	Async             bool                 `json:"async"`
	SequentialLoading bool                 `json:"sequentialLoading"`
	ParallelSavings   time.Duration        `json:"parallelSavings"`
	GapToNext         time.Duration        `json:"gapToNext"`
}

// Metrics aggregates limit usage across a group. Sums throughout, except
// heap, which takes the member maximum.
type Metrics struct {
	Queries       int `json:"queries"`
	QueryRows     int `json:"queryRows"`
	CPUTimeMs     int `json:"cpuTimeMs"`
	HeapBytes     int `json:"heapBytes"`
	DMLStatements int `json:"dmlStatements"`
	DMLRows       int `json:"dmlRows"`
}

// TransactionGroup is one correlated cluster. Membership is fixed at
// construction and never mutated afterward.
type TransactionGroup struct {
	ID         string               `json:"id"`
	StartTime  time.Time            `json:"startTime"`
	EndTime    time.Time            `json:"endTime"`
	User       string               `json:"user"`
	RecordID   string               `json:"recordId,omitempty"`
	Standalone bool                 `json:"standalone"`
	Members    []*metadata.Metadata `json:"members"`

	Phases         []LogPhase                 `json:"phases,omitempty"`
	ReentryCounts  map[string]int             `json:"reentryCounts,omitempty"`
	TotalReentries int                        `json:"totalReentries"`
	MixedContext   bool                       `json:"mixedContext"`
	PrimaryContext metadata.ExecutionContext  `json:"primaryContext"`
	TotalDuration  time.Duration              `json:"totalDuration"`
	Metrics        Metrics                    `json:"metrics"`

	Recommendations []string `json:"recommendations,omitempty"`
}
