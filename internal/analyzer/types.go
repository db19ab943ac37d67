// Package analyzer runs the full single-trace pipeline: tokenize, build
// the execution tree, then extract resources, exceptions, and stack-depth
// risk, combining everything into one TraceAnalysis.
package analyzer

import (
	"time"

	"apexlens/internal/exceptions"
	"apexlens/internal/resources"
	"apexlens/internal/stackdepth"
	"apexlens/internal/tree"
)

// MethodStatistics aggregates calls of one method or code unit.
type MethodStatistics struct {
	Name        string        `json:"name"`
	CallCount   int           `json:"callCount"`
	TotalTime   time.Duration `json:"totalTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
}

// TraceAnalysis is the complete structured result for one trace. Every
// analysis call produces a fresh, immutable result graph; nothing is
// cached or shared between calls.
type TraceAnalysis struct {
	ID string `json:"id"`

	// Unparseable is set when the input contained no grammar-valid lines.
	Unparseable bool `json:"unparseable,omitempty"`

	EntryPoint        string        `json:"entryPoint"`
	DurationMs        float64       `json:"durationMs"`
	TransactionFailed bool          `json:"transactionFailed"`

	Tree       *tree.ExecutionNode               `json:"tree,omitempty"`
	Operations []resources.DatabaseOperation     `json:"operations,omitempty"`
	Limits     resources.GovernorLimitSnapshot   `json:"limits"`
	Exceptions []exceptions.Record               `json:"exceptions,omitempty"`
	StackDepth *stackdepth.Analysis              `json:"stackDepth,omitempty"`
	NPlusOne   []resources.QueryShapeIssue       `json:"nPlusOne,omitempty"`

	// MethodStats is keyed by method/code-unit name.
	MethodStats map[string]*MethodStatistics `json:"methodStats,omitempty"`

	Summary         string   `json:"summary"`
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}
