// Package stackdepth estimates how close a transaction came to the
// platform's stack-frame ceiling. Frame costs come from an ordered
// name-substring rule table; they are heuristic proxies, never measured
// values.
package stackdepth

import (
	"sort"
	"strings"

	"apexlens/internal/apexlog"
)

// MaxFrames is the platform's documented stack-frame ceiling.
const MaxFrames = 1000

// loopCallThreshold is the call count past which a method is treated as a
// loop-pattern candidate.
const loopCallThreshold = 10

// RiskLevel buckets the estimated frame total against MaxFrames.
type RiskLevel string

const (
	Safe     RiskLevel = "safe"
	Moderate RiskLevel = "moderate"
	Warning  RiskLevel = "warning"
	Critical RiskLevel = "critical"
)

// LoopMethodPattern is one method called often enough to matter for frame
// estimation.
type LoopMethodPattern struct {
	Method        string `json:"method"`
	CallCount     int    `json:"callCount"`
	FramesPerCall int    `json:"framesPerCall"`
	TotalFrames   int    `json:"totalFrames"`
}

// Analysis is the result of one stack-depth pass.
type Analysis struct {
	MaxDepth        int                 `json:"maxDepth"`
	MethodAtMax     string              `json:"methodAtMax"`
	LoopPatterns    []LoopMethodPattern `json:"loopPatterns,omitempty"`
	DebugOverhead   int                 `json:"debugOverhead"`
	EstimatedFrames int                 `json:"estimatedFrames"`
	Risk            RiskLevel           `json:"risk"`
}

// frameRules is the ordered heuristic table for frames-per-call. The
// first matching substring wins; dispatch-heavy naming costs more.
var frameRules = []struct {
	substr string
	frames int
}{
	{"TriggerHandler", 4},
	{"Dispatcher", 4},
	{"Handler", 3},
	{"Factory", 3},
	{"Service", 2},
	{"Helper", 2},
	{"invoke", 3},
	{"dispatch", 3},
}

const defaultFramesPerCall = 1

func framesPerCall(method string) int {
	for _, r := range frameRules {
		if containsFold(method, r.substr) {
			return r.frames
		}
	}
	return defaultFramesPerCall
}

// Analyze runs an independent depth-counting pass over the line stream.
// maxVerbosity adds logging overhead scaled from the entry-event count,
// since FINEST-level instrumentation itself consumes frames.
func Analyze(res *apexlog.Result) *Analysis {
	a := &Analysis{}

	depth := 0
	entryEvents := 0
	calls := make(map[string]int)

	for _, ll := range res.Lines {
		switch {
		case ll.IsEntry():
			depth++
			entryEvents++
			name := ll.LastField()
			calls[name]++
			if depth > a.MaxDepth {
				a.MaxDepth = depth
				a.MethodAtMax = name
			}
		case ll.IsExit():
			if depth > 0 {
				depth--
			}
		}
	}

	for method, count := range calls {
		if count <= loopCallThreshold {
			continue
		}
		per := framesPerCall(method)
		a.LoopPatterns = append(a.LoopPatterns, LoopMethodPattern{
			Method:        method,
			CallCount:     count,
			FramesPerCall: per,
			TotalFrames:   count * per,
		})
	}
	sortPatterns(a.LoopPatterns)

	if res.MaxVerbosity() {
		a.DebugOverhead = entryEvents / 10
	}

	a.EstimatedFrames = a.MaxDepth + a.DebugOverhead
	for _, p := range a.LoopPatterns {
		a.EstimatedFrames += p.TotalFrames
	}
	a.Risk = riskFor(a.EstimatedFrames)
	return a
}

func riskFor(frames int) RiskLevel {
	switch {
	case frames > 800:
		return Critical
	case frames > 600:
		return Warning
	case frames > 300:
		return Moderate
	default:
		return Safe
	}
}

func sortPatterns(ps []LoopMethodPattern) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].TotalFrames != ps[j].TotalFrames {
			return ps[i].TotalFrames > ps[j].TotalFrames
		}
		return ps[i].Method < ps[j].Method
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
