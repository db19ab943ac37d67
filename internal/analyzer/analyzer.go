package analyzer

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"apexlens/internal/apexlog"
	"apexlens/internal/exceptions"
	"apexlens/internal/resources"
	"apexlens/internal/stackdepth"
	"apexlens/internal/tree"
)

// Analyzer is a stateless single-trace pipeline. The zero value is not
// usable; construct with New. Analyzers are safe for concurrent use from
// multiple goroutines because all mutable state is call-local.
type Analyzer struct{}

// New creates a trace analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze parses one raw trace body into a TraceAnalysis. It never
// returns an error for malformed content: unparseable input yields a
// minimal result with Unparseable set.
func (a *Analyzer) Analyze(text string) *TraceAnalysis {
	ta := &TraceAnalysis{ID: uuid.New().String()}

	res := apexlog.Tokenize(text)
	if res.Empty() {
		ta.Unparseable = true
		ta.Summary = "No valid log lines found; the trace is empty, truncated, or not a debug log."
		ta.Limits = resources.GovernorLimitSnapshot{}
		return ta
	}

	root := tree.Build(res)
	rsrc := resources.Extract(res)

	ta.Tree = root
	ta.Operations = rsrc.Operations
	ta.Limits = rsrc.FinalSnapshot()
	ta.Exceptions = exceptions.Classify(root, res.Raw)
	ta.StackDepth = stackdepth.Analyze(res)
	ta.NPlusOne = resources.DetectNPlusOne(rsrc.Operations)
	ta.MethodStats = methodStats(root)

	ta.EntryPoint = entryPoint(root)
	ta.DurationMs = float64(root.Duration()) / float64(time.Millisecond)
	ta.TransactionFailed = exceptions.AnyFatalOrUnhandled(ta.Exceptions)

	ta.Summary = buildSummary(ta)
	ta.Issues = buildIssues(ta)
	ta.Recommendations = buildRecommendations(ta)
	return ta
}

// triggerNameRe rewrites "X on Y trigger event Z" into "X on Y (Z)".
var triggerNameRe = regexp.MustCompile(`^(.+ on \S+) trigger event (\S+)`)

// entryPoint derives the transaction entry point from the first code unit
// under the root, falling back to the first named child.
func entryPoint(root *tree.ExecutionNode) string {
	for _, c := range root.Children {
		if c.Type == tree.CodeUnit {
			return prettyUnitName(c.Name)
		}
	}
	for _, c := range root.Children {
		if c.Name != "" {
			return c.Name
		}
	}
	return "Unknown"
}

func prettyUnitName(name string) string {
	if m := triggerNameRe.FindStringSubmatch(name); m != nil {
		return m[1] + " (" + m[2] + ")"
	}
	return name
}

// methodStats aggregates call durations over method and code-unit nodes.
func methodStats(root *tree.ExecutionNode) map[string]*MethodStatistics {
	stats := make(map[string]*MethodStatistics)
	root.Walk(func(n *tree.ExecutionNode) {
		if n.Type != tree.Method && n.Type != tree.CodeUnit {
			return
		}
		d := n.Duration()
		s, ok := stats[n.Name]
		if !ok {
			stats[n.Name] = &MethodStatistics{
				Name:      n.Name,
				CallCount: 1,
				TotalTime: d,
				MinTime:   d,
				MaxTime:   d,
			}
			return
		}
		s.CallCount++
		s.TotalTime += d
		if d < s.MinTime {
			s.MinTime = d
		}
		if d > s.MaxTime {
			s.MaxTime = d
		}
	})
	if len(stats) == 0 {
		return nil
	}
	return stats
}
