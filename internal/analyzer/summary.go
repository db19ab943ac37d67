package analyzer

import (
	"fmt"

	"apexlens/internal/exceptions"
	"apexlens/internal/resources"
	"apexlens/internal/stackdepth"
)

// limitOrder fixes the counter iteration order for issue text.
var limitOrder = []struct {
	name  string
	label string
}{
	{resources.LimitQueries, "SOQL queries"},
	{resources.LimitQueryRows, "query rows"},
	{resources.LimitDMLStatements, "DML statements"},
	{resources.LimitDMLRows, "DML rows"},
	{resources.LimitCPUTimeMs, "CPU time"},
	{resources.LimitHeapBytes, "heap size"},
}

func buildSummary(ta *TraceAnalysis) string {
	status := "completed"
	if ta.TransactionFailed {
		status = "failed"
	}
	return fmt.Sprintf("%s %s in %.0f ms with %d database operations and %d exceptions.",
		ta.EntryPoint, status, ta.DurationMs, len(ta.Operations), len(ta.Exceptions))
}

func buildIssues(ta *TraceAnalysis) []string {
	var issues []string

	for _, rec := range ta.Exceptions {
		switch rec.Severity {
		case exceptions.Fatal:
			issues = append(issues, fmt.Sprintf("Fatal error at line %d: %s", rec.LineNo, rec.Message))
		case exceptions.Unhandled:
			issues = append(issues, fmt.Sprintf("Unhandled exception at line %d: %s", rec.LineNo, rec.Message))
		}
	}

	for _, lim := range limitOrder {
		c := ta.Limits.Counter(lim.name)
		tier := resources.TierFor(c)
		if tier >= resources.TierHigh {
			issues = append(issues, fmt.Sprintf("%s usage is %s: %d of %d consumed.",
				lim.label, tier, c.Used, c.Max))
		}
	}

	for _, q := range ta.NPlusOne {
		issues = append(issues, fmt.Sprintf("Possible N+1 query: executed %d times: %s", q.Count, q.Shape))
	}

	if ta.StackDepth != nil && ta.StackDepth.Risk != stackdepth.Safe {
		issues = append(issues, fmt.Sprintf("Stack depth risk is %s: estimated %d of %d frames.",
			ta.StackDepth.Risk, ta.StackDepth.EstimatedFrames, stackdepth.MaxFrames))
	}

	return issues
}

func buildRecommendations(ta *TraceAnalysis) []string {
	var recs []string

	if len(ta.NPlusOne) > 0 {
		recs = append(recs, "Move repeated queries out of loops and bulkify with collection-based filters.")
	}
	if c := ta.Limits.Counter(resources.LimitQueries); resources.TierFor(c) >= resources.TierHigh {
		recs = append(recs, "Consolidate SOQL queries; consider relationship queries or caching lookups per transaction.")
	}
	if c := ta.Limits.Counter(resources.LimitCPUTimeMs); resources.TierFor(c) >= resources.TierHigh {
		recs = append(recs, "Reduce CPU time: profile hot methods and move heavy work to asynchronous processing.")
	}
	if ta.StackDepth != nil && len(ta.StackDepth.LoopPatterns) > 0 &&
		(ta.StackDepth.Risk == stackdepth.Warning || ta.StackDepth.Risk == stackdepth.Critical) {
		recs = append(recs, "Flatten deeply recursive dispatch: high-frequency handler methods dominate the frame estimate.")
	}
	if ta.TransactionFailed {
		recs = append(recs, "Add exception handling around the failing unit or correct the underlying fault before retrying.")
	}

	return recs
}
