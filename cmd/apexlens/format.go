package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"apexlens/internal/analyzer"
	"apexlens/internal/grouping"
	"apexlens/internal/resources"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *analyzer.TraceAnalysis:
		return formatAnalysisHuman(v), nil
	case *analyzer.FolderResult:
		return formatFolderHuman(v), nil
	case []*grouping.TransactionGroup:
		return formatGroupsHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatAnalysisHuman(ta *analyzer.TraceAnalysis) string {
	var b strings.Builder

	b.WriteString("Trace Analysis\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if ta.Unparseable {
		b.WriteString("No parseable log lines found.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Entry Point: %s\n", ta.EntryPoint))
	b.WriteString(fmt.Sprintf("Duration: %.1fms\n", ta.DurationMs))
	status := "completed"
	if ta.TransactionFailed {
		status = "FAILED"
	}
	b.WriteString(fmt.Sprintf("Status: %s\n\n", status))

	b.WriteString("Governor Limits:\n")
	for _, name := range []string{
		resources.LimitQueries, resources.LimitQueryRows, resources.LimitCPUTimeMs,
		resources.LimitHeapBytes, resources.LimitDMLStatements, resources.LimitDMLRows,
	} {
		c := ta.Limits.Counter(name)
		tier := resources.TierFor(c)
		marker := ""
		if tier >= resources.TierHigh {
			marker = "  !"
		}
		b.WriteString(fmt.Sprintf("  %-16s %d / %d (%s)%s\n", name, c.Used, c.Max, tier, marker))
	}
	b.WriteString("\n")

	if len(ta.Exceptions) > 0 {
		b.WriteString("Exceptions:\n")
		for _, rec := range ta.Exceptions {
			b.WriteString(fmt.Sprintf("  [%s] line %d: %s\n", rec.Severity, rec.LineNo, rec.Message))
		}
		b.WriteString("\n")
	}

	if ta.StackDepth != nil {
		b.WriteString(fmt.Sprintf("Stack Depth: max %d, estimated %d frames, risk %s\n",
			ta.StackDepth.MaxDepth, ta.StackDepth.EstimatedFrames, ta.StackDepth.Risk))
		for _, p := range ta.StackDepth.LoopPatterns {
			b.WriteString(fmt.Sprintf("  loop: %s x%d (%d frames)\n", p.Method, p.CallCount, p.TotalFrames))
		}
		b.WriteString("\n")
	}

	if len(ta.NPlusOne) > 0 {
		b.WriteString("Repeated Query Shapes:\n")
		for _, q := range ta.NPlusOne {
			b.WriteString(fmt.Sprintf("  x%d: %s\n", q.Count, q.Shape))
		}
		b.WriteString("\n")
	}

	if len(ta.Issues) > 0 {
		b.WriteString("Issues:\n")
		for _, is := range ta.Issues {
			b.WriteString(fmt.Sprintf("  ! %s\n", is))
		}
		b.WriteString("\n")
	}

	if len(ta.Recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for i, rec := range ta.Recommendations {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, rec))
		}
	}

	return b.String()
}

func formatFolderHuman(fr *analyzer.FolderResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Folder Scan: %s\n", fr.Folder))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Traces: %d (%d scanned, %d cached, %d skipped)\n",
		len(fr.Traces), fr.Scanned, fr.CacheHits, fr.Skipped))
	if len(fr.ContextCounts) > 0 {
		parts := make([]string, 0, len(fr.ContextCounts))
		for ctx, n := range fr.ContextCounts {
			parts = append(parts, fmt.Sprintf("%s=%d", ctx, n))
		}
		sort.Strings(parts)
		b.WriteString("Contexts: " + strings.Join(parts, ", ") + "\n")
	}
	b.WriteString("\n")

	for _, md := range fr.Traces {
		errMarker := ""
		if md.HasErrors {
			errMarker = "  [errors]"
		}
		b.WriteString(fmt.Sprintf("  %s\n", md.Path))
		b.WriteString(fmt.Sprintf("    %s | %s | %s | %s%s\n",
			md.Timestamp.Format(time.RFC3339), md.UserName, md.Context, md.CodeUnit, errMarker))
	}

	if len(fr.Groups) > 0 {
		b.WriteString("\n")
		b.WriteString(formatGroupsHuman(fr.Groups))
	}

	return b.String()
}

func formatGroupsHuman(groups []*grouping.TransactionGroup) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Transaction Groups: %d\n", len(groups)))
	b.WriteString(strings.Repeat("-", 60) + "\n")

	for i, g := range groups {
		kind := "group"
		if g.Standalone {
			kind = "standalone"
		}
		b.WriteString(fmt.Sprintf("\n%d. %s (%s) user=%s traces=%d duration=%s\n",
			i+1, g.ID, kind, g.User, len(g.Members), g.TotalDuration))
		if g.RecordID != "" {
			b.WriteString(fmt.Sprintf("   record: %s\n", g.RecordID))
		}
		if g.MixedContext {
			b.WriteString(fmt.Sprintf("   mixed context (primary: %s)\n", g.PrimaryContext))
		}
		if g.TotalReentries > 0 {
			b.WriteString(fmt.Sprintf("   trigger re-entries: %d\n", g.TotalReentries))
		}
		for _, ph := range g.Phases {
			b.WriteString(fmt.Sprintf("   phase %s (%s): %d traces, %s", ph.Name, ph.Type, len(ph.MemberPaths), ph.Duration))
			if ph.SequentialLoading {
				b.WriteString(fmt.Sprintf(", sequential (could save %s)", ph.ParallelSavings))
			}
			b.WriteString("\n")
		}
		for _, rec := range g.Recommendations {
			b.WriteString(fmt.Sprintf("   > %s\n", rec))
		}
	}

	return b.String()
}
