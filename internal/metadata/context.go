package metadata

import "strings"

// ExecutionContext is the broad reason a trace was produced.
type ExecutionContext string

const (
	ContextInteractive ExecutionContext = "interactive"
	ContextBatch       ExecutionContext = "batch"
	ContextIntegration ExecutionContext = "integration"
	ContextScheduled   ExecutionContext = "scheduled"
	ContextAsync       ExecutionContext = "async"
	ContextUnknown     ExecutionContext = "unknown"
)

// Keyword sets per context. Matching is case-insensitive over the head
// window plus the code-unit name. Precedence is fixed:
// batch > integration > scheduled > async > interactive keyword >
// trigger-name fallback > unknown.
var (
	batchKeywords = []string{
		"database.batch", "batchable", "batchapexworker", "batch apex",
	}
	integrationKeywords = []string{
		"restcontext", "/services/apexrest", "/services/soap",
		"webservice", "inbound email",
	}
	scheduledKeywords = []string{
		"schedulable", "system.schedule", "crontrigger", "scheduled apex",
	}
	asyncKeywords = []string{
		"queueable", "future handler", "@future", "asyncapexjob", "finalizer",
	}
	interactiveKeywords = []string{
		"aura", "lightning", "@auraenabled", "vfremoting", "/apex/",
		"visualforce", "lwc",
	}
)

// ClassifyContext determines the execution context from header text and
// the first code-unit name.
func ClassifyContext(headText, codeUnit string) ExecutionContext {
	haystack := strings.ToLower(headText + "\n" + codeUnit)

	for _, set := range []struct {
		keywords []string
		ctx      ExecutionContext
	}{
		{batchKeywords, ContextBatch},
		{integrationKeywords, ContextIntegration},
		{scheduledKeywords, ContextScheduled},
		{asyncKeywords, ContextAsync},
		{interactiveKeywords, ContextInteractive},
	} {
		for _, kw := range set.keywords {
			if strings.Contains(haystack, kw) {
				return set.ctx
			}
		}
	}

	// A trigger entry point with no stronger signal means a user-driven
	// DML path.
	if strings.Contains(strings.ToLower(codeUnit), "trigger") {
		return ContextInteractive
	}
	return ContextUnknown
}
