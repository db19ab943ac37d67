package grouping

import (
	"strings"

	"apexlens/internal/metadata"
)

// detectReentry counts trigger-named members per name; any name seen more
// than once contributes count-1 to the total, i.e. the cascading
// re-invocations beyond the first.
func detectReentry(tg *TransactionGroup) {
	counts := make(map[string]int)
	for _, m := range tg.Members {
		if strings.Contains(strings.ToLower(m.CodeUnit), "trigger") {
			counts[m.CodeUnit]++
		}
	}

	total := 0
	reentered := make(map[string]int)
	for name, n := range counts {
		if n > 1 {
			reentered[name] = n
			total += n - 1
		}
	}
	if total > 0 {
		tg.ReentryCounts = reentered
	}
	tg.TotalReentries = total
}

// detectMixedContext flags groups spanning more than one known execution
// context and records the most frequent one as primary.
func detectMixedContext(tg *TransactionGroup) {
	counts := make(map[metadata.ExecutionContext]int)
	for _, m := range tg.Members {
		if m.Context != metadata.ContextUnknown {
			counts[m.Context]++
		}
	}

	tg.PrimaryContext = metadata.ContextUnknown
	best := 0
	for ctx, n := range counts {
		if n > best || (n == best && ctx < tg.PrimaryContext) {
			tg.PrimaryContext = ctx
			best = n
		}
	}
	tg.MixedContext = len(counts) > 1
}
