package grouping

import (
	"fmt"
	"time"
)

// Aggregate thresholds for recommendation rules.
const (
	highGroupQueries  = 150
	highGroupCPUMs    = 15000
	slowGroupDuration = 10 * time.Second
	longGroupDuration = 5 * time.Second
)

// recommend applies the fixed-priority rule list. Rules are independent:
// each appends its text when its condition holds, in priority order.
func recommend(tg *TransactionGroup) []string {
	var recs []string

	if tg.MixedContext {
		recs = append(recs, fmt.Sprintf(
			"Multiple execution contexts fire for one action (primary: %s); review automation overlap across contexts.",
			tg.PrimaryContext))
	}
	if tg.TotalReentries > 0 {
		recs = append(recs, fmt.Sprintf(
			"Triggers re-entered %d time(s) within one transaction; guard handlers against cascading updates.",
			tg.TotalReentries))
	}
	for _, p := range tg.Phases {
		if p.Type == PhaseFrontend && p.SequentialLoading {
			recs = append(recs, fmt.Sprintf(
				"Frontend components loaded sequentially; parallelizing could save about %d ms.",
				p.ParallelSavings.Milliseconds()))
			break
		}
	}
	for _, p := range tg.Phases {
		if p.Type == PhaseBackend && p.Async {
			recs = append(recs,
				"Asynchronous work runs inside the user-facing window; confirm the UI does not block on it.")
			break
		}
	}
	for _, p := range tg.Phases {
		if p.GapToNext > 0 {
			recs = append(recs, fmt.Sprintf(
				"A %d ms gap separates %s from the next phase; look for client-side or queueing latency.",
				p.GapToNext.Milliseconds(), p.Name))
		}
	}
	if tg.Metrics.Queries > highGroupQueries {
		recs = append(recs, fmt.Sprintf(
			"The action issues %d SOQL queries across its logs; consolidate shared lookups.",
			tg.Metrics.Queries))
	}
	if tg.Metrics.CPUTimeMs > highGroupCPUMs {
		recs = append(recs, fmt.Sprintf(
			"Aggregate CPU time is %d ms; profile the heaviest transaction in the group.",
			tg.Metrics.CPUTimeMs))
	}
	switch {
	case tg.TotalDuration > slowGroupDuration:
		recs = append(recs, fmt.Sprintf(
			"End-to-end duration is %.1f s; users will perceive this action as slow.",
			tg.TotalDuration.Seconds()))
	case tg.TotalDuration > longGroupDuration:
		recs = append(recs, fmt.Sprintf(
			"End-to-end duration is %.1f s; worth watching as data volumes grow.",
			tg.TotalDuration.Seconds()))
	}

	return recs
}
