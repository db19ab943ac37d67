package grouping

import (
	"sort"
	"strings"
	"time"

	"apexlens/internal/metadata"
)

// Sequential-loading thresholds for frontend phases.
const (
	sequentialGap    = 50 * time.Millisecond
	sequentialSpread = 100 * time.Millisecond
	interPhaseGap    = 100 * time.Millisecond
)

var backendSignatures = []string{
	"trigger", "flow", "process builder", "processbuilder",
	"validation", "workflow", "future", "queueable", "batch",
}

var frontendSignatures = []string{
	"aura", "lwc", "lightning", "controller", "@auraenabled", "vfremoting",
}

func isBackend(m *metadata.Metadata) bool {
	name := strings.ToLower(m.CodeUnit)
	for _, sig := range backendSignatures {
		if strings.Contains(name, sig) {
			return true
		}
	}
	return false
}

func isFrontend(m *metadata.Metadata) bool {
	name := strings.ToLower(m.CodeUnit)
	for _, sig := range frontendSignatures {
		if strings.Contains(name, sig) {
			return true
		}
	}
	return m.Context == metadata.ContextInteractive && !isBackend(m)
}

// detectPhases partitions members into non-exclusive backend/frontend
// buckets; each populated bucket becomes one phase.
func detectPhases(members []*metadata.Metadata) []LogPhase {
	var backend, frontend []*metadata.Metadata
	for _, m := range members {
		if isBackend(m) {
			backend = append(backend, m)
		}
		if isFrontend(m) {
			frontend = append(frontend, m)
		}
	}

	var phases []LogPhase
	if len(backend) > 0 {
		phases = append(phases, buildPhase("Backend automation", PhaseBackend, backend))
	}
	if len(frontend) > 0 {
		p := buildPhase("Frontend loading", PhaseFrontend, frontend)
		classifyLoading(&p)
		phases = append(phases, p)
	}

	// Inter-phase latency: gaps past the threshold between one phase's
	// end and the next phase's start.
	sort.SliceStable(phases, func(i, j int) bool {
		return phaseStart(phases[i]).Before(phaseStart(phases[j]))
	})
	for i := 0; i+1 < len(phases); i++ {
		gap := phaseStart(phases[i+1]).Sub(phaseEnd(phases[i]))
		if gap > interPhaseGap {
			phases[i].GapToNext = gap
		}
	}
	return phases
}

func buildPhase(name string, t PhaseType, members []*metadata.Metadata) LogPhase {
	p := LogPhase{Name: name, Type: t, Members: members}
	for _, m := range members {
		p.MemberPaths = append(p.MemberPaths, m.Path)
		p.Duration += m.Duration
		if m.Context == metadata.ContextAsync || m.Context == metadata.ContextBatch {
			p.Async = true
		}
	}
	return p
}

// classifyLoading decides sequential vs parallel for a frontend phase:
// sorted by start, any member starting well after the previous member's
// end, or a wide overall start spread, means the UI loaded sequentially.
// Parallel savings is the sum of durations minus the longest one.
func classifyLoading(p *LogPhase) {
	if len(p.Members) < 2 {
		return
	}
	sorted := make([]*metadata.Metadata, len(p.Members))
	copy(sorted, p.Members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	sequential := false
	for i := 1; i < len(sorted); i++ {
		prevEnd := sorted[i-1].Timestamp.Add(sorted[i-1].Duration)
		if sorted[i].Timestamp.Sub(prevEnd) > sequentialGap {
			sequential = true
			break
		}
	}
	spread := sorted[len(sorted)-1].Timestamp.Sub(sorted[0].Timestamp)
	if spread > sequentialSpread {
		sequential = true
	}
	if !sequential {
		return
	}

	p.SequentialLoading = true
	var sum, longest time.Duration
	for _, m := range sorted {
		sum += m.Duration
		if m.Duration > longest {
			longest = m.Duration
		}
	}
	p.ParallelSavings = sum - longest
}

func phaseStart(p LogPhase) time.Time {
	start := p.Members[0].Timestamp
	for _, m := range p.Members[1:] {
		if m.Timestamp.Before(start) {
			start = m.Timestamp
		}
	}
	return start
}

func phaseEnd(p LogPhase) time.Time {
	end := p.Members[0].Timestamp.Add(p.Members[0].Duration)
	for _, m := range p.Members[1:] {
		if e := m.Timestamp.Add(m.Duration); e.After(end) {
			end = e
		}
	}
	return end
}
