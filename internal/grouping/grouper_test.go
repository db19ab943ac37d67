package grouping

import (
	"testing"
	"time"

	"apexlens/internal/metadata"
)

var t0 = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func md(path, user string, offset time.Duration, dur time.Duration) *metadata.Metadata {
	return &metadata.Metadata{
		Path:      path,
		UserID:    user,
		Timestamp: t0.Add(offset),
		Duration:  dur,
		CodeUnit:  "Anonymous.run()",
		Context:   metadata.ContextUnknown,
	}
}

func TestGroup_TimeWindow(t *testing.T) {
	g := NewGrouper(0)

	// 3 seconds apart, same user: one group of two.
	groups := g.Group([]*metadata.Metadata{
		md("a.log", "005x", 0, time.Second),
		md("b.log", "005x", 3*time.Second, time.Second),
	})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if len(groups[0].Members) != 2 || groups[0].Standalone {
		t.Errorf("group = %d members standalone=%v, want 2/false", len(groups[0].Members), groups[0].Standalone)
	}

	// 15 seconds apart: two standalone groups.
	groups = g.Group([]*metadata.Metadata{
		md("a.log", "005x", 0, time.Second),
		md("b.log", "005x", 15*time.Second, time.Second),
	})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	for _, tg := range groups {
		if !tg.Standalone || len(tg.Members) != 1 {
			t.Errorf("group %+v should be standalone", tg.Members)
		}
	}
}

func TestGroup_DifferentUsersNeverCorrelate(t *testing.T) {
	groups := NewGrouper(0).Group([]*metadata.Metadata{
		md("a.log", "005x", 0, time.Second),
		md("b.log", "005y", time.Second, time.Second),
	})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
}

func TestGroup_RecordIDRefinement(t *testing.T) {
	a := md("a.log", "005x", 0, time.Second)
	a.RecordID = "500000000000abc"
	b := md("b.log", "005x", time.Second, time.Second)
	b.RecordID = "500000000000abc"
	c := md("c.log", "005x", 2*time.Second, time.Second)
	c.RecordID = "500000000000zzz"

	groups := NewGrouper(0).Group([]*metadata.Metadata{a, b, c})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 (id-matched pair + leftover)", len(groups))
	}
	if len(groups[0].Members) != 2 {
		t.Errorf("first group has %d members, want the id-matched 2", len(groups[0].Members))
	}
}

func TestGroup_RecordIDFallbackToTimeUser(t *testing.T) {
	// Seed has a record id, but no other member shares it: the subset
	// would shrink to one, so the plain time+user set must be kept.
	a := md("a.log", "005x", 0, time.Second)
	a.RecordID = "500000000000abc"
	b := md("b.log", "005x", 2*time.Second, time.Second)
	b.RecordID = "500000000000zzz"

	groups := NewGrouper(0).Group([]*metadata.Metadata{a, b})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if len(groups[0].Members) != 2 {
		t.Errorf("got %d members, want 2 (fallback to time+user)", len(groups[0].Members))
	}
}

func TestGroup_MembershipFixedAtConstruction(t *testing.T) {
	a := md("a.log", "005x", 0, time.Second)
	b := md("b.log", "005x", time.Second, time.Second)
	c := md("c.log", "005x", 20*time.Second, time.Second)

	groups := NewGrouper(0).Group([]*metadata.Metadata{a, b, c})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// Later group never steals earlier members.
	if len(groups[0].Members) != 2 || len(groups[1].Members) != 1 {
		t.Errorf("memberships = %d,%d, want 2,1", len(groups[0].Members), len(groups[1].Members))
	}
}

func TestGroup_AggregateMetrics(t *testing.T) {
	a := md("a.log", "005x", 0, time.Second)
	a.Limits = metadata.LimitSummary{Queries: 10, CPUTimeMs: 500, HeapBytes: 3000}
	b := md("b.log", "005x", time.Second, 2*time.Second)
	b.Limits = metadata.LimitSummary{Queries: 5, CPUTimeMs: 700, HeapBytes: 9000}

	groups := NewGrouper(0).Group([]*metadata.Metadata{a, b})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	m := groups[0].Metrics
	if m.Queries != 15 || m.CPUTimeMs != 1200 {
		t.Errorf("sums = %+v", m)
	}
	if m.HeapBytes != 9000 {
		t.Errorf("HeapBytes = %d, want max 9000", m.HeapBytes)
	}
	// End time is the max of member start+duration.
	if !groups[0].EndTime.Equal(t0.Add(3 * time.Second)) {
		t.Errorf("EndTime = %v, want t0+3s", groups[0].EndTime)
	}
}

func TestGroup_PhaseScenario(t *testing.T) {
	trig1 := md("t1.log", "005x", 0, 400*time.Millisecond)
	trig1.CodeUnit = "CaseTrigger on Case trigger event BeforeUpdate"
	trig1.Context = metadata.ContextInteractive
	trig2 := md("t2.log", "005x", time.Second, 600*time.Millisecond)
	trig2.CodeUnit = "CaseTrigger on Case trigger event AfterUpdate"
	trig2.Context = metadata.ContextInteractive
	aura := md("ui.log", "005x", 2*time.Second, 300*time.Millisecond)
	aura.CodeUnit = "aura://CaseRecordController/ACTION$getCase"
	aura.Context = metadata.ContextInteractive

	groups := NewGrouper(0).Group([]*metadata.Metadata{trig1, trig2, aura})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	tg := groups[0]
	if len(tg.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(tg.Phases))
	}

	var backend, frontend *LogPhase
	for i := range tg.Phases {
		switch tg.Phases[i].Type {
		case PhaseBackend:
			backend = &tg.Phases[i]
		case PhaseFrontend:
			frontend = &tg.Phases[i]
		}
	}
	if backend == nil || frontend == nil {
		t.Fatal("missing a phase type")
	}
	if backend.Duration != time.Second {
		t.Errorf("backend duration = %v, want 1s (sum of trigger durations)", backend.Duration)
	}
	if frontend.Duration != 300*time.Millisecond {
		t.Errorf("frontend duration = %v, want 300ms", frontend.Duration)
	}
}

func TestDetectReentry(t *testing.T) {
	a := md("a.log", "005x", 0, time.Second)
	a.CodeUnit = "CaseTrigger on Case trigger event BeforeUpdate"
	b := md("b.log", "005x", time.Second, time.Second)
	b.CodeUnit = "CaseTrigger on Case trigger event BeforeUpdate"
	c := md("c.log", "005x", 2*time.Second, time.Second)
	c.CodeUnit = "CaseTrigger on Case trigger event BeforeUpdate"

	groups := NewGrouper(0).Group([]*metadata.Metadata{a, b, c})
	tg := groups[0]
	if tg.TotalReentries != 2 {
		t.Errorf("TotalReentries = %d, want 2 (3 firings - 1)", tg.TotalReentries)
	}
	if len(tg.Recommendations) == 0 {
		t.Error("re-entry should produce a recommendation")
	}
}

func TestDetectMixedContext(t *testing.T) {
	a := md("a.log", "005x", 0, time.Second)
	a.Context = metadata.ContextInteractive
	b := md("b.log", "005x", time.Second, time.Second)
	b.Context = metadata.ContextAsync
	u := md("u.log", "005x", 2*time.Second, time.Second)
	u.Context = metadata.ContextUnknown

	groups := NewGrouper(0).Group([]*metadata.Metadata{a, b, u})
	tg := groups[0]
	if !tg.MixedContext {
		t.Error("MixedContext = false, want true")
	}
	if tg.PrimaryContext == metadata.ContextUnknown {
		t.Error("PrimaryContext should be a known context")
	}

	// A single known context is not mixed.
	groups = NewGrouper(0).Group([]*metadata.Metadata{
		md("x.log", "005x", 0, time.Second),
	})
	if groups[0].MixedContext {
		t.Error("single unknown-context member flagged as mixed")
	}
}

func TestSequentialLoading(t *testing.T) {
	// Two frontend logs, the second starting well after the first ends.
	a := md("a.log", "005x", 0, 100*time.Millisecond)
	a.CodeUnit = "aura://ListController/ACTION$getItems"
	b := md("b.log", "005x", 400*time.Millisecond, 200*time.Millisecond)
	b.CodeUnit = "aura://DetailController/ACTION$getDetail"

	groups := NewGrouper(0).Group([]*metadata.Metadata{a, b})
	var fp *LogPhase
	for i := range groups[0].Phases {
		if groups[0].Phases[i].Type == PhaseFrontend {
			fp = &groups[0].Phases[i]
		}
	}
	if fp == nil {
		t.Fatal("missing frontend phase")
	}
	if !fp.SequentialLoading {
		t.Error("SequentialLoading = false, want true")
	}
	if fp.ParallelSavings != 100*time.Millisecond {
		t.Errorf("ParallelSavings = %v, want 100ms (300ms sum - 200ms max)", fp.ParallelSavings)
	}

	// Overlapping loads are parallel.
	c := md("c.log", "005x", 0, 200*time.Millisecond)
	c.CodeUnit = "aura://AController/ACTION$a"
	d := md("d.log", "005x", 10*time.Millisecond, 200*time.Millisecond)
	d.CodeUnit = "aura://BController/ACTION$b"
	groups = NewGrouper(0).Group([]*metadata.Metadata{c, d})
	for _, p := range groups[0].Phases {
		if p.Type == PhaseFrontend && p.SequentialLoading {
			t.Error("overlapping frontend loads flagged sequential")
		}
	}
}
