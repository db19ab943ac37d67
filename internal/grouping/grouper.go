package grouping

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"apexlens/internal/metadata"
)

// DefaultWindow is the trailing correlation window after a seed record.
const DefaultWindow = 10 * time.Second

// Grouper correlates metadata records into transaction groups. Immutable
// configuration; safe for concurrent use.
type Grouper struct {
	window time.Duration
}

// NewGrouper creates a grouper with the given correlation window. A
// non-positive window falls back to DefaultWindow.
func NewGrouper(window time.Duration) *Grouper {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Grouper{window: window}
}

// Group partitions records into transaction groups. Repeatedly seeds on
// the earliest ungrouped record, collects same-user records inside the
// trailing window, prefers the record-id-matching subset when it keeps
// more than one member, and removes the chosen set from the pool.
func (g *Grouper) Group(records []*metadata.Metadata) []*TransactionGroup {
	pool := make([]*metadata.Metadata, len(records))
	copy(pool, records)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Timestamp.Before(pool[j].Timestamp)
	})

	var groups []*TransactionGroup
	for len(pool) > 0 {
		seed := pool[0]

		var members []*metadata.Metadata
		for _, r := range pool {
			if r.UserID != seed.UserID {
				continue
			}
			if r.Timestamp.Sub(seed.Timestamp) <= g.window {
				members = append(members, r)
			}
		}

		// Record-id refinement: only worthwhile when the narrowed set
		// still correlates more than one log. Shrinking to a singleton
		// reverts to the plain time+user set.
		if seed.RecordID != "" {
			var matched []*metadata.Metadata
			for _, r := range members {
				if r.RecordID == seed.RecordID {
					matched = append(matched, r)
				}
			}
			if len(matched) > 1 {
				members = matched
			}
		}

		groups = append(groups, g.build(members))
		pool = remove(pool, members)
	}
	return groups
}

func (g *Grouper) build(members []*metadata.Metadata) *TransactionGroup {
	tg := &TransactionGroup{
		ID:         uuid.New().String(),
		User:       members[0].UserID,
		RecordID:   members[0].RecordID,
		StartTime:  members[0].Timestamp,
		Standalone: len(members) == 1,
		Members:    members,
	}

	end := tg.StartTime
	for _, m := range members {
		if m.Timestamp.Before(tg.StartTime) {
			tg.StartTime = m.Timestamp
		}
		if e := m.Timestamp.Add(m.Duration); e.After(end) {
			end = e
		}
		tg.Metrics.Queries += m.Limits.Queries
		tg.Metrics.QueryRows += m.Limits.QueryRows
		tg.Metrics.CPUTimeMs += m.Limits.CPUTimeMs
		tg.Metrics.DMLStatements += m.Limits.DMLStatements
		tg.Metrics.DMLRows += m.Limits.DMLRows
		if m.Limits.HeapBytes > tg.Metrics.HeapBytes {
			tg.Metrics.HeapBytes = m.Limits.HeapBytes
		}
	}
	tg.EndTime = end
	tg.TotalDuration = end.Sub(tg.StartTime)

	tg.Phases = detectPhases(members)
	detectReentry(tg)
	detectMixedContext(tg)
	tg.Recommendations = recommend(tg)
	return tg
}

func remove(pool, members []*metadata.Metadata) []*metadata.Metadata {
	grouped := make(map[*metadata.Metadata]bool, len(members))
	for _, m := range members {
		grouped[m] = true
	}
	kept := pool[:0]
	for _, r := range pool {
		if !grouped[r] {
			kept = append(kept, r)
		}
	}
	return kept
}
