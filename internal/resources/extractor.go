package resources

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"apexlens/internal/apexlog"
)

// limitLookahead bounds the continuation-line scan after a limit-usage
// marker. Blocks longer than this are truncated, matching long-standing
// observable behavior.
const limitLookahead = 20

// limitLineRe matches continuation lines of a limit-usage block:
// "  Number of SOQL queries: 10 out of 100"
var limitLineRe = regexp.MustCompile(`^\s*(?:Number of |Maximum )?(.+?): (\d+) out of (\d+)`)

// limitNames maps the raw label (lower-cased, "Number of"/"Maximum"
// stripped) to a canonical counter name. Labels not listed are ignored.
// The CPU label appears both with and without the unit suffix depending
// on API version.
var limitNames = map[string]string{
	"soql queries":   LimitQueries,
	"query rows":     LimitQueryRows,
	"cpu time":       LimitCPUTimeMs,
	"cpu time (ms)":  LimitCPUTimeMs,
	"heap size":      LimitHeapBytes,
	"dml statements": LimitDMLStatements,
	"dml rows":       LimitDMLRows,
}

var rowsRe = regexp.MustCompile(`Rows:(\d+)`)

// Extract runs the resource pass over a tokenized trace. Database
// operations use an independent begin/end machine per kind; concurrent
// begins of the same kind are not modeled.
func Extract(res *apexlog.Result) *Result {
	out := &Result{}

	var soql, dml openOp

	for _, ll := range res.Lines {
		switch ll.Event {
		case apexlog.EventSOQLBegin:
			soql = openOp{active: true, statement: ll.LastField(), start: ll.Elapsed, line: ll.LineNo}

		case apexlog.EventSOQLEnd:
			if !soql.active {
				continue
			}
			out.Operations = append(out.Operations, DatabaseOperation{
				Kind:      SOQL,
				Statement: soql.statement,
				RowCount:  rowCount(ll),
				Duration:  time.Duration(ll.Elapsed - soql.start),
				LineNo:    soql.line,
			})
			soql.active = false

		case apexlog.EventDMLBegin:
			dml = openOp{active: true, statement: dmlStatement(ll), start: ll.Elapsed, line: ll.LineNo}

		case apexlog.EventDMLEnd:
			if !dml.active {
				continue
			}
			out.Operations = append(out.Operations, DatabaseOperation{
				Kind:      DML,
				Statement: dml.statement,
				RowCount:  dml.rowsFromBegin(),
				Duration:  time.Duration(ll.Elapsed - dml.start),
				LineNo:    dml.line,
			})
			dml.active = false

		case apexlog.EventLimitUsage, apexlog.EventCumulativeLimits:
			if snap, ok := scanLimitBlock(res.Raw, ll.LineNo); ok {
				out.Snapshots = append(out.Snapshots, snap)
			}
		}
	}
	return out
}

// openOp tracks an in-flight begin/end pair for one operation kind. The
// machines are not reentrant: a second begin of the same kind before the
// matching end replaces the first.
type openOp struct {
	active    bool
	statement string
	start     int64
	line      int
}

// rowsFromBegin recovers the row count a DML begin line declared, since
// the end line carries none.
func (o openOp) rowsFromBegin() int {
	if m := rowsRe.FindStringSubmatch(o.statement); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

func rowCount(ll apexlog.LogLine) int {
	for _, f := range ll.Fields {
		if m := rowsRe.FindStringSubmatch(f); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return 0
}

// dmlStatement renders "Op:Insert Type:Account Rows:5" style fields into
// one statement string, skipping the bracketed source-line field.
func dmlStatement(ll apexlog.LogLine) string {
	parts := make([]string, 0, len(ll.Fields))
	for _, f := range ll.Fields {
		if strings.HasPrefix(f, "[") {
			continue
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, " ")
}

// scanLimitBlock reads up to limitLookahead continuation lines after the
// marker at markerLine (1-based), collecting counter pairs. Lines that
// parse as ordinary log lines end the block.
func scanLimitBlock(raw []string, markerLine int) (GovernorLimitSnapshot, bool) {
	snap := GovernorLimitSnapshot{
		Counters: make(map[string]Counter),
		LineNo:   markerLine,
	}
	for i := markerLine; i < len(raw) && i-markerLine < limitLookahead; i++ {
		line := raw[i]
		m := limitLineRe.FindStringSubmatch(line)
		if m == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if strings.Contains(line, ")|") {
				break // next real log line, block over
			}
			continue
		}
		name, ok := limitNames[strings.ToLower(strings.TrimSpace(m[1]))]
		if !ok {
			continue
		}
		used, _ := strconv.Atoi(m[2])
		max, _ := strconv.Atoi(m[3])
		snap.Counters[name] = Counter{Used: used, Max: max}
	}
	return snap, len(snap.Counters) > 0
}
