// Package metadata implements the fast per-file scanner: a bounded
// head/tail regex pass that summarizes a trace without building its
// execution tree. It is the gate used to decide which files deserve a
// full parse, so it must stay one to two orders of magnitude cheaper.
package metadata

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default window bounds. The head carries the header, user info, and the
// first code unit; the tail carries the cumulative limit block and the
// finish marker.
const (
	DefaultHeadLines = 5000
	DefaultTailLines = 1000
)

// noCodeUnit is the placeholder used when the head window carried no
// code-unit or method name; partial metadata beats an aborted batch scan.
const noCodeUnit = "(no code unit found)"

// LimitSummary is the counter subset the scanner lifts from the tail.
type LimitSummary struct {
	Queries       int `json:"queries"`
	QueryRows     int `json:"queryRows"`
	CPUTimeMs     int `json:"cpuTimeMs"`
	HeapBytes     int `json:"heapBytes"`
	DMLStatements int `json:"dmlStatements"`
	DMLRows       int `json:"dmlRows"`
}

// Metadata is the lightweight per-file summary.
type Metadata struct {
	Path      string           `json:"path"`
	UserID    string           `json:"userId"`
	UserName  string           `json:"userName"`
	Timestamp time.Time        `json:"timestamp"`
	Duration  time.Duration    `json:"duration"`
	CodeUnit  string           `json:"codeUnit"`
	HasErrors bool             `json:"hasErrors"`
	RecordID  string           `json:"recordId,omitempty"`
	Context   ExecutionContext `json:"context"`
	Limits    LimitSummary     `json:"limits"`
}

// Window is the bounded slice of a file the scanner reads.
type Window struct {
	Head []string
	Tail []string
}

// WindowFromText builds a scan window from full text, for callers that
// already hold the body in memory.
func WindowFromText(text string, headN, tailN int) Window {
	lines := strings.Split(text, "\n")
	w := Window{}
	if len(lines) <= headN {
		w.Head = lines
	} else {
		w.Head = lines[:headN]
	}
	if len(lines) <= tailN {
		w.Tail = lines
	} else {
		w.Tail = lines[len(lines)-tailN:]
	}
	return w
}

var (
	timeOfDayRe = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})\.(\d{1,9}) \(\d+\)\|`)
	userInfoRe  = regexp.MustCompile(`\|USER_INFO\|\[EXTERNAL\]\|([0-9a-zA-Z]{15,18})\|([^|]+)`)
	codeUnitRe  = regexp.MustCompile(`\|CODE_UNIT_STARTED\|(?:[^|]*\|)*([^|]+)$`)
	methodRe    = regexp.MustCompile(`\|METHOD_ENTRY\|(?:[^|]*\|)*([^|]+)$`)
	tailLimitRe = regexp.MustCompile(`(?:Number of |Maximum )(.+?): (\d+) out of \d+`)
)

// Scanner performs fast metadata scans. Immutable and safe for concurrent
// use; the prefix table is shared read-only across calls.
type Scanner struct {
	prefixes *PrefixTable
}

// NewScanner creates a scanner with the built-in record-id prefix table.
func NewScanner() *Scanner {
	return &Scanner{prefixes: NewPrefixTable()}
}

// NewScannerWithPrefixes creates a scanner with an extended prefix table.
func NewScannerWithPrefixes(t *PrefixTable) *Scanner {
	return &Scanner{prefixes: t}
}

// Scan summarizes one file from its bounded window. ref anchors the
// time-of-day timestamps to a date (usually the file's mtime); a zero ref
// leaves the date at the zero value. Scan never fails: missing signals
// degrade to placeholders.
func (s *Scanner) Scan(path string, w Window, ref time.Time) *Metadata {
	md := &Metadata{
		Path:     path,
		CodeUnit: noCodeUnit,
		Context:  ContextUnknown,
	}

	start, startOK := firstTimeOfDay(w.Head)
	finish, finishOK := lastTimeOfDay(w.Tail)
	if startOK {
		md.Timestamp = anchor(ref, start)
		if finishOK {
			d := finish - start
			if d < 0 {
				d += 24 * time.Hour // midnight rollover
			}
			md.Duration = d
		}
	}

	for _, line := range w.Head {
		if md.UserID == "" {
			if m := userInfoRe.FindStringSubmatch(line); m != nil {
				md.UserID = m[1]
				md.UserName = strings.TrimSpace(m[2])
			}
		}
		if md.CodeUnit == noCodeUnit {
			if m := codeUnitRe.FindStringSubmatch(line); m != nil {
				md.CodeUnit = m[1]
			}
		}
	}
	if md.CodeUnit == noCodeUnit {
		for _, line := range w.Head {
			if m := methodRe.FindStringSubmatch(line); m != nil {
				md.CodeUnit = m[1]
				break
			}
		}
	}

	md.HasErrors = hasErrorMarker(w.Head) || hasErrorMarker(w.Tail)
	md.RecordID = s.prefixes.FindRecordID(w.Head)
	md.Limits = scanTailLimits(w.Tail)
	md.Context = ClassifyContext(strings.Join(w.Head, "\n"), md.CodeUnit)
	return md
}

func hasErrorMarker(lines []string) bool {
	for _, line := range lines {
		if strings.Contains(line, "|FATAL_ERROR") || strings.Contains(line, "|EXCEPTION_THROWN|") {
			return true
		}
	}
	return false
}

func scanTailLimits(tail []string) LimitSummary {
	var ls LimitSummary
	for _, line := range tail {
		m := tailLimitRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[2])
		switch strings.ToLower(strings.TrimSpace(m[1])) {
		case "soql queries":
			ls.Queries = n
		case "query rows":
			ls.QueryRows = n
		case "cpu time", "cpu time (ms)":
			ls.CPUTimeMs = n
		case "heap size":
			ls.HeapBytes = n
		case "dml statements":
			ls.DMLStatements = n
		case "dml rows":
			ls.DMLRows = n
		}
	}
	return ls
}

func firstTimeOfDay(lines []string) (time.Duration, bool) {
	for _, line := range lines {
		if d, ok := parseTimeOfDay(line); ok {
			return d, true
		}
	}
	return 0, false
}

func lastTimeOfDay(lines []string) (time.Duration, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if d, ok := parseTimeOfDay(lines[i]); ok {
			return d, true
		}
	}
	return 0, false
}

func parseTimeOfDay(line string) (time.Duration, bool) {
	m := timeOfDayRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	if h > 23 || min > 59 || sec > 59 {
		return 0, false
	}
	frac := m[4]
	nanos, _ := strconv.Atoi(frac + strings.Repeat("0", 9-len(frac)))
	return time.Duration(h)*time.Hour + time.Duration(min)*time.Minute +
		time.Duration(sec)*time.Second + time.Duration(nanos), true
}

// anchor fixes a time-of-day offset onto ref's calendar date.
func anchor(ref time.Time, tod time.Duration) time.Time {
	if ref.IsZero() {
		return time.Time{}.Add(tod)
	}
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return midnight.Add(tod)
}
