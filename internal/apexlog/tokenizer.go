package apexlog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// lineRe matches the head of a grammar-valid line:
// HH:MM:SS.ffffff (ticks)|EVENT_TYPE|...
// The fractional part varies in width between API versions.
var lineRe = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})\.(\d{1,9}) \((\d+)\)\|([A-Z_0-9]+)`)

// headerRe matches the log-level header the platform writes as the first
// line, e.g. "64.0 APEX_CODE,FINEST;APEX_PROFILING,INFO;...".
var headerRe = regexp.MustCompile(`^\d+\.\d+ APEX_CODE,([A-Z]+)`)

// Result is the output of one tokenizer pass.
type Result struct {
	// Lines are the grammar-valid lines, in appearance order.
	Lines []LogLine

	// Raw holds every line of the input, 0-indexed, so downstream passes
	// can scan continuation lines the grammar drops (limit usage blocks,
	// stack traces). Raw[l.LineNo-1] is the text l was tokenized from.
	Raw []string

	// Header is the log-level header line, or "" when absent.
	Header string
}

// Empty reports whether no grammar-valid line was found. Callers treat an
// empty result as "unparseable input", never as an error.
func (r *Result) Empty() bool {
	return len(r.Lines) == 0
}

// MaxVerbosity reports whether the header declares APEX_CODE at FINEST.
func (r *Result) MaxVerbosity() bool {
	m := headerRe.FindStringSubmatch(r.Header)
	return m != nil && m[1] == "FINEST"
}

// Tokenize splits raw trace text into structured log lines. Non-matching
// lines are dropped silently; truncated or corrupt input yields whatever
// prefix still parses.
func Tokenize(text string) *Result {
	raw := strings.Split(text, "\n")
	res := &Result{Raw: raw}

	for i, line := range raw {
		line = strings.TrimRight(line, "\r")
		raw[i] = line
		if line == "" {
			continue
		}
		if i == 0 && headerRe.MatchString(line) {
			res.Header = line
			continue
		}
		ll, ok := tokenizeLine(line, i+1)
		if !ok {
			continue
		}
		res.Lines = append(res.Lines, ll)
	}
	return res
}

func tokenizeLine(line string, lineNo int) (LogLine, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return LogLine{}, false
	}

	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	if h > 23 || min > 59 || sec > 59 {
		return LogLine{}, false
	}
	frac := m[4]
	// Right-pad to nanosecond precision.
	nanos, _ := strconv.Atoi(frac + strings.Repeat("0", 9-len(frac)))
	elapsed, _ := strconv.ParseInt(m[5], 10, 64)

	ll := LogLine{
		Time: time.Duration(h)*time.Hour +
			time.Duration(min)*time.Minute +
			time.Duration(sec)*time.Second +
			time.Duration(nanos)*time.Nanosecond,
		Elapsed: elapsed,
		Event:   m[6],
		LineNo:  lineNo,
	}

	rest := line[len(m[0]):]
	if strings.HasPrefix(rest, "|") {
		ll.Fields = strings.Split(rest[1:], "|")
	}
	return ll, true
}
