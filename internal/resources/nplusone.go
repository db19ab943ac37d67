package resources

import (
	"regexp"
	"sort"
	"strings"
)

// NPlusOneThreshold is the minimum number of executions of one normalized
// query shape before the repeat is flagged. Four repeats of a lookup in a
// small loop are routine; five or more usually means a query inside a
// per-record loop.
const NPlusOneThreshold = 5

// QueryShapeIssue is one repeated-query finding.
type QueryShapeIssue struct {
	Shape string `json:"shape"`
	Count int    `json:"count"`
}

var (
	stringLitRe = regexp.MustCompile(`'[^']*'`)
	numberLitRe = regexp.MustCompile(`\b\d+\b`)
	inListRe    = regexp.MustCompile(`\(\s*(\?,?\s*)+\)`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// NormalizeShape reduces a SOQL statement to its shape: literals become
// placeholders, whitespace collapses, casing folds. Two queries with the
// same shape differ only in bind values.
func NormalizeShape(query string) string {
	s := stringLitRe.ReplaceAllString(query, "?")
	s = numberLitRe.ReplaceAllString(s, "?")
	s = inListRe.ReplaceAllString(s, "(?)")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// DetectNPlusOne flags query shapes executed at or above the threshold.
// Results are ordered by descending count, then shape, for stable output.
func DetectNPlusOne(ops []DatabaseOperation) []QueryShapeIssue {
	counts := make(map[string]int)
	for _, op := range ops {
		if op.Kind != SOQL || op.Statement == "" {
			continue
		}
		counts[NormalizeShape(op.Statement)]++
	}

	var issues []QueryShapeIssue
	for shape, n := range counts {
		if n >= NPlusOneThreshold {
			issues = append(issues, QueryShapeIssue{Shape: shape, Count: n})
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Count != issues[j].Count {
			return issues[i].Count > issues[j].Count
		}
		return issues[i].Shape < issues[j].Shape
	})
	return issues
}
