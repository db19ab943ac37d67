package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"apexlens/internal/analyzer"
	"apexlens/internal/grouping"
)

func TestFormatResponseJSON(t *testing.T) {
	ta := &analyzer.TraceAnalysis{
		EntryPoint: "CaseTrigger on Case (BeforeInsert)",
		DurationMs: 1480,
	}

	out, err := FormatResponse(ta, FormatJSON)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["entryPoint"] != "CaseTrigger on Case (BeforeInsert)" {
		t.Errorf("entryPoint = %v", decoded["entryPoint"])
	}
}

func TestFormatResponseHumanAnalysis(t *testing.T) {
	ta := &analyzer.TraceAnalysis{
		EntryPoint:        "OrderService.process",
		DurationMs:        320,
		TransactionFailed: true,
		Issues:            []string{"unhandled exception at line 42"},
	}

	out, err := FormatResponse(ta, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	for _, want := range []string{"OrderService.process", "FAILED", "unhandled exception at line 42"} {
		if !strings.Contains(out, want) {
			t.Errorf("human output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatResponseHumanUnparseable(t *testing.T) {
	ta := &analyzer.TraceAnalysis{Unparseable: true}

	out, err := FormatResponse(ta, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	if !strings.Contains(out, "No parseable log lines") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFormatResponseHumanGroups(t *testing.T) {
	groups := []*grouping.TransactionGroup{
		{
			ID:             "3f2c9d1a",
			User:           "jdoe@example.com",
			TotalDuration:  3 * time.Second,
			TotalReentries: 2,
		},
	}

	out, err := FormatResponse(groups, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	for _, want := range []string{"Transaction Groups: 1", "jdoe@example.com", "re-entries: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatResponseUnsupported(t *testing.T) {
	if _, err := FormatResponse(struct{}{}, OutputFormat("xml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}
