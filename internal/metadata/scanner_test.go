package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var sampleTrace = strings.Join([]string{
	"64.0 APEX_CODE,FINEST;APEX_PROFILING,INFO;DB,INFO",
	"09:15:43.021 (18043630)|USER_INFO|[EXTERNAL]|005300000000abc|jdoe@example.com|Pacific Standard Time|GMT-08:00",
	"09:15:43.021 (18143630)|EXECUTION_STARTED",
	"09:15:43.022 (18243630)|CODE_UNIT_STARTED|[EXTERNAL]|01q0000000000Aa|CaseTrigger on Case trigger event BeforeInsert",
	"09:15:43.100 (98243630)|VARIABLE_ASSIGNMENT|[4]|rec|500300000000xyz",
	"09:15:44.500 (1498243630)|CODE_UNIT_FINISHED|CaseTrigger on Case trigger event BeforeInsert",
	"09:15:44.500 (1499000000)|CUMULATIVE_LIMIT_USAGE",
	"  Number of SOQL queries: 12 out of 100",
	"  Maximum CPU time (ms): 840 out of 10000",
	"  Maximum heap size: 51200 out of 6000000",
	"09:15:44.501 (1499243630)|EXECUTION_FINISHED",
}, "\n")

func TestScan_Basics(t *testing.T) {
	ref := time.Date(2025, 3, 14, 9, 20, 0, 0, time.UTC)
	md := NewScanner().Scan("a.log", WindowFromText(sampleTrace, DefaultHeadLines, DefaultTailLines), ref)

	if md.UserID != "005300000000abc" || md.UserName != "jdoe@example.com" {
		t.Errorf("user = %q/%q", md.UserID, md.UserName)
	}
	if md.CodeUnit != "CaseTrigger on Case trigger event BeforeInsert" {
		t.Errorf("CodeUnit = %q", md.CodeUnit)
	}
	if md.HasErrors {
		t.Error("HasErrors = true, want false")
	}
	if md.RecordID != "500300000000xyz" {
		t.Errorf("RecordID = %q, want the Case id (user id must be skipped)", md.RecordID)
	}
	if md.Context != ContextInteractive {
		t.Errorf("Context = %v, want interactive (trigger fallback)", md.Context)
	}
	if md.Limits.Queries != 12 || md.Limits.CPUTimeMs != 840 || md.Limits.HeapBytes != 51200 {
		t.Errorf("Limits = %+v", md.Limits)
	}

	wantTS := time.Date(2025, 3, 14, 9, 15, 43, 21000000, time.UTC)
	if !md.Timestamp.Equal(wantTS) {
		t.Errorf("Timestamp = %v, want %v", md.Timestamp, wantTS)
	}
	wantDur := 1480 * time.Millisecond
	if md.Duration != wantDur {
		t.Errorf("Duration = %v, want %v", md.Duration, wantDur)
	}
}

func TestScan_MidnightRollover(t *testing.T) {
	text := strings.Join([]string{
		"23:59:59.000 (100)|EXECUTION_STARTED",
		"00:00:01.000 (2000000100)|EXECUTION_FINISHED",
	}, "\n")
	md := NewScanner().Scan("x.log", WindowFromText(text, 10, 10), time.Time{})
	if md.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s after rollover guard", md.Duration)
	}
}

func TestScan_DegradesToPlaceholders(t *testing.T) {
	md := NewScanner().Scan("empty.log", WindowFromText("random junk\nmore junk", 10, 10), time.Time{})
	if md.CodeUnit != "(no code unit found)" {
		t.Errorf("CodeUnit = %q, want placeholder", md.CodeUnit)
	}
	if md.Context != ContextUnknown {
		t.Errorf("Context = %v, want unknown", md.Context)
	}
	if md.HasErrors || md.RecordID != "" {
		t.Errorf("unexpected signals in junk scan: %+v", md)
	}
}

func TestScan_ErrorPresence(t *testing.T) {
	text := sampleTrace + "\n09:15:44.502 (1499250000)|FATAL_ERROR|System.LimitException: Too many SOQL queries"
	md := NewScanner().Scan("err.log", WindowFromText(text, DefaultHeadLines, DefaultTailLines), time.Time{})
	if !md.HasErrors {
		t.Error("HasErrors = false, want true")
	}
}

func TestScan_CPULabelWithoutUnit(t *testing.T) {
	// Some API versions write "Maximum CPU time:" with no unit suffix.
	text := strings.Join([]string{
		"64.0 APEX_CODE,FINEST",
		"09:15:44.500 (1499000000)|CUMULATIVE_LIMIT_USAGE",
		"  Maximum CPU time: 840 out of 10000",
	}, "\n")
	md := NewScanner().Scan("cpu.log", WindowFromText(text, DefaultHeadLines, DefaultTailLines), time.Time{})
	if md.Limits.CPUTimeMs != 840 {
		t.Errorf("CPUTimeMs = %d, want 840", md.Limits.CPUTimeMs)
	}
}

func TestClassifyContext_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		head     string
		codeUnit string
		want     ExecutionContext
	}{
		{"batch beats async", "Database.Batchable Queueable", "", ContextBatch},
		{"integration beats scheduled", "/services/apexrest/v1 Schedulable", "", ContextIntegration},
		{"scheduled beats async", "Schedulable Queueable", "", ContextScheduled},
		{"async beats interactive", "Queueable AuraController", "", ContextAsync},
		{"interactive keyword", "@AuraEnabled getRecords", "", ContextInteractive},
		{"trigger fallback", "", "CaseTrigger on Case trigger event BeforeInsert", ContextInteractive},
		{"unknown", "nothing to see", "Plain.method()", ContextUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyContext(tt.head, tt.codeUnit); got != tt.want {
				t.Errorf("ClassifyContext = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrefixTable_ObjectFor(t *testing.T) {
	pt := NewPrefixTable()
	if got := pt.ObjectFor("500300000000xyz"); got != "Case" {
		t.Errorf("ObjectFor = %q, want Case", got)
	}
	if got := pt.ObjectFor("zzz300000000xyz"); got != "" {
		t.Errorf("ObjectFor unknown prefix = %q, want empty", got)
	}
	if got := pt.ObjectFor("tooshort"); got != "" {
		t.Errorf("ObjectFor bad length = %q, want empty", got)
	}
}

func TestLoadPrefixTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "OBJECTS.toml")
	decl := "[prefixes]\na0B = \"Invoice__c\"\n"
	if err := os.WriteFile(path, []byte(decl), 0o644); err != nil {
		t.Fatal(err)
	}

	pt, err := LoadPrefixTable(path)
	if err != nil {
		t.Fatalf("LoadPrefixTable: %v", err)
	}
	if got := pt.ObjectFor("a0B000000000001"); got != "Invoice__c" {
		t.Errorf("custom prefix = %q, want Invoice__c", got)
	}
	if got := pt.ObjectFor("500300000000xyz"); got != "Case" {
		t.Error("built-in prefixes must survive the merge")
	}

	// Missing file falls back to built-ins.
	pt, err = LoadPrefixTable(filepath.Join(dir, "absent.toml"))
	if err != nil || pt == nil {
		t.Fatalf("missing file should not error, got %v", err)
	}

	// Malformed file is a real error.
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPrefixTable(bad); err == nil {
		t.Error("malformed OBJECTS.toml should error")
	}
}

func TestScan_WindowBounds(t *testing.T) {
	// A code unit past the head window must not be seen.
	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "09:00:00.0 (%d)|VARIABLE_ASSIGNMENT|[1]|x|%d\n", i, i)
	}
	b.WriteString("09:00:01.0 (999)|CODE_UNIT_STARTED|[EXTERNAL]|LateUnit\n")
	md := NewScanner().Scan("w.log", WindowFromText(b.String(), 50, 1), time.Time{})
	if md.CodeUnit == "LateUnit" {
		t.Error("scanner read past the head window")
	}
}
