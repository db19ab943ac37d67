package exceptions

import (
	"strings"
	"testing"

	"apexlens/internal/apexlog"
	"apexlens/internal/tree"
)

func classify(t *testing.T, lines ...string) []Record {
	t.Helper()
	res := apexlog.Tokenize(strings.Join(lines, "\n"))
	return Classify(tree.Build(res), res.Raw)
}

func TestClassify_HandledByContinuation(t *testing.T) {
	recs := classify(t,
		"09:00:00.0 (100)|METHOD_ENTRY|[1]|A.run()",
		"09:00:00.1 (200)|EXCEPTION_THROWN|[5]|System.DmlException: dupe",
		"09:00:00.2 (300)|VARIABLE_ASSIGNMENT|[7]|e|caught",
		"09:00:00.3 (400)|METHOD_EXIT|[1]|A.run()",
	)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Severity != Handled {
		t.Errorf("Severity = %v, want Handled", recs[0].Severity)
	}
}

func TestClassify_FatalAfterThrow(t *testing.T) {
	recs := classify(t,
		"09:00:00.0 (100)|EXCEPTION_THROWN|[5]|System.NullPointerException: boom",
		"09:00:00.1 (200)|FATAL_ERROR|System.NullPointerException: boom",
	)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Severity != Unhandled {
		t.Errorf("thrown Severity = %v, want Unhandled", recs[0].Severity)
	}
	if recs[1].Severity != Fatal {
		t.Errorf("fatal Severity = %v, want Fatal", recs[1].Severity)
	}
	if !AnyFatalOrUnhandled(recs) {
		t.Error("AnyFatalOrUnhandled = false, want true")
	}
}

func TestClassify_RethrowChainKeepsScanning(t *testing.T) {
	recs := classify(t,
		"09:00:00.0 (100)|EXCEPTION_THROWN|[5]|System.DmlException: inner",
		"09:00:00.1 (200)|EXCEPTION_THROWN|[9]|MyException: wrapped",
		"09:00:00.2 (300)|USER_DEBUG|[11]|DEBUG|recovered",
	)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	for _, r := range recs {
		if r.Severity != Handled {
			t.Errorf("Severity = %v for %q, want Handled", r.Severity, r.Message)
		}
	}
}

func TestClassify_UnresolvedWindow(t *testing.T) {
	// No resolution in the window, no fatal anywhere: Warning.
	recs := classify(t, "09:00:00.0 (100)|EXCEPTION_THROWN|[5]|MyException: dangling")
	if len(recs) != 1 || recs[0].Severity != Warning {
		t.Fatalf("got %+v, want one Warning", recs)
	}

	// Same window, but a fatal exists far beyond it: Unhandled.
	lines := []string{"09:00:00.0 (100)|EXCEPTION_THROWN|[5]|MyException: dangling"}
	for i := 0; i < 25; i++ {
		lines = append(lines, "filler context line")
	}
	lines = append(lines, "09:00:05.0 (500)|FATAL_ERROR|MyException: dangling")
	recs = classify(t, lines...)
	if recs[0].Severity != Unhandled {
		t.Errorf("Severity = %v, want Unhandled (fatal later in trace)", recs[0].Severity)
	}
}

func TestClassify_NoExceptions(t *testing.T) {
	recs := classify(t,
		"09:00:00.0 (100)|METHOD_ENTRY|[1]|A.run()",
		"09:00:00.1 (200)|METHOD_EXIT|[1]|A.run()",
	)
	if len(recs) != 0 {
		t.Errorf("got %d records, want 0", len(recs))
	}
	if AnyFatalOrUnhandled(recs) {
		t.Error("AnyFatalOrUnhandled = true, want false")
	}
}
