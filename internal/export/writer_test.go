package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"apexlens/internal/grouping"
	"apexlens/internal/metadata"
)

func sampleBundle() *Bundle {
	traces := []*metadata.Metadata{
		{
			Path:     "a.log",
			UserName: "admin@example.com",
			Duration: 1200 * time.Millisecond,
			CodeUnit: "CaseTrigger on Case (BeforeInsert)",
			Context:  metadata.ContextInteractive,
		},
		{
			Path:     "b.log",
			UserName: "admin@example.com",
			Context:  metadata.ContextBatch,
		},
	}
	groups := []*grouping.TransactionGroup{
		{ID: "g-1", User: "admin@example.com", Standalone: false},
	}
	return NewBundle("/logs/today", traces, groups)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleBundle(), Options{Format: FormatJSON}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var decoded Bundle
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TraceCount != 2 {
		t.Errorf("TraceCount = %d, want 2", decoded.TraceCount)
	}
	if decoded.GroupCount != 1 {
		t.Errorf("GroupCount = %d, want 1", decoded.GroupCount)
	}
	if decoded.Traces[0].CodeUnit != "CaseTrigger on Case (BeforeInsert)" {
		t.Errorf("CodeUnit = %q", decoded.Traces[0].CodeUnit)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleBundle(), Options{Format: FormatYAML}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded["folder"] != "/logs/today" {
		t.Errorf("folder = %v", decoded["folder"])
	}
}

func TestWriteCompressed(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleBundle(), Options{Format: FormatJSON, Compress: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	gr, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	defer gr.Close()

	var decoded Bundle
	if err := json.NewDecoder(gr).Decode(&decoded); err != nil {
		t.Fatalf("decompressed output is not valid JSON: %v", err)
	}
	if decoded.Folder != "/logs/today" {
		t.Errorf("Folder = %q", decoded.Folder)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(filepath.Join(dir, "bundle.json"), sampleBundle(), Options{Format: FormatJSON})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	// Compression appends .gz
	path, err = WriteFile(filepath.Join(dir, "bundle.json"), sampleBundle(), Options{Format: FormatJSON, Compress: true})
	if err != nil {
		t.Fatalf("WriteFile compressed: %v", err)
	}
	if !strings.HasSuffix(path, ".json.gz") {
		t.Errorf("compressed path = %s, want .json.gz suffix", path)
	}
}
