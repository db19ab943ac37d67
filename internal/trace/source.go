// Package trace is the local trace-source collaborator: it reads trace
// bodies and bounded scan windows from disk, transparently handling
// gzip-compressed logs, and enumerates candidate trace files in a folder.
// It is the only package that touches the filesystem for trace text.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// allowedExtensions lists file extensions accepted without sniffing.
var allowedExtensions = map[string]bool{
	".log":   true,
	".txt":   true,
	".debug": true,
}

// headerMarkers identify a debug log when the extension gives no hint.
// Checked against the first few lines of the file.
var headerMarkers = []string{
	"APEX_CODE,",
	"|EXECUTION_STARTED",
	"|USER_INFO|",
	"|CODE_UNIT_STARTED|",
}

const sniffLines = 5

// ReadFile reads one trace body. Files ending in .gz are decompressed;
// everything else is read as-is.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("open gzip trace %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read trace %s: %w", path, err)
	}
	return string(data), nil
}

// ReadWindow reads only the first headN and last tailN lines of a file,
// which keeps folder-wide scans cheap. Compressed files are streamed, not
// fully buffered, beyond the retained window.
func ReadWindow(path string, headN, tailN int) (head, tail []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip trace %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	ring := make([]string, 0, tailN)
	lineNo := 0
	for sc.Scan() {
		line := sc.Text()
		lineNo++
		if lineNo <= headN {
			head = append(head, line)
		}
		if tailN > 0 {
			if len(ring) == tailN {
				copy(ring, ring[1:])
				ring[tailN-1] = line
			} else {
				ring = append(ring, line)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan trace %s: %w", path, err)
	}
	return head, ring, nil
}

// ListCandidates enumerates likely trace files directly under dir:
// allow-listed extensions (plus their .gz variants), or extensionless
// files whose first lines carry a known header marker.
func ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if isCandidate(path) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func isCandidate(path string) bool {
	name := path
	if strings.HasSuffix(name, ".gz") {
		name = strings.TrimSuffix(name, ".gz")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if allowedExtensions[ext] {
		return true
	}
	if ext != "" {
		return false
	}
	return sniffHeader(path)
}

func sniffHeader(path string) bool {
	head, _, err := ReadWindow(path, sniffLines, 0)
	if err != nil {
		return false
	}
	for _, line := range head {
		for _, marker := range headerMarkers {
			if strings.Contains(line, marker) {
				return true
			}
		}
	}
	return false
}
