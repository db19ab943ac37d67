package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	lenserr "apexlens/internal/errors"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", lenserr.New(lenserr.FormatInvalid,
			fmt.Sprintf("unsupported export format: %s", s), nil)
	}
}

// Write serializes the bundle to w in the requested format
func Write(w io.Writer, b *Bundle, opts Options) error {
	out := w
	var gz *gzip.Writer
	if opts.Compress {
		gz = gzip.NewWriter(w)
		out = gz
	}

	var err error
	switch opts.Format {
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err = enc.Encode(b); err == nil {
			err = enc.Close()
		}
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(b)
	}
	if err != nil {
		return lenserr.New(lenserr.ExportFailed, "failed to encode export bundle", err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return lenserr.New(lenserr.ExportFailed, "failed to finish compressed export", err)
		}
	}
	return nil
}

// WriteFile serializes the bundle to a file, appending .gz when compressing
// and the path does not already carry the extension.
func WriteFile(path string, b *Bundle, opts Options) (string, error) {
	if opts.Compress && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}

	f, err := os.Create(path)
	if err != nil {
		return "", lenserr.New(lenserr.ExportFailed, "failed to create export file", err)
	}
	defer f.Close()

	if err := Write(f, b, opts); err != nil {
		return "", err
	}
	return path, nil
}
