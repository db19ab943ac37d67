// Package export serializes scan and grouping results for downstream
// tooling, as JSON or YAML, optionally gzip-compressed.
package export

import (
	"time"

	"apexlens/internal/grouping"
	"apexlens/internal/metadata"
)

// Format identifies an output serialization
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Options controls how a bundle is written
type Options struct {
	Format   Format
	Compress bool
}

// Bundle is the complete exportable view of a scanned folder
type Bundle struct {
	Generated  time.Time                   `json:"generated" yaml:"generated"`
	Folder     string                      `json:"folder" yaml:"folder"`
	TraceCount int                         `json:"traceCount" yaml:"traceCount"`
	GroupCount int                         `json:"groupCount" yaml:"groupCount"`
	Traces     []*metadata.Metadata        `json:"traces" yaml:"traces"`
	Groups     []*grouping.TransactionGroup `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// NewBundle assembles a bundle from scan and grouping output
func NewBundle(folder string, traces []*metadata.Metadata, groups []*grouping.TransactionGroup) *Bundle {
	return &Bundle{
		Generated:  time.Now().UTC(),
		Folder:     folder,
		TraceCount: len(traces),
		GroupCount: len(groups),
		Traces:     traces,
		Groups:     groups,
	}
}
