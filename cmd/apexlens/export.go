package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apexlens/internal/export"
)

var (
	exportFormat   string
	exportOut      string
	exportCompress bool
	exportNoCache  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <folder>",
	Short: "Export scan and grouping results for downstream tooling",
	Long: `Scan a folder of debug logs and write the complete result bundle
(per-trace metadata plus transaction groups) as JSON or YAML, optionally
gzip-compressed.

Examples:
  apexlens export ./logs
  apexlens export --format=yaml -o report.yaml ./logs
  apexlens export --compress -o report.json ./logs`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format (json, yaml)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "Gzip-compress the output")
	exportCmd.Flags().BoolVar(&exportNoCache, "no-cache", false, "Bypass the scan cache")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result := scanFolder(args[0], exportNoCache)
	bundle := export.NewBundle(result.Folder, result.Traces, result.Groups)
	opts := export.Options{Format: format, Compress: exportCompress}

	if exportOut == "" {
		if err := export.Write(os.Stdout, bundle, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	path, err := export.WriteFile(exportOut, bundle, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d traces and %d groups to %s\n",
		bundle.TraceCount, bundle.GroupCount, path)
}
