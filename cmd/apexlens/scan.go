package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apexlens/internal/analyzer"
	"apexlens/internal/config"
	"apexlens/internal/paths"
	"apexlens/internal/slogutil"
	"apexlens/internal/storage"
)

var (
	scanFormat  string
	scanNoCache bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <folder>",
	Short: "Scan a folder of debug logs and group them into transactions",
	Long: `Scan every debug log in a folder using the bounded metadata scanner,
then correlate the traces into transaction groups by user and time window.

Results are cached in <folder>/.apexlens/scancache.db so re-scans only
read files that changed on disk.

Examples:
  apexlens scan ./logs
  apexlens scan --format=human --no-cache ./logs`,
	Args: cobra.ExactArgs(1),
	Run:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "json", "Output format (json, human)")
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "Bypass the scan cache")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	result := scanFolder(args[0], scanNoCache)

	out, err := FormatResponse(result, OutputFormat(scanFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

// scanFolder runs a folder scan with config and cache wiring shared by
// the scan, groups, and export commands.
func scanFolder(folder string, noCache bool) *analyzer.FolderResult {
	cfg, err := config.Load(folder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger()
	if cfg.Logging.File != "" {
		path := cfg.Logging.File
		if path == "default" {
			path = paths.LogPath(folder)
		}
		fileLogger, f, err := slogutil.NewFileLogger(path, slogutil.LevelFromString(cfg.Logging.Level))
		if err != nil {
			logger.Warn("cannot open log file, logging to stderr", "path", path, "error", err)
		} else {
			defer f.Close()
			logger = fileLogger
		}
	}

	var cache *storage.ScanCache
	if cfg.Cache.Enabled && !noCache {
		db, err := storage.Open(folder, logger)
		if err != nil {
			logger.Warn("scan cache unavailable, continuing without it", "error", err)
		} else {
			defer db.Close()
			cache = storage.NewScanCache(db)
		}
	}

	fs, err := analyzer.NewFolderScanner(cfg, cache, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := fs.Scan(folder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return result
}
