package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apexlens/internal/analyzer"
	lenserr "apexlens/internal/errors"
	"apexlens/internal/trace"
)

var (
	analyzeFormat string
	analyzeNoTree bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <trace-file>",
	Short: "Run full analysis on a single debug log",
	Long: `Run the full analysis pipeline on one Apex debug log: execution tree,
SOQL/DML operations, governor limit usage, exception classification,
stack depth risk, repeated query shapes, and per-method statistics.

Gzip-compressed logs (.log.gz) are read transparently.

Examples:
  apexlens analyze apex-07L000000001.log
  apexlens analyze --format=human batch/failed.log.gz
  apexlens analyze --no-tree big-trace.log`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "Output format (json, human)")
	analyzeCmd.Flags().BoolVar(&analyzeNoTree, "no-tree", false, "Omit the execution tree from JSON output")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	logger := newLogger()
	path := args[0]

	text, err := trace.ReadFile(path)
	if err != nil {
		err = lenserr.New(lenserr.TraceUnreadable, "cannot read trace", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Debug("analyzing trace", "path", path, "bytes", len(text))

	result := analyzer.New().Analyze(text)
	if analyzeNoTree {
		result.Tree = nil
	}

	out, err := FormatResponse(result, OutputFormat(analyzeFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)

	if result.TransactionFailed {
		os.Exit(2)
	}
}
