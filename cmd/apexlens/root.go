package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"apexlens/internal/slogutil"
	"apexlens/internal/version"
)

var (
	// verbosity is the accumulated -v count
	verbosity int
	// quiet suppresses everything below error
	quiet bool
)

var rootCmd = &cobra.Command{
	Use:   "apexlens",
	Short: "apexlens - Salesforce Apex debug log analysis",
	Long: `apexlens parses Salesforce Apex debug logs and produces execution trees,
governor limit usage, exception classification, stack depth risk, and
multi-trace transaction grouping for whole folders of logs.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("apexlens version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"Only log errors")
}

// newLogger builds the command logger from the persistent verbosity flags.
// Logs go to stderr so stdout stays clean for formatted output.
func newLogger() *slog.Logger {
	return slogutil.NewLogger(os.Stderr, slogutil.LevelFromVerbosity(verbosity, quiet))
}
