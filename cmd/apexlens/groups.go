package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	groupsFormat  string
	groupsNoCache bool
)

var groupsCmd = &cobra.Command{
	Use:   "groups <folder>",
	Short: "Show transaction groups for a folder of debug logs",
	Long: `Correlate the debug logs in a folder into transaction groups and show
only the groups: membership, phases, trigger re-entry, mixed contexts,
and per-group recommendations.

Examples:
  apexlens groups ./logs
  apexlens groups --format=human ./logs`,
	Args: cobra.ExactArgs(1),
	Run:  runGroups,
}

func init() {
	groupsCmd.Flags().StringVar(&groupsFormat, "format", "json", "Output format (json, human)")
	groupsCmd.Flags().BoolVar(&groupsNoCache, "no-cache", false, "Bypass the scan cache")
	rootCmd.AddCommand(groupsCmd)
}

func runGroups(cmd *cobra.Command, args []string) {
	result := scanFolder(args[0], groupsNoCache)

	out, err := FormatResponse(result.Groups, OutputFormat(groupsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
