package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/rsc/internal/version"
)

var (
	versionFormat = newOutputFormat("text", "text", "json")
	versionShort  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for rsc.

Examples:
  rsc version                # Show version and build details
  rsc version --short        # Show the version only
  rsc version --format json  # Output as JSON`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().VarP(versionFormat, "format", "f", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	if versionFormat.String() == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	}

	if versionShort {
		fmt.Fprintln(out, info.Short())
		return nil
	}

	fmt.Fprintf(out, "rsc %s", info.Short())
	if !info.IsRelease() {
		fmt.Fprint(out, " (development build)")
	}
	if info.Dirty {
		fmt.Fprint(out, " (dirty)")
	}
	fmt.Fprintln(out)

	if !info.BuildTime.IsZero() {
		fmt.Fprintf(out, "Built: %s\n", info.BuildTime.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	return nil
}
