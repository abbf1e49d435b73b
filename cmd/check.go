package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/rsc/internal/boundary"
	"github.com/conneroisu/rsc/internal/errors"
)

var checkManifest bool

var checkCmd = &cobra.Command{
	Use:   "check [dir...]",
	Short: "Check the server/client component graph",
	Long: `Check Go component sources for imports and APIs that are not allowed on
their side of the graph. Files whose leading comment holds the //rsc:client
directive are client entries; every other file is a server component.

Directories default to boundary.paths from the configuration.

Examples:
  rsc check                     # Check the configured paths
  rsc check ./components        # Check one directory
  rsc check --manifest          # Print the client references as JSON`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkManifest, "manifest", false, "Print the client reference manifest as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = cfg.Boundary.Paths
	}

	var modules []*boundary.Module
	for _, dir := range dirs {
		found, err := boundary.ScanDir(dir)
		if err != nil {
			return errors.WrapIO(err, errors.ErrCodeFileNotFound, "scanning "+dir)
		}
		modules = append(modules, found...)
	}

	if checkManifest {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(boundary.BuildManifest(modules)); err != nil {
			return err
		}
	}

	rules := boundary.DefaultRules().Merge(cfg.Boundary.ServerForbiddenImports, cfg.Boundary.ClientForbiddenImports)
	diags := boundary.Check(modules, rules)
	for _, d := range diags {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}

	if len(diags) > 0 {
		return boundary.AsError(diags)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Checked %d files: no violations\n", len(modules))
	return nil
}
