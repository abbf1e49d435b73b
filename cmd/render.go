package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/rsc/internal/config"
	"github.com/conneroisu/rsc/internal/document"
	"github.com/conneroisu/rsc/internal/errors"
	"github.com/conneroisu/rsc/internal/layout"
	"github.com/conneroisu/rsc/internal/logging"
	"github.com/conneroisu/rsc/internal/pages"
	"github.com/conneroisu/rsc/internal/styles"
)

var (
	renderOut    string
	renderVerify bool
)

var renderCmd = &cobra.Command{
	Use:   "render [page]",
	Short: "Render a page inside the root layout",
	Long: `Render a registered page wrapped in the root layout and write the full
document to stdout, or to --out.

Examples:
  rsc render                    # Render the home page
  rsc render about --verify     # Render and check the document structure
  rsc render about -o about.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Write the document to this file")
	renderCmd.Flags().BoolVar(&renderVerify, "verify", false, "Verify the document structure")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := pages.HomeName
	if len(args) == 1 {
		name = args[0]
	}

	out, err := renderPage(cmd.Context(), cfg, pages.Default(), name)
	if err != nil {
		return err
	}

	if renderVerify {
		tree, err := document.Parse(bytes.NewReader(out))
		if err != nil {
			return err
		}
		if err := document.Verify(tree); err != nil {
			return err
		}
	}

	if renderOut != "" {
		if err := os.WriteFile(renderOut, out, 0o644); err != nil {
			return errors.WrapIO(err, errors.ErrCodeFileNotFound, "writing "+renderOut)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", renderOut, len(out))
		return nil
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// renderPage renders the named page the way the server would, without the
// reload script.
func renderPage(ctx context.Context, cfg *config.Config, reg *pages.Registry, name string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	info, ok := reg.Get(name)
	if !ok {
		available := make([]string, 0, reg.Len())
		for _, p := range reg.List() {
			available = append(available, p.Name)
		}
		return nil, errors.WithSuggestions(
			errors.NewNotFoundError(errors.ErrCodePageNotFound, fmt.Sprintf("no page named %q", name)),
			errors.PageNotFoundSuggestions(name, available),
		)
	}

	sheets := styles.NewSheets(cfg.Styles.Dir)
	if err := sheets.Load(); err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeFileNotFound, "loading stylesheets")
	}
	ctx = styles.WithOptions(ctx, styles.Options{Sheets: sheets, Minify: cfg.Styles.Minify})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.Path(), nil)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError, "building request", err)
	}

	op := logging.StartOperation(cfg.Logger().WithComponent("render").With("page", name), "render")

	var buf bytes.Buffer
	if err := layout.AppLayout(info.Page(req)).Render(ctx, &buf); err != nil {
		err = errors.WrapRender(err, "rendering "+name)
		op.EndWithError(ctx, err)
		return nil, err
	}
	op.End(ctx)
	return buf.Bytes(), nil
}
