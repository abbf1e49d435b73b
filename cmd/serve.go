package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/rsc/internal/errors"
	"github.com/conneroisu/rsc/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the HTTP server",
	Long: `Start the HTTP server. Every page is wrapped in the root layout.

With development.hot_reload enabled the server watches the styles
directory and tells connected browsers to reload when a sheet changes.

Examples:
  rsc serve                 # Serve on localhost:8080
  rsc serve -p 3000         # Serve on port 3000
  rsc serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("hot-reload", true, "Reload browsers when stylesheets change")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("development.hot_reload", serveCmd.Flags().Lookup("hot-reload"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := cfg.Logger()

	srv, err := server.New(cfg, logger, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting server", "addr", cfg.Addr(), "hot_reload", cfg.Development.HotReload)
	if err := srv.Start(ctx); err != nil {
		return errors.WithSuggestions(err, errors.ServerStartSuggestions(err, cfg.Server.Port))
	}
	return nil
}
