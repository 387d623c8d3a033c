package cmd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/cratedock/cratedock"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the registry over HTTP",
	Long: "Serve the registry tree read-only and verbatim. This is the registry's\n" +
		"whole transport contract; any static file server does the same job.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8000", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")

	// Opening validates the config document before exposing the tree.
	reg, err := cratedock.Open(registryRoot())
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Method(http.MethodGet, "/*", http.FileServer(http.Dir(reg.Root())))

	logger.Info("serving registry", "root", reg.Root(), "addr", addr, "base-url", reg.Config().BaseURL)
	return http.ListenAndServe(addr, r)
}
