package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeshape/pkg/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the normalization API over HTTP",
		Long: `Serve the normalization API over HTTP.

Routes:
  GET    /healthz
  POST   /v1/normalize?declaration=PATH[&format=json|dot|svg|tree][&strict=true]
  POST   /v1/schemas?declaration=PATH
  GET    /v1/schemas[?declaration=PATH&limit=N]
  GET    /v1/schemas/{id}[?format=...]
  DELETE /v1/schemas/{id}

The cache and store backends come from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, noStore)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable the /v1/schemas routes")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache, noStore bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	defaults, err := c.baseOptions()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := server.Options{
		Runner:   runner,
		Defaults: defaults,
		Logger:   c.Logger,
	}
	if !noStore {
		st, err := c.newStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		opts.Store = st
	}

	err = server.New(opts).ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
