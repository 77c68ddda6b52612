package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/ordering/internal/api"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	BindAddress string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the order-list action over HTTP",
		Long: `Serve POST /collections/:collection/order-list for every collection
with a list definition.

Callers must authenticate with one of the configured basic auth accounts and
send X-Requested-With: XMLHttpRequest. Stops gracefully on SIGINT/SIGTERM.

Example:
  ordering serve --bind :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BindAddress, "bind", "", "listen address (overrides server.bind_address)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ws, err := openWorkspace(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail("failed to open workspace", err)
	}
	defer ws.Close()

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := buildRouter(ws)
	if err != nil {
		return formatter.Fail("failed to build router", err)
	}

	addr := ws.settings.Server.BindAddress
	if opts.BindAddress != "" {
		addr = opts.BindAddress
	}
	srv := &http.Server{Addr: addr, Handler: router}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		ws.logger.Info("server starting", "addr", addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	ws.logger.Info("shutting down", "timeout", ws.settings.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ws.settings.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown error", err)
	}
	ws.logger.Info("server stopped gracefully")
	return nil
}

// buildRouter exposes every collection with a list definition.
func buildRouter(ws *workspace) (*gin.Engine, error) {
	collections := make(map[string]api.ListCollection)
	for _, c := range ws.defs.Collections {
		if c.List == nil {
			ws.logger.Debug("collection has no list, not served", "collection", c.Name())
			continue
		}
		svc, _, err := ws.service(c.Name())
		if err != nil {
			return nil, err
		}
		collections[c.Name()] = api.ListCollection{Source: svc.Coordinator(), List: *c.List}
	}
	if len(collections) == 0 {
		return nil, fmt.Errorf("no collection defines a list")
	}

	accounts := ws.settings.Accounts()
	if len(accounts) == 0 {
		ws.logger.Warn("no basic auth accounts configured, every request will be rejected")
	}

	return api.NewRouter(&api.RoutesHandler{
		Accounts:    accounts,
		Presenter:   ws.presenter(),
		Collections: collections,
		Logger:      ws.logger,
	})
}
