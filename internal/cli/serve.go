package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/docmerge/internal/config"
	"github.com/danieljhkim/docmerge/internal/docserver"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var (
		listen  string
		service string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the document service over a local store",
		Long: `Serve the local store (file or badger) over HTTP so that other docmerge
clients can use it with --backend http --server <url>.

Routes:
  GET    /v1/documents
  POST   /v1/documents
  GET    /v1/documents/:id
  DELETE /v1/documents/:id
  POST   /v1/documents/:id/batch
  POST   /v1/documents/:id/annotations
  GET    /healthz
  GET    /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				if a.settings.Backend == config.BackendHTTP {
					return fmt.Errorf("serve needs a local backend (file or badger), not %q", a.settings.Backend)
				}
				if !debug {
					gin.SetMode(gin.ReleaseMode)
				}

				addr := stringSetting(cmd, "listen", listen, a.settings.Listen)
				srv := docserver.New(docserver.Config{
					Store:       a.store,
					ServiceName: service,
					Logger:      a.logger,
					Metrics:     a.metrics,
					Gatherer:    a.registry,
				})

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Serving %s store on http://%s", a.settings.Backend, addr))
				if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("document service stopped: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config)")
	cmd.Flags().StringVar(&service, "service-name", "", "Service name on trace spans")
	cmd.Flags().BoolVar(&debug, "debug", false, "Run gin in debug mode")
	return cmd
}
