package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/astrokernel/imperium/internal/adapters/httpapi"
	"github.com/astrokernel/imperium/internal/adapters/metrics"
	"github.com/astrokernel/imperium/internal/infrastructure/pidfile"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var noLoop bool
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the game loop",
		Long: `Run the admission HTTP server together with the construction
scheduler and the tick processor. Stops cleanly on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewContainer(configPath, !noMetrics)
			if err != nil {
				return err
			}
			defer c.Close()

			if path := c.Config.GameLoop.PIDFile; path != "" {
				pf := pidfile.New(path)
				if err := pf.Acquire(); err != nil {
					return err
				}
				defer pf.Release()
			}

			if !verbose {
				gin.SetMode(gin.ReleaseMode)
			}
			router := httpapi.NewRouter(c.Mediator, &c.Config.Server, metrics.GetRegistry())

			server := &http.Server{
				Addr:         c.Config.Server.Address,
				Handler:      router,
				ReadTimeout:  c.Config.Server.ReadTimeout,
				WriteTimeout: c.Config.Server.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !noLoop && !c.Config.GameLoop.Disabled {
				go c.Loop.Run(ctx)
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("[Server] listening on %s", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			log.Printf("[Server] shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(),
				c.Config.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&noLoop, "no-loop", false,
		"Disable the in-process game loop (drive ticks via the tick command)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false,
		"Disable Prometheus metrics collection")

	return cmd
}
