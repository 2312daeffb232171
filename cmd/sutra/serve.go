package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sutra/internal/async"
	"sutra/internal/config"
	serverhttp "sutra/internal/server/http"
)

func newServeCommand(cli *CLI) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cli.config.Server
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			return cli.withRuntime(cmd.OutOrStdout(), func(rt *runtime) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return serve(ctx, rt, cfg)
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides server.port)")
	return cmd
}

// serve runs the HTTP server until ctx is done, then drains it.
func serve(ctx context.Context, rt *runtime, cfg config.ServerConfig) error {
	router := serverhttp.NewRouter(serverhttp.RouterDeps{
		Processor: rt.coordinator,
		Config:    cfg,
		Logger:    rt.obs.Logger,
		Metrics:   rt.obs.Metrics,
		Tracer:    rt.obs.Tracer,
	})
	srv := serverhttp.NewServer(cfg, router, rt.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- async.Guard(rt.logger, "http server", srv.Start)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	rt.logger.Info("Server stopped")
	return <-errCh
}
