package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/pipeview"
	"github.com/aretw0/pipeview/internal/presentation/tui"
	httpAdapter "github.com/aretw0/pipeview/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves live pipeline topologies, promotion lists and interaction endpoints as JSON, with an SSE update stream per project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		handler := httpAdapter.NewHandler(a.viewer,
			httpAdapter.WithLogger(a.logger),
			httpAdapter.WithVersion(pipeview.Version),
			httpAdapter.WithMetrics(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})),
			httpAdapter.WithUnavailableErrors(pipeview.ErrClosed),
		)

		// Request contexts derive from base so that open SSE streams end on shutdown.
		base, cancelBase := context.WithCancel(contextOf(cmd))
		defer cancelBase()

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return base },
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(os.Stdout, outputProfile(), srv.Addr)
			a.logger.Info("Starting pipeview server", "addr", srv.Addr, "project", a.project)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			a.logger.Info("Start shutdown", "signal", sig.String())

			cancelBase()

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				a.logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			a.logger.Info("pipeview server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
