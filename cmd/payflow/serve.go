package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/payflowkr/payflow"
	httpadapter "github.com/payflowkr/payflow/pkg/adapters/http"
	"github.com/payflowkr/payflow/pkg/observability"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the payflow engine in server mode, exposing the conversation as a JSON API plus Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}
		debug, _ := cmd.Flags().GetBool("debug")
		logger := createLogger(cfg, debug, true)

		reg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(reg)

		engine, cleanup, err := buildEngine(cfg, logger,
			payflow.WithLifecycleHooks(metrics.Hooks(logger)))
		if err != nil {
			return err
		}
		defer cleanup()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.Handle("/", httpadapter.NewHandler(engine, logger))

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("payflow server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return err

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return err
				}
			}
			logger.Info("payflow server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides config)")
}
