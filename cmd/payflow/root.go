package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/payflowkr/payflow"
	"github.com/payflowkr/payflow/internal/config"
	"github.com/payflowkr/payflow/internal/logging"
	redisadapter "github.com/payflowkr/payflow/pkg/adapters/redis"
	"github.com/payflowkr/payflow/pkg/adapters/sqlsvc"
)

var rootCmd = &cobra.Command{
	Use:   "payflow",
	Short: "Payflow is a conversational payroll workflow engine",
	Long:  `Payflow drives the monthly payroll close (calculation, withholding, payment, journal posting) as a guided Korean-language conversation backed by a SQL execution service.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func createLogger(cfg config.Config, debug, json bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if debug {
		level = slog.LevelDebug
	}
	if json {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}

// buildEngine assembles the engine from configuration. The returned
// cleanup closes the Redis connection when one was opened.
func buildEngine(cfg config.Config, logger *slog.Logger, extra ...payflow.Option) (*payflow.Engine, func(), error) {
	query := sqlsvc.New(cfg.SQLService.URL, sqlsvc.WithTimeout(cfg.SQLService.Timeout.Std()))

	opts := []payflow.Option{payflow.WithLogger(logger)}
	cleanup := func() {}

	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redisadapter.NewFromClient(client, redisadapter.WithTTL(cfg.Redis.SessionTTL.Std()))
		opts = append(opts,
			payflow.WithStore(store),
			payflow.WithLocker(redisadapter.NewLocker(client, "payflow:lock:")),
		)
		cleanup = func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", "err", err)
			}
		}
	}

	opts = append(opts, extra...)
	return payflow.New(query, opts...), cleanup, nil
}
