// ABOUTME: CLI command that runs the Telegram bot transport.
// ABOUTME: Fails fast on missing credentials, serves metrics if configured.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/avolkov/aquacal/internal/metrics"
	"github.com/avolkov/aquacal/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram long-polling bot.

Requires BOT_TG_TOKEN and OW_API_KEY in the environment (or a .env
file). When AQUACAL_METRICS_ADDR is set, prometheus metrics are served
on that address under /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateBot(); err != nil {
			return err
		}

		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "aquacal",
		})
		if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
			logger.SetLevel(lvl)
		}

		metrics.Register()
		if cfg.MetricsAddr != "" {
			go func() {
				if err := metrics.Serve(cfg.MetricsAddr); err != nil {
					logger.Error("metrics server stopped", "err", err)
				}
			}()
		}

		bot, err := telegram.New(cfg.TelegramToken, appTrack, appFlow, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		if err := bot.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
