// ABOUTME: Root Cobra command for the aquacal assistant.
// ABOUTME: Builds the shared component stack in PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avolkov/aquacal/internal/config"
	"github.com/avolkov/aquacal/internal/dialogue"
	"github.com/avolkov/aquacal/internal/engine"
	"github.com/avolkov/aquacal/internal/food"
	"github.com/avolkov/aquacal/internal/ledger"
	"github.com/avolkov/aquacal/internal/storage"
	"github.com/avolkov/aquacal/internal/tracker"
	"github.com/avolkov/aquacal/internal/weather"
)

var (
	cfg      *config.Config
	store    storage.Store
	appFlow  *dialogue.Flow
	appTrack *tracker.Tracker
)

var rootCmd = &cobra.Command{
	Use:   "aquacal",
	Short: "Conversational water and calorie tracker",
	Long: `Aquacal is a conversational assistant for daily water intake and
calorie balance.

It collects a personal profile through a guided dialogue, derives
daily water and calorie goals from biometrics and the local weather,
and tracks water, food and workouts against those goals.

TRANSPORTS:

  $ aquacal bot     # Telegram long-polling bot
  $ aquacal chat    # local interactive session in the terminal
  $ aquacal mcp     # Model Context Protocol server over stdio

CONFIGURATION (environment, .env supported):

  BOT_TG_TOKEN          Telegram bot token (bot only)
  OW_API_KEY            OpenWeatherMap API key
  AQUACAL_BACKEND       storage backend: memory (default) or badger
  AQUACAL_DATA_DIR      badger data directory (default XDG data dir)
  AQUACAL_DEFAULT_CITY  city assigned by the '+' sentinel
  AQUACAL_METRICS_ADDR  prometheus /metrics listen address (bot only)`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		store, err = cfg.OpenStore()
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}

		formula := engine.Default()
		ldg := ledger.New(store, formula)
		wthr := weather.New(cfg.WeatherKey, weather.WithBaseURL(cfg.WeatherURL))
		fd := food.New(food.WithBaseURL(cfg.FoodURL))

		appFlow = dialogue.New(ldg, formula, wthr,
			dialogue.WithDefaultCity(cfg.DefaultCity),
			dialogue.WithSessionTTL(cfg.SessionTTL))
		appTrack = tracker.New(ldg, formula, wthr, fd)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}
