// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs the stdio-based server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avolkov/aquacal/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant
integration. The server communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "aquacal": {
        "command": "aquacal",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  set_profile     Start the guided profile setup
  profile_input   Submit one answer to the active setup dialogue
  log_water       Log consumed water in milliliters
  log_food        Log a product by name, weight defaults to 100 g
  log_workout     Log a workout with duration in minutes
  check_progress  Today's progress with chart series
  new_day         Close the day and recompute the water goal
  profile_info    Show the current profile
  history         List archived day summaries`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(appTrack, appFlow)
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

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
