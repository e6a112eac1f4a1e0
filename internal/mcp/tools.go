// ABOUTME: MCP tool implementations for the intake tracker.
// ABOUTME: One tool per user-visible command, plus the setup dialogue.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/avolkov/aquacal/internal/dialogue"
)

func (s *Server) registerTools() {
	// set_profile
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_profile",
		Description: "Start (or restart) the guided profile setup for a user",
	}, s.handleSetProfile)

	// profile_input
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "profile_input",
		Description: "Submit one answer to the active profile setup dialogue",
	}, s.handleProfileInput)

	// log_water
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_water",
		Description: "Log consumed water in milliliters",
	}, s.handleLogWater)

	// log_food
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_food",
		Description: "Log a consumed product, looked up by name (weight defaults to 100 g)",
	}, s.handleLogFood)

	// log_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_workout",
		Description: "Log a workout (running, yoga, swimming, strength) with duration in minutes",
	}, s.handleLogWorkout)

	// check_progress
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "check_progress",
		Description: "Get today's water and calorie progress with chart series",
	}, s.handleCheckProgress)

	// new_day
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "new_day",
		Description: "Summarize the finished day, reset totals and recompute the water goal",
	}, s.handleNewDay)

	// profile_info
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "profile_info",
		Description: "Get the user's current profile",
	}, s.handleProfileInfo)

	// history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "history",
		Description: "List archived day summaries, most recent first",
	}, s.handleHistory)
}

// Tool input/output types

type userInput struct {
	UserID int64 `json:"user_id" jsonschema:"Opaque user identifier"`
}

type promptOutput struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	Done    bool     `json:"done"`
}

type profileInputInput struct {
	UserID int64  `json:"user_id" jsonschema:"Opaque user identifier"`
	Text   string `json:"text" jsonschema:"The answer for the current setup step"`
}

type logWaterInput struct {
	UserID   int64   `json:"user_id" jsonschema:"Opaque user identifier"`
	AmountML float64 `json:"amount_ml" jsonschema:"Water amount in milliliters"`
}

type logFoodInput struct {
	UserID  int64   `json:"user_id" jsonschema:"Opaque user identifier"`
	Product string  `json:"product" jsonschema:"Product name to look up"`
	WeightG float64 `json:"weight_g,omitempty" jsonschema:"Weight in grams (default 100)"`
}

type logWorkoutInput struct {
	UserID   int64  `json:"user_id" jsonschema:"Opaque user identifier"`
	Activity string `json:"activity" jsonschema:"Workout type (running, yoga, swimming, strength)"`
	Minutes  int    `json:"minutes" jsonschema:"Duration in whole minutes"`
}

type historyInput struct {
	UserID int64 `json:"user_id" jsonschema:"Opaque user identifier"`
	Limit  int   `json:"limit,omitempty" jsonschema:"Max results (default 7)"`
}

type newDayOutput struct {
	Summary        string  `json:"summary"`
	City           string  `json:"city"`
	TemperatureC   float64 `json:"temperature_c"`
	NewWaterGoalML float64 `json:"new_water_goal_ml"`
}

// Tool handlers

func (s *Server) handleSetProfile(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, promptOutput, error) {
	r := s.flow.Start(input.UserID)
	return nil, promptOutput{Prompt: r.Text, Options: r.Options}, nil
}

func (s *Server) handleProfileInput(ctx context.Context, req *mcp.CallToolRequest, input profileInputInput) (*mcp.CallToolResult, promptOutput, error) {
	r, err := s.flow.Input(ctx, input.UserID, input.Text)
	if err != nil {
		return nil, promptOutput{}, fmt.Errorf("profile input failed: %w", err)
	}
	return nil, promptOutput{Prompt: r.Text, Options: r.Options, Done: r.Done}, nil
}

func (s *Server) handleLogWater(ctx context.Context, req *mcp.CallToolRequest, input logWaterInput) (*mcp.CallToolResult, any, error) {
	res, err := s.tracker.LogWater(input.UserID, input.AmountML)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to log water: %w", err)
	}
	return nil, res, nil
}

func (s *Server) handleLogFood(ctx context.Context, req *mcp.CallToolRequest, input logFoodInput) (*mcp.CallToolResult, any, error) {
	res, err := s.tracker.LogFood(ctx, input.UserID, input.Product, input.WeightG)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to log food: %w", err)
	}
	return nil, res, nil
}

func (s *Server) handleLogWorkout(ctx context.Context, req *mcp.CallToolRequest, input logWorkoutInput) (*mcp.CallToolResult, any, error) {
	res, err := s.tracker.LogWorkout(input.UserID, input.Activity, input.Minutes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to log workout: %w", err)
	}
	return nil, res, nil
}

func (s *Server) handleCheckProgress(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, any, error) {
	p, err := s.tracker.CheckProgress(input.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check progress: %w", err)
	}
	return nil, p, nil
}

func (s *Server) handleNewDay(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, newDayOutput, error) {
	roll, err := s.tracker.NewDay(ctx, input.UserID)
	if err != nil {
		return nil, newDayOutput{}, fmt.Errorf("failed to roll new day: %w", err)
	}
	return nil, newDayOutput{
		Summary:        roll.Summary(),
		City:           roll.City,
		TemperatureC:   roll.TemperatureC,
		NewWaterGoalML: roll.NewWaterGoalML,
	}, nil
}

func (s *Server) handleProfileInfo(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, any, error) {
	p, err := s.tracker.ProfileInfo(input.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return nil, map[string]any{"profile": p, "summary": dialogue.Summary(p)}, nil
}

func (s *Server) handleHistory(ctx context.Context, req *mcp.CallToolRequest, input historyInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 7
	}
	days, err := s.tracker.History(input.UserID, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list history: %w", err)
	}
	if len(days) == 0 {
		return nil, map[string]any{"message": "No archived days yet."}, nil
	}
	return nil, days, nil
}
