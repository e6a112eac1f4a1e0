// ABOUTME: CLI command for a local interactive tracking session.
// ABOUTME: Drives the same dialogue and tracker paths without Telegram.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/avolkov/aquacal/internal/dialogue"
	"github.com/avolkov/aquacal/internal/models"
	"github.com/avolkov/aquacal/internal/tracker"
)

// localUserID identifies the single terminal user.
const localUserID int64 = 1

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive local session",
	Long: `Track water and calories interactively in the terminal.

Commands mirror the bot: /set_profile, /log_water <ml>,
/log_food <product>[, <grams>], /log_workout <type> <minutes>,
/check_progress, /new_day, /profile_info, /history, /quit.
Anything else is treated as an answer to the active setup dialogue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		scanner := bufio.NewScanner(os.Stdin)

		color.Cyan("aquacal interactive session. /set_profile to begin, /quit to exit.")
		fmt.Print("> ")
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "/quit" || line == "/exit" {
				break
			}
			if line != "" {
				handleChatLine(ctx, line)
			}
			fmt.Print("> ")
		}
		return scanner.Err()
	},
}

func handleChatLine(ctx context.Context, line string) {
	if !strings.HasPrefix(line, "/") {
		if !appFlow.Active(localUserID) {
			color.Yellow("Not in setup. Try /set_profile or /check_progress.")
			return
		}
		r, err := appFlow.Input(ctx, localUserID, line)
		if err != nil {
			color.Red("✗ %v", err)
			return
		}
		printReply(r)
		return
	}

	parts := strings.SplitN(line[1:], " ", 2)
	command := parts[0]
	rest := ""
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}

	var err error
	switch command {
	case "set_profile":
		printReply(appFlow.Start(localUserID))
	case "log_water":
		err = chatLogWater(rest)
	case "log_food":
		err = chatLogFood(ctx, rest)
	case "log_workout":
		err = chatLogWorkout(rest)
	case "check_progress":
		err = chatProgress()
	case "new_day":
		err = chatNewDay(ctx)
	case "profile_info":
		err = chatProfileInfo()
	case "history":
		err = chatHistory()
	default:
		color.Yellow("Unknown command: /%s", command)
	}
	if err != nil {
		color.Red("✗ %v", err)
		if tracker.IsNotConfigured(err) {
			color.Yellow("Run /set_profile first.")
		}
	}
}

func printReply(r dialogue.Reply) {
	if r.Done {
		color.Green("✓ Profile saved")
	}
	fmt.Println(r.Text)
	for _, opt := range r.Options {
		fmt.Printf("  - %s\n", opt)
	}
}

func chatLogWater(args string) error {
	amount, err := strconv.ParseFloat(args, 64)
	if err != nil {
		return fmt.Errorf("usage: /log_water <ml>")
	}
	res, err := appTrack.LogWater(localUserID, amount)
	if err != nil {
		return err
	}
	color.Green("✓ Logged %.0f ml", res.AddedML)
	fmt.Printf("  today %.0f ml, remaining %.0f ml\n", res.LoggedML, res.RemainingML)
	return nil
}

func chatLogFood(ctx context.Context, args string) error {
	if args == "" {
		return fmt.Errorf("usage: /log_food <product>[, <grams>]")
	}
	product := args
	weight := 0.0
	if i := strings.LastIndex(args, ","); i >= 0 {
		w, err := strconv.ParseFloat(strings.TrimSpace(args[i+1:]), 64)
		if err != nil || w <= 0 {
			return fmt.Errorf("weight must be a positive number of grams")
		}
		product = strings.TrimSpace(args[:i])
		weight = w
	}
	res, err := appTrack.LogFood(ctx, localUserID, product, weight)
	if err != nil {
		return err
	}
	color.Green("✓ %s, %.0f g: %.2f kcal", res.Product, res.WeightG, res.Calories)
	fmt.Printf("  consumed today: %.2f kcal\n", res.LoggedKcal)
	return nil
}

func chatLogWorkout(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("usage: /log_workout <type> <minutes>")
	}
	minutes, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("minutes must be a whole number")
	}
	res, err := appTrack.LogWorkout(localUserID, fields[0], minutes)
	if err != nil {
		if errors.Is(err, models.ErrUnknownActivity) {
			return fmt.Errorf("unknown workout type; available: running, yoga, swimming, strength")
		}
		return err
	}
	color.Green("✓ %s %d min: %.0f kcal burned", res.Activity, res.Minutes, res.CaloriesBurned)
	fmt.Printf("  water goal now %.0f ml", res.WaterGoalML)
	if res.BonusWaterML > 0 {
		fmt.Printf(", drink an extra %.0f ml", res.BonusWaterML)
	}
	fmt.Println()
	return nil
}

func chatProgress() error {
	p, err := appTrack.CheckProgress(localUserID)
	if err != nil {
		return err
	}
	s := p.Snapshot
	color.Cyan("Water")
	fmt.Printf("  drunk %.0f of %.0f ml, remaining %.0f ml\n",
		s.Water.LoggedML, s.Water.GoalML, s.Water.RemainingML)
	color.Cyan("Calories")
	fmt.Printf("  consumed %.2f of %.0f kcal, burned %.2f, balance %.2f\n",
		s.Calories.LoggedKcal, s.Calories.GoalKcal, s.Calories.BurnedKcal, s.Calories.BalanceKcal)
	return nil
}

func chatNewDay(ctx context.Context) error {
	roll, err := appTrack.NewDay(ctx, localUserID)
	if err != nil {
		return err
	}
	fmt.Println(roll.Summary())
	color.Green("✓ Fresh day: water goal for %s (%.0f°C) is %.0f ml",
		roll.City, roll.TemperatureC, roll.NewWaterGoalML)
	return nil
}

func chatProfileInfo() error {
	p, err := appTrack.ProfileInfo(localUserID)
	if err != nil {
		return err
	}
	fmt.Println(dialogue.Summary(p))
	return nil
}

func chatHistory() error {
	days, err := appTrack.History(localUserID, 7)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Println("No archived days yet. /new_day closes the current one.")
		return nil
	}
	for _, d := range days {
		mark := "missed"
		if d.WaterGoalMet {
			mark = "met"
		}
		fmt.Printf("%s  %s  water %.0f/%.0f ml (%s)  balance %.0f kcal\n",
			color.New(color.Faint).Sprint(d.ID.String()[:8]),
			d.Date.Format("2006-01-02"), d.WaterLoggedML, d.WaterGoalML, mark,
			d.CaloriesLogged-d.CaloriesBurned)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
