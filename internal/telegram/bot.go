// ABOUTME: Thin Telegram transport over the dialogue flow and tracker.
// ABOUTME: Parses commands, renders results, holds no domain logic.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avolkov/aquacal/internal/dialogue"
	"github.com/avolkov/aquacal/internal/food"
	"github.com/avolkov/aquacal/internal/ledger"
	"github.com/avolkov/aquacal/internal/metrics"
	"github.com/avolkov/aquacal/internal/models"
	"github.com/avolkov/aquacal/internal/tracker"
	"github.com/avolkov/aquacal/internal/weather"
)

const (
	msgNotConfigured = "Please set up your profile first with /set_profile."
	msgTryLater      = "Something went wrong, please try again later."
)

// Bot is the Telegram long-polling transport.
type Bot struct {
	api     *tgbotapi.BotAPI
	tracker *tracker.Tracker
	flow    *dialogue.Flow
	log     *log.Logger
}

// New creates a Bot with the given token.
func New(token string, t *tracker.Tracker, f *dialogue.Flow, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Bot{api: api, tracker: t, flow: f, log: logger}, nil
}

// Run polls updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	b.log.Info("bot authorized", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, userID, msg)
		return
	}

	// Free text only means something mid-setup.
	if !b.flow.Active(userID) {
		b.reply(userID, "I did not understand that. See /help for the commands.")
		return
	}

	r, err := b.flow.Input(ctx, userID, msg.Text)
	if err != nil {
		b.log.Error("dialogue input failed", "user", userID, "err", err)
		b.reply(userID, msgTryLater)
		return
	}
	b.sendReply(userID, r)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	data := strings.TrimPrefix(cb.Data, "activity:")

	// Acknowledge the button press regardless of outcome.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack failed", "user", userID, "err", err)
	}

	if !b.flow.Active(userID) {
		return
	}
	r, err := b.flow.Input(ctx, userID, data)
	if err != nil {
		b.log.Error("dialogue callback failed", "user", userID, "err", err)
		b.reply(userID, msgTryLater)
		return
	}
	b.sendReply(userID, r)
}

func (b *Bot) handleCommand(ctx context.Context, userID int64, msg *tgbotapi.Message) {
	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	var err error
	switch command {
	case "start":
		b.reply(userID, "Hi! I help you track daily water and calories.\n"+
			"Run /set_profile to get started, /help for the full command list.")
	case "help":
		b.reply(userID, helpText)
	case "set_profile":
		b.sendReply(userID, b.flow.Start(userID))
	case "log_water":
		err = b.cmdLogWater(userID, args)
	case "log_food":
		err = b.cmdLogFood(ctx, userID, args)
	case "log_workout":
		err = b.cmdLogWorkout(userID, args)
	case "check_progress":
		err = b.cmdCheckProgress(userID)
	case "new_day":
		err = b.cmdNewDay(ctx, userID)
	case "profile_info":
		err = b.cmdProfileInfo(userID)
	case "history":
		err = b.cmdHistory(userID)
	default:
		b.reply(userID, "Unknown command, see /help.")
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
		b.reply(userID, renderError(err))
		b.log.Warn("command failed", "command", command, "user", userID, "err", err)
	}
	metrics.IncCommand(command, status)
}

func (b *Bot) cmdLogWater(userID int64, args string) error {
	amount, err := strconv.ParseFloat(args, 64)
	if err != nil {
		b.reply(userID, "Usage: /log_water <ml>, for example /log_water 250")
		return nil
	}
	res, err := b.tracker.LogWater(userID, amount)
	if err != nil {
		return err
	}
	b.reply(userID, fmt.Sprintf(
		"You drank %.0f ml.\nLogged today: %.0f ml.\nRemaining to goal: %.0f ml.",
		res.AddedML, res.LoggedML, res.RemainingML))
	return nil
}

func (b *Bot) cmdLogFood(ctx context.Context, userID int64, args string) error {
	if args == "" {
		b.reply(userID, "Usage: /log_food <product>[, <grams>], for example /log_food banana, 120")
		return nil
	}

	product := args
	weight := 0.0
	if i := strings.LastIndex(args, ","); i >= 0 {
		w, err := strconv.ParseFloat(strings.TrimSpace(args[i+1:]), 64)
		if err != nil || w <= 0 {
			b.reply(userID, "The weight must be a positive number of grams.")
			return nil
		}
		product = strings.TrimSpace(args[:i])
		weight = w
	}

	res, err := b.tracker.LogFood(ctx, userID, product, weight)
	if err != nil {
		if errors.Is(err, food.ErrUnavailable) {
			metrics.IncLookupFailure("food")
		}
		return err
	}
	b.reply(userID, fmt.Sprintf(
		"%s, %.0f g: %.2f kcal.\nConsumed today: %.2f kcal.",
		res.Product, res.WeightG, res.Calories, res.LoggedKcal))
	return nil
}

func (b *Bot) cmdLogWorkout(userID int64, args string) error {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		b.reply(userID, "Usage: /log_workout <type> <minutes>, for example /log_workout running 30")
		return nil
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		b.reply(userID, "The duration must be a whole number of minutes.")
		return nil
	}

	res, err := b.tracker.LogWorkout(userID, parts[0], minutes)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("%s for %d minutes: %.0f kcal burned.\nWater goal is now %.0f ml.",
		res.Activity, res.Minutes, res.CaloriesBurned, res.WaterGoalML)
	if res.BonusWaterML > 0 {
		text += fmt.Sprintf("\nDrink an extra %.0f ml of water.", res.BonusWaterML)
	}
	b.reply(userID, text)
	return nil
}

func (b *Bot) cmdCheckProgress(userID int64) error {
	p, err := b.tracker.CheckProgress(userID)
	if err != nil {
		return err
	}
	s := p.Snapshot
	b.reply(userID, fmt.Sprintf(
		"Your progress today:\n"+
			"Water:\n- drunk %.0f of %.0f ml\n- remaining %.0f ml\n\n"+
			"Calories:\n- consumed %.2f of %.0f kcal\n- burned %.2f kcal\n- balance %.2f kcal",
		s.Water.LoggedML, s.Water.GoalML, s.Water.RemainingML,
		s.Calories.LoggedKcal, s.Calories.GoalKcal, s.Calories.BurnedKcal, s.Calories.BalanceKcal))
	return nil
}

func (b *Bot) cmdNewDay(ctx context.Context, userID int64) error {
	roll, err := b.tracker.NewDay(ctx, userID)
	if err != nil {
		if errors.Is(err, weather.ErrUnavailable) {
			metrics.IncLookupFailure("weather")
		}
		return err
	}
	b.reply(userID, roll.Summary())
	b.reply(userID, fmt.Sprintf(
		"Fresh day started!\nCurrent water goal for %s (%.0f°C): %.0f ml.",
		roll.City, roll.TemperatureC, roll.NewWaterGoalML))
	return nil
}

func (b *Bot) cmdProfileInfo(userID int64) error {
	p, err := b.tracker.ProfileInfo(userID)
	if err != nil {
		return err
	}
	b.reply(userID, dialogue.Summary(p))
	return nil
}

func (b *Bot) cmdHistory(userID int64) error {
	days, err := b.tracker.History(userID, 7)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		b.reply(userID, "No archived days yet. /new_day closes the current one.")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("Recent days:\n")
	for _, d := range days {
		mark := "missed"
		if d.WaterGoalMet {
			mark = "met"
		}
		fmt.Fprintf(&sb, "%s: water %.0f/%.0f ml (%s), balance %.0f kcal\n",
			d.Date.Format("2006-01-02"), d.WaterLoggedML, d.WaterGoalML, mark,
			d.CaloriesLogged-d.CaloriesBurned)
	}
	b.reply(userID, sb.String())
	return nil
}

// sendReply renders a dialogue reply, attaching an inline keyboard
// when the step expects a menu selection.
func (b *Bot) sendReply(userID int64, r dialogue.Reply) {
	msg := tgbotapi.NewMessage(userID, r.Text)
	if len(r.Options) > 0 {
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, opt := range r.Options {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(opt, "activity:"+opt)))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "user", userID, "err", err)
	}
}

func (b *Bot) reply(userID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		b.log.Error("send failed", "user", userID, "err", err)
	}
}

// renderError converts an operation error into a user-facing message.
func renderError(err error) string {
	switch {
	case errors.Is(err, ledger.ErrNotConfigured):
		return msgNotConfigured
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "Please provide a positive amount."
	case errors.Is(err, models.ErrUnknownActivity):
		return "Unknown workout type. Available: running, yoga, swimming, strength."
	case errors.Is(err, weather.ErrUnavailable), errors.Is(err, food.ErrUnavailable):
		return "The lookup service is unavailable right now, please try again later."
	default:
		return msgTryLater
	}
}

const helpText = `Available commands:

/set_profile - guided profile setup (also re-runs to change it)
/log_water <ml> - log drunk water, a positive number of milliliters
/log_food <product>[, <grams>] - log food; weight defaults to 100 g
/log_workout <type> <minutes> - running, yoga, swimming or strength
/check_progress - today's water and calorie progress
/new_day - close the day, reset counters, recompute the water goal
/profile_info - show the current profile
/history - recent archived days

Decimal numbers use a dot. Set up the profile before logging.`
