package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"stagebook/internal/app/performances"
	"stagebook/internal/models"
)

// MessageSender is the subset of the bot API used for alerts.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts admin alerts to a single chat.
type Telegram struct {
	bot    MessageSender
	chatID int64
	loc    *time.Location
}

// NewTelegram connects to the bot API with token and targets chatID.
func NewTelegram(token string, chatID int64, loc *time.Location) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	bot.Debug = false
	return NewTelegramWithSender(bot, chatID, loc), nil
}

// NewTelegramWithSender builds a notifier over an existing sender.
func NewTelegramWithSender(bot MessageSender, chatID int64, loc *time.Location) *Telegram {
	if loc == nil {
		loc = time.Local
	}
	return &Telegram{bot: bot, chatID: chatID, loc: loc}
}

func (t *Telegram) ArtistRegistered(ctx context.Context, artist models.Artist) error {
	return t.send(ctx, artistMessage(artist))
}

func (t *Telegram) PerformanceRequested(ctx context.Context, artistName string, performance models.Performance) error {
	return t.send(ctx, performanceMessage(artistName, performance, t.loc))
}

func (t *Telegram) BatchRequested(ctx context.Context, artistName string, result performances.BatchResult) error {
	return t.send(ctx, batchMessage(artistName, result, t.loc))
}

func (t *Telegram) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("send telegram alert: %w", err)
	}
	return nil
}

func artistMessage(artist models.Artist) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New artist registered: %s\n", artist.Name)
	fmt.Fprintf(&b, "Genres: %s\n", strings.Join(artist.Genres, ", "))
	if artist.Instruments != "" {
		fmt.Fprintf(&b, "Instruments: %s\n", artist.Instruments)
	}
	fmt.Fprintf(&b, "Members: %d", artist.MemberCount)
	return b.String()
}

func performanceMessage(artistName string, performance models.Performance, loc *time.Location) string {
	msg := fmt.Sprintf("Booking request from %s for %s",
		artistName, performance.PerformanceDate.In(loc).Format(time.DateOnly))
	if performance.Notes != "" {
		msg += "\nNotes: " + performance.Notes
	}
	return msg
}

func batchMessage(artistName string, result performances.BatchResult, loc *time.Location) string {
	var dates []string
	for _, item := range result.Results {
		if item.Performance != nil {
			dates = append(dates, item.Date.In(loc).Format(time.DateOnly))
		}
	}
	msg := fmt.Sprintf("%s requested %d date(s): %s", artistName, result.Succeeded, strings.Join(dates, ", "))
	if result.Failed > 0 {
		msg += fmt.Sprintf("\n%d date(s) could not be saved", result.Failed)
	}
	return msg
}
