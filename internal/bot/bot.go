// Package bot dispatches Telegram commands over the task store and pushes
// the daily reminder.
package bot

import (
	"context"
	"fmt"
	"time"

	"pilotage/internal/logging"
	"pilotage/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TaskStore is the slice of the store the bot depends on.
type TaskStore interface {
	AddTask(ctx context.Context, day time.Time, title, category, justification string, impact *string) (store.Task, error)
	ListTasks(ctx context.Context, day time.Time) ([]store.Task, error)
	ListIncomplete(ctx context.Context, day time.Time) ([]store.Task, error)
	MarkDone(ctx context.Context, day time.Time, id int64) (store.Task, bool, error)
	MarkUndone(ctx context.Context, day time.Time, id int64) (store.Task, bool, error)
	DeleteTask(ctx context.Context, day time.Time, id int64) (bool, error)
	GetStats(ctx context.Context, day time.Time) (store.Stats, error)
	SeedDefaults(ctx context.Context, day time.Time) ([]store.Task, error)
	SetNote(ctx context.Context, day time.Time, text string) (store.Note, error)
	GetNote(ctx context.Context, day time.Time) (string, bool, error)
}

// sender is the outbound half of the Telegram API.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Config holds the bot's runtime settings.
type Config struct {
	// ChatID is the only chat allowed to issue commands and the reminder
	// recipient.
	ChatID int64
	// Location defines the day boundary and the reminder's wall clock.
	Location *time.Location
	// ReminderHour/ReminderMinute only label the reminder header; the
	// scheduler owns the actual trigger.
	ReminderHour   int
	ReminderMinute int
}

// Bot processes inbound updates and sends replies and reminders.
type Bot struct {
	api    *tgbotapi.BotAPI
	sender sender
	store  TaskStore
	config Config
	logger logging.Logger
	now    func() time.Time
}

// New connects to the Telegram bot API (the client validates the token via
// getMe) and constructs the Bot.
func New(token string, cfg Config, st TaskStore, logger logging.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Bot{
		api:    api,
		sender: api,
		store:  st,
		config: cfg,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}, nil
}

// Run processes inbound updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot running as @%s", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// today computes the current civil date in the configured zone. Every store
// call receives this explicitly; the database never decides the day.
func (b *Bot) today() time.Time {
	return store.Day(b.now().In(b.config.Location))
}

func (b *Bot) reply(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.Send(m); err != nil {
		b.logger.Warn("Failed to send reply to chat %d: %v", chatID, err)
	}
}

// storeFailure logs a failed store call and sends the generic failure reply.
func (b *Bot) storeFailure(chatID int64, op string, err error) {
	b.logger.Error("Store call failed (%s): %v", op, err)
	b.reply(chatID, "Something went wrong, please try again.")
}
