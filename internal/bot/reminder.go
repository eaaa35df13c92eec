package bot

import (
	"context"
	"fmt"
	"strings"

	"pilotage/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendDailyReminder checks for unfinished tasks and pushes the end-of-day
// reminder when any remain. All failures are logged and swallowed so the
// scheduler keeps firing on later days.
func (b *Bot) SendDailyReminder(ctx context.Context) {
	incomplete, err := b.store.ListIncomplete(ctx, b.today())
	if err != nil {
		b.logger.Error("Reminder: failed to list incomplete tasks: %v", err)
		return
	}
	if len(incomplete) == 0 {
		b.logger.Info("Reminder: all tasks completed, nothing to send")
		return
	}

	m := tgbotapi.NewMessage(b.config.ChatID, formatReminder(incomplete, b.config.ReminderHour, b.config.ReminderMinute))
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.Send(m); err != nil {
		b.logger.Warn("Reminder: send failed: %v", err)
		return
	}
	b.logger.Info("Reminder sent (%d unfinished tasks)", len(incomplete))
}

func formatReminder(tasks []store.Task, hour, minute int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%02d:%02d REMINDER*\n\n", hour, minute)
	fmt.Fprintf(&sb, "You have %d unfinished task(s):\n", len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&sb, "  - %s\n", t.Title)
	}
	sb.WriteString("\nUse /done <id> to mark them done!")
	return sb.String()
}
