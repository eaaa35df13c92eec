package bot

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pilotage/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `*Pilotage de Survie*

Commands:
/list - Show today's tasks
/add <title> - Add a task
/done <id> - Mark a task done
/undone <id> - Mark a task not done
/delete <id> - Delete a task
/stats - Today's statistics
/init - Create the default tasks
/note <text> - Set today's note`

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || !msg.IsCommand() {
		return
	}
	cmd := msg.Command()

	if msg.Chat.ID != b.config.ChatID {
		// Silent drop, except start/help which get an explicit refusal.
		if cmd == "start" || cmd == "help" {
			b.reply(msg.Chat.ID, "Not authorized.")
		}
		b.logger.Warn("Dropped /%s from unauthorized chat %d", cmd, msg.Chat.ID)
		return
	}

	args := strings.Fields(msg.CommandArguments())
	switch cmd {
	case "start", "help":
		b.reply(msg.Chat.ID, helpText)
	case "list":
		b.handleList(ctx, msg)
	case "add":
		b.handleAdd(ctx, msg, args)
	case "done":
		b.handleDone(ctx, msg, args)
	case "undone":
		b.handleUndone(ctx, msg, args)
	case "delete":
		b.handleDelete(ctx, msg, args)
	case "stats":
		b.handleStats(ctx, msg)
	case "init":
		b.handleInit(ctx, msg)
	case "note":
		b.handleNote(ctx, msg, args)
	}
}

func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message) {
	tasks, err := b.store.ListTasks(ctx, b.today())
	if err != nil {
		b.storeFailure(msg.Chat.ID, "list tasks", err)
		return
	}
	b.reply(msg.Chat.ID, formatTaskList(tasks))
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.reply(msg.Chat.ID, "Usage: /add <task title>")
		return
	}
	title := strings.Join(args, " ")
	task, err := b.store.AddTask(ctx, b.today(), title, store.CategoryDynamic, "", nil)
	if err != nil {
		b.storeFailure(msg.Chat.ID, "add task", err)
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Task added: *%s* (ID: %d)", task.Title, task.ID))
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message, args []string) {
	id, ok := parseTaskID(args)
	if !ok {
		b.reply(msg.Chat.ID, "Usage: /done <id>")
		return
	}
	task, found, err := b.store.MarkDone(ctx, b.today(), id)
	if err != nil {
		b.storeFailure(msg.Chat.ID, "mark done", err)
		return
	}
	if !found {
		b.reply(msg.Chat.ID, "Task not found.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Done: *%s*", task.Title))
}

func (b *Bot) handleUndone(ctx context.Context, msg *tgbotapi.Message, args []string) {
	id, ok := parseTaskID(args)
	if !ok {
		b.reply(msg.Chat.ID, "Usage: /undone <id>")
		return
	}
	task, found, err := b.store.MarkUndone(ctx, b.today(), id)
	if err != nil {
		b.storeFailure(msg.Chat.ID, "mark undone", err)
		return
	}
	if !found {
		b.reply(msg.Chat.ID, "Task not found.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Not done: *%s*", task.Title))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message, args []string) {
	id, ok := parseTaskID(args)
	if !ok {
		b.reply(msg.Chat.ID, "Usage: /delete <id>")
		return
	}
	removed, err := b.store.DeleteTask(ctx, b.today(), id)
	if err != nil {
		b.storeFailure(msg.Chat.ID, "delete task", err)
		return
	}
	if !removed {
		b.reply(msg.Chat.ID, "Task not found.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Task %d deleted.", id))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	st, err := b.store.GetStats(ctx, b.today())
	if err != nil {
		b.storeFailure(msg.Chat.ID, "get stats", err)
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"*Today's stats:*\n\nTotal: %d\nDone: %d\nPending: %d\nProgress: %d%%",
		st.Total, st.Completed, st.Pending, progressPercent(st)))
}

func (b *Bot) handleInit(ctx context.Context, msg *tgbotapi.Message) {
	created, err := b.store.SeedDefaults(ctx, b.today())
	if err != nil {
		b.storeFailure(msg.Chat.ID, "seed defaults", err)
		return
	}
	if len(created) == 0 {
		b.reply(msg.Chat.ID, "Tasks already exist for today.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("%d default tasks created.\nUse /list to see them.", len(created)))
}

func (b *Bot) handleNote(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		text, found, err := b.store.GetNote(ctx, b.today())
		if err != nil {
			b.storeFailure(msg.Chat.ID, "get note", err)
			return
		}
		if !found {
			b.reply(msg.Chat.ID, "No note yet. Usage: /note <text>")
			return
		}
		b.reply(msg.Chat.ID, "Current note: "+text)
		return
	}
	if _, err := b.store.SetNote(ctx, b.today(), strings.Join(args, " ")); err != nil {
		b.storeFailure(msg.Chat.ID, "set note", err)
		return
	}
	b.reply(msg.Chat.ID, "Note saved.")
}

// parseTaskID accepts exactly one digit-only argument. Anything else is a
// validation miss and must not reach the store.
func parseTaskID(args []string) (int64, bool) {
	if len(args) == 0 || !isDigits(args[0]) {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func progressPercent(st store.Stats) int {
	if st.Total == 0 {
		return 0
	}
	return int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
}
