package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"pilotage/internal/logging"
	"pilotage/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const authorizedChat int64 = 42

// fakeSender records outbound messages.
type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func (f *fakeSender) lastText() string {
	msgs := f.messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Text
}

// fakeStore is an in-memory TaskStore keyed by day. calls counts every store
// method invocation so tests can assert that validation and authorization
// short-circuit before the store.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[string][]*store.Task
	notes  map[string]string
	seeded map[string]bool
	calls  int
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:  make(map[string][]*store.Task),
		notes:  make(map[string]string),
		seeded: make(map[string]bool),
	}
}

func dayKey(day time.Time) string { return day.Format("2006-01-02") }

func (f *fakeStore) enter() error {
	f.calls++
	return f.err
}

func (f *fakeStore) AddTask(_ context.Context, day time.Time, title, category, justification string, impact *string) (store.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return store.Task{}, err
	}
	f.nextID++
	t := &store.Task{
		ID:            f.nextID,
		Title:         title,
		Category:      category,
		Justification: justification,
		Impact:        impact,
		TaskDate:      day,
	}
	f.tasks[dayKey(day)] = append(f.tasks[dayKey(day)], t)
	return *t, nil
}

func (f *fakeStore) ListTasks(_ context.Context, day time.Time) ([]store.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return nil, err
	}
	var out []store.Task
	for _, t := range f.tasks[dayKey(day)] {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) ListIncomplete(_ context.Context, day time.Time) ([]store.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return nil, err
	}
	var out []store.Task
	for _, t := range f.tasks[dayKey(day)] {
		if !t.Completed {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) find(day time.Time, id int64) *store.Task {
	for _, t := range f.tasks[dayKey(day)] {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (f *fakeStore) MarkDone(_ context.Context, day time.Time, id int64) (store.Task, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return store.Task{}, false, err
	}
	t := f.find(day, id)
	if t == nil {
		return store.Task{}, false, nil
	}
	now := time.Now()
	t.Completed = true
	t.CompletedAt = &now
	return *t, true, nil
}

func (f *fakeStore) MarkUndone(_ context.Context, day time.Time, id int64) (store.Task, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return store.Task{}, false, err
	}
	t := f.find(day, id)
	if t == nil {
		return store.Task{}, false, nil
	}
	t.Completed = false
	t.CompletedAt = nil
	return *t, true, nil
}

func (f *fakeStore) DeleteTask(_ context.Context, day time.Time, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return false, err
	}
	key := dayKey(day)
	for i, t := range f.tasks[key] {
		if t.ID == id {
			f.tasks[key] = append(f.tasks[key][:i], f.tasks[key][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetStats(_ context.Context, day time.Time) (store.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return store.Stats{}, err
	}
	var st store.Stats
	for _, t := range f.tasks[dayKey(day)] {
		st.Total++
		if t.Completed {
			st.Completed++
		} else {
			st.Pending++
		}
	}
	return st, nil
}

func (f *fakeStore) SeedDefaults(_ context.Context, day time.Time) ([]store.Task, error) {
	f.mu.Lock()
	if err := f.enter(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if len(f.tasks[dayKey(day)]) > 0 {
		f.mu.Unlock()
		return nil, nil
	}
	f.mu.Unlock()

	var created []store.Task
	for _, title := range []string{"Sport", "Anime/Manga", "Sommeil (8h)"} {
		t, _ := f.AddTask(context.Background(), day, title, store.CategoryRecovery, "", nil)
		created = append(created, t)
	}
	for _, title := range []string{"Apprentissage Rust", "Prospection Cyber"} {
		t, _ := f.AddTask(context.Background(), day, title, store.CategoryCore, "", nil)
		created = append(created, t)
	}
	return created, nil
}

func (f *fakeStore) SetNote(_ context.Context, day time.Time, text string) (store.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return store.Note{}, err
	}
	f.notes[dayKey(day)] = text
	return store.Note{NoteDate: day, Note: text, UpdatedAt: time.Now()}, nil
}

func (f *fakeStore) GetNote(_ context.Context, day time.Time) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return "", false, err
	}
	text, ok := f.notes[dayKey(day)]
	return text, ok, nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestBot(st TaskStore, snd sender) *Bot {
	return &Bot{
		sender: snd,
		store:  st,
		config: Config{
			ChatID:         authorizedChat,
			Location:       time.UTC,
			ReminderHour:   21,
			ReminderMinute: 0,
		},
		logger: logging.Nop(),
		now:    func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

// commandMessage builds an inbound message carrying the bot_command entity
// the Telegram API would attach.
func commandMessage(chatID int64, text string) *tgbotapi.Message {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmdLen = i
	}
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: cmdLen},
		},
	}
}
