// Package config loads runtime settings from the process environment.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the optional settings.
const (
	DefaultTimezone       = "Europe/Paris"
	DefaultReminderHour   = 21
	DefaultReminderMinute = 0
)

// Config holds every runtime setting for the bot process.
type Config struct {
	// BotToken authenticates against the Telegram bot API.
	BotToken string
	// ChatID is the single authorized chat; commands from any other chat
	// are dropped.
	ChatID int64
	// DatabaseURL is the Postgres connection string.
	DatabaseURL string
	// Timezone is the IANA zone name used for day boundaries and the
	// reminder trigger.
	Timezone string
	// ReminderHour and ReminderMinute set the daily reminder time in the
	// configured zone.
	ReminderHour   int
	ReminderMinute int
}

var envBindings = map[string]string{
	"bot_token":       "TELEGRAM_BOT_TOKEN",
	"chat_id":         "TELEGRAM_CHAT_ID",
	"database_url":    "DATABASE_URL",
	"timezone":        "TIMEZONE",
	"reminder_hour":   "REMINDER_HOUR",
	"reminder_minute": "REMINDER_MINUTE",
}

// Load reads configuration from the environment and validates it. All
// missing or malformed settings are reported in a single error.
func Load() (*Config, error) {
	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("reminder_hour", DefaultReminderHour)
	v.SetDefault("reminder_minute", DefaultReminderMinute)

	cfg := &Config{
		BotToken:       strings.TrimSpace(v.GetString("bot_token")),
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		Timezone:       strings.TrimSpace(v.GetString("timezone")),
		ReminderHour:   v.GetInt("reminder_hour"),
		ReminderMinute: v.GetInt("reminder_minute"),
	}

	var problems []string

	chatRaw := strings.TrimSpace(v.GetString("chat_id"))
	if chatRaw == "" {
		problems = append(problems, "TELEGRAM_CHAT_ID not set")
	} else {
		chatID, err := strconv.ParseInt(chatRaw, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("TELEGRAM_CHAT_ID %q is not a numeric chat ID", chatRaw))
		} else {
			cfg.ChatID = chatID
		}
	}

	problems = append(problems, cfg.validate()...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func (c *Config) validate() []string {
	var problems []string
	if c.BotToken == "" {
		problems = append(problems, "TELEGRAM_BOT_TOKEN not set")
	}
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL not set")
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		problems = append(problems, fmt.Sprintf("REMINDER_HOUR %d out of range 0-23", c.ReminderHour))
	}
	if c.ReminderMinute < 0 || c.ReminderMinute > 59 {
		problems = append(problems, fmt.Sprintf("REMINDER_MINUTE %d out of range 0-59", c.ReminderMinute))
	}
	return problems
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// RedactedDatabaseURL returns the database location without credentials,
// suitable for startup logs.
func (c *Config) RedactedDatabaseURL() string {
	if i := strings.LastIndex(c.DatabaseURL, "@"); i >= 0 {
		return c.DatabaseURL[i+1:]
	}
	if c.DatabaseURL != "" {
		return "configured"
	}
	return ""
}
