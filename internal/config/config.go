// Package config loads the bot configuration: the core sections plus the
// database and challenge settings.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/adventbot/core/config"
	coredatabase "github.com/m3rciful/adventbot/core/database"
	"github.com/m3rciful/adventbot/internal/challenge"
)

// ChallengeConfig describes the event calendar and public links.
type ChallengeConfig struct {
	// Timezone is the IANA zone whose calendar day gates submissions.
	Timezone   string `yaml:"timezone" envconfig:"CHALLENGE_TIMEZONE"`
	FirstDay   int    `yaml:"first_day" envconfig:"CHALLENGE_FIRST_DAY"`
	LastDay    int    `yaml:"last_day" envconfig:"CHALLENGE_LAST_DAY"`
	MonthLabel string `yaml:"month_label" envconfig:"CHALLENGE_MONTH_LABEL"`
	ChatURL    string `yaml:"chat_url" envconfig:"CHALLENGE_CHAT_URL"`
	TasksURL   string `yaml:"tasks_url" envconfig:"CHALLENGE_TASKS_URL"`
	// FAQ and Rules override the built-in pages. FAQ is HTML.
	FAQ   string `yaml:"faq"`
	Rules string `yaml:"rules"`
}

// Config is the complete bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database  coredatabase.Config `yaml:"database"`
	Challenge ChallengeConfig     `yaml:"challenge"`
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills challenge defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if err := cfg.Database.Validate(); err != nil {
		return err
	}

	ch := &cfg.Challenge
	if strings.TrimSpace(ch.Timezone) == "" {
		ch.Timezone = challenge.DefaultTimezone
	}
	if _, err := time.LoadLocation(ch.Timezone); err != nil {
		return fmt.Errorf("challenge.timezone: %w", err)
	}
	if ch.FirstDay == 0 {
		ch.FirstDay = 7
	}
	if ch.LastDay == 0 {
		ch.LastDay = 18
	}
	if ch.FirstDay < 1 || ch.LastDay > 31 || ch.FirstDay > ch.LastDay {
		return fmt.Errorf("challenge days must satisfy 1 <= first_day <= last_day <= 31, got %d..%d", ch.FirstDay, ch.LastDay)
	}
	if strings.TrimSpace(ch.MonthLabel) == "" {
		ch.MonthLabel = "декабря"
	}
	for name, raw := range map[string]string{"chat_url": ch.ChatURL, "tasks_url": ch.TasksURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("challenge.%s must be an absolute URL, got %q", name, raw)
		}
	}
	return nil
}
