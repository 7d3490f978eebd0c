// Package config loads the session configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rolelink/rolelink/internal/model"
)

// Config holds the application configuration
type Config struct {
	Directory       DirectoryConfig       `yaml:"directory"`
	DirectoryServer DirectoryServerConfig `yaml:"directory_server"`
	Discord         DiscordConfig         `yaml:"discord"`
	Reminders       ReminderConfig        `yaml:"reminders"`
	Reserved        ReservedConfig        `yaml:"reserved"`
	Tiers           []TierConfig          `yaml:"tiers"`

	// Administrators are player ids whose joins skip link prompting
	Administrators []uint64 `yaml:"administrators"`
}

// DirectoryConfig holds settings for the remote identity directory
type DirectoryConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// DirectoryServerConfig holds settings for the companion directory service
type DirectoryServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// TokenHash is the bcrypt hash of the accepted Authorization token.
	// Empty disables auth.
	TokenHash string `yaml:"token_hash"`
	// Storage selects the backend: "memory" or "redis"
	Storage  string `yaml:"storage"`
	RedisURL string `yaml:"redis_url"`
}

// DiscordConfig holds settings for the Discord gateway
type DiscordConfig struct {
	BotToken      string `yaml:"bot_token"`
	GuildID       string `yaml:"guild_id"`
	LinkChannelID string `yaml:"link_channel_id"`
}

// ReminderConfig holds settings for the unlinked-join reminder
type ReminderConfig struct {
	Enabled *bool         `yaml:"enabled"`
	Delay   time.Duration `yaml:"delay"`
	// ExcludePrivileged skips reminders for players already holding an
	// applied level above none
	ExcludePrivileged *bool `yaml:"exclude_privileged"`
}

// ReservedConfig holds settings for the full-server reserved-slot bypass
type ReservedConfig struct {
	Enabled bool     `yaml:"enabled"`
	Groups  []string `yaml:"groups"`
}

// TierConfig is one permission tier, listed lowest first in the file
type TierConfig struct {
	Name   string   `yaml:"name"`
	Groups []string `yaml:"groups"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Directory.URL == "" {
		c.Directory.URL = "http://localhost:8080"
	}
	if c.DirectoryServer.ListenAddr == "" {
		c.DirectoryServer.ListenAddr = ":8080"
	}
	if c.DirectoryServer.Storage == "" {
		c.DirectoryServer.Storage = "memory"
	}
	if c.DirectoryServer.RedisURL == "" {
		c.DirectoryServer.RedisURL = "redis://localhost:6379"
	}
	if c.Reminders.Delay == 0 {
		c.Reminders.Delay = 5 * time.Second
	}
	if c.Reminders.Enabled == nil {
		c.Reminders.Enabled = boolPtr(true)
	}
	if c.Reminders.ExcludePrivileged == nil {
		c.Reminders.ExcludePrivileged = boolPtr(true)
	}
}

func boolPtr(b bool) *bool { return &b }

// TierMap builds the ordered tier map; listed order is lowest to highest,
// levels are assigned 1..n.
func (c *Config) TierMap() model.TierMap {
	tiers := make([]model.Tier, 0, len(c.Tiers))
	for i, tc := range c.Tiers {
		groups := make([]model.GroupID, 0, len(tc.Groups))
		for _, g := range tc.Groups {
			if g != "" {
				groups = append(groups, model.GroupID(g))
			}
		}
		tiers = append(tiers, model.Tier{
			Name:   tc.Name,
			Level:  model.Level(i + 1),
			Groups: groups,
		})
	}
	return model.TierMap{Tiers: tiers}
}

// ReservedGroups returns the reserved group set as model types
func (c *Config) ReservedGroups() []model.GroupID {
	groups := make([]model.GroupID, 0, len(c.Reserved.Groups))
	for _, g := range c.Reserved.Groups {
		if g != "" {
			groups = append(groups, model.GroupID(g))
		}
	}
	return groups
}

// IsAdministrator reports whether the player is on the configured admin list
func (c *Config) IsAdministrator(id model.PlayerID) bool {
	for _, admin := range c.Administrators {
		if model.PlayerID(admin) == id {
			return true
		}
	}
	return false
}

// GatewayEnabled reports whether the Discord gateway can run at all.
// A missing token disables the feature rather than failing startup.
func (c *Config) GatewayEnabled() bool {
	return c.Discord.BotToken != ""
}

// LinkingEnabled reports whether verification-code linking can run; it
// needs both a connected gateway and a designated channel.
func (c *Config) LinkingEnabled() bool {
	return c.GatewayEnabled() && c.Discord.LinkChannelID != ""
}

// RemindersEnabled reports whether unlinked-join reminders are on
func (c *Config) RemindersEnabled() bool {
	return c.Reminders.Enabled != nil && *c.Reminders.Enabled
}

// RemindersExcludePrivileged reports the privileged-exclusion policy
func (c *Config) RemindersExcludePrivileged() bool {
	return c.Reminders.ExcludePrivileged != nil && *c.Reminders.ExcludePrivileged
}
