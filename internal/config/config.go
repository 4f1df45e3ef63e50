// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the daemon configuration from a TOML file with
// SORTARR__ environment overrides, and serves immutable snapshots so a
// live reload never changes the rules a file already being sorted runs
// under.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/sortarr/internal/domain"
)

const envPrefix = "SORTARR"

// AppConfig owns the viper instance and the current config snapshot.
type AppConfig struct {
	viper     *viper.Viper
	configDir string
	current   atomic.Pointer[domain.Config]
}

// New loads the configuration from configPath, writing an annotated
// default file first if none exists. An empty configPath falls back to
// the user config directory.
func New(configPath string) (*AppConfig, error) {
	c := &AppConfig{viper: viper.New()}

	c.setDefaults()
	c.bindEnv()

	if err := c.load(configPath); err != nil {
		return nil, err
	}

	cfg, err := c.unmarshal()
	if err != nil {
		return nil, err
	}
	c.current.Store(cfg)

	c.watch()
	return c, nil
}

// Config returns the current immutable snapshot. Callers hold one
// snapshot per task and never see a half-applied reload.
func (c *AppConfig) Config() *domain.Config {
	return c.current.Load()
}

// ConfigDir returns the directory holding config.toml; the database
// and log files default to living next to it.
func (c *AppConfig) ConfigDir() string {
	return c.configDir
}

func (c *AppConfig) setDefaults() {
	c.viper.SetDefault("host", "localhost")
	c.viper.SetDefault("port", 7575)
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logMaxSize", 50)
	c.viper.SetDefault("logMaxBackups", 3)
	c.viper.SetDefault("metricsEnabled", false)
	c.viper.SetDefault("workerCount", 5)
	c.viper.SetDefault("settleDelayMs", 1000)
	c.viper.SetDefault("sortByDate", true)
	c.viper.SetDefault("sortByMetadata", true)
	c.viper.SetDefault("autoUnpack", false)
	c.viper.SetDefault("deduplication", true)
	c.viper.SetDefault("quarantineMode", true)
	c.viper.SetDefault("deepClean", true)
	c.viper.SetDefault("retentionDays", 0)
	c.viper.SetDefault("categories", domain.DefaultCategories())
	c.viper.SetDefault("quarantineBlacklist", domain.DefaultQuarantineBlacklist())
	c.viper.SetDefault("ignoreList", domain.DefaultIgnoreList())
	c.viper.SetDefault("telegramEnabled", false)
	c.viper.SetDefault("telegramNotifySuccess", true)
	c.viper.SetDefault("telegramNotifyDuplicate", true)
	c.viper.SetDefault("telegramNotifyQuarantine", true)
	c.viper.SetDefault("telegramUploadMaxSizeMb", 45)
}

// bindEnv maps every settings key to a SORTARR__SNAKE_CASE variable,
// e.g. databasePath to SORTARR__DATABASE_PATH.
func (c *AppConfig) bindEnv() {
	keys := []string{
		"sourceDir", "destinationDir",
		"host", "port",
		"logLevel", "logPath", "logMaxSize", "logMaxBackups",
		"databasePath", "metricsEnabled",
		"workerCount", "settleDelayMs",
		"sortByDate", "sortByMetadata", "autoUnpack",
		"deduplication", "quarantineMode", "deepClean", "retentionDays",
		"telegramEnabled", "telegramToken", "telegramChatId",
		"telegramNotifySuccess", "telegramNotifyDuplicate", "telegramNotifyQuarantine",
		"telegramUploadEnabled", "telegramUploadMaxSizeMb",
	}
	for _, key := range keys {
		_ = c.viper.BindEnv(key, envKey(key))
	}
}

func envKey(key string) string {
	var b strings.Builder
	b.WriteString(envPrefix)
	b.WriteString("__")
	runes := []rune(key)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func (c *AppConfig) load(configPath string) error {
	if configPath == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		configPath = filepath.Join(base, "sortarr", "config.toml")
	}

	// Accept either a directory or a path to the file itself.
	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		configPath = filepath.Join(configPath, "config.toml")
	}
	c.configDir = filepath.Dir(configPath)

	c.viper.SetConfigType("toml")
	c.viper.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := c.writeDefaultConfig(configPath); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
		log.Info().Str("path", configPath).Msg("config: created default config file")
	}

	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %q: %w", configPath, err)
	}
	return nil
}

func (c *AppConfig) unmarshal() (*domain.Config, error) {
	cfg := &domain.Config{}
	if err := c.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.Categories) == 0 {
		cfg.Categories = domain.DefaultCategories()
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(c.configDir, "sortarr.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// watch re-reads the file on change and swaps the snapshot. A reload
// that fails validation is rejected and the previous snapshot stays
// live.
func (c *AppConfig) watch() {
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := c.unmarshal()
		if err != nil {
			log.Error().Err(err).Msg("config: reload rejected, keeping previous configuration")
			return
		}
		c.current.Store(cfg)
		log.Info().Str("path", e.Name).Msg("config: configuration reloaded")
	})
	c.viper.WatchConfig()
}

func (c *AppConfig) writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigTemplate), 0644)
}
