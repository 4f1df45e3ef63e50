// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Store folder names under the destination root. Both are subject to
// retention and excluded from empty-directory cleanup.
const (
	DuplicateFolder  = "98_Duplicates"
	QuarantineFolder = "97_Quarantine"

	// OtherCategory is the synthetic bucket for unknown extensions;
	// the uppercased extension becomes a subfolder beneath it.
	OtherCategory = "99_Other"
)

// Config represents the application configuration. The daemon never
// mutates a Config after load; reloads produce a fresh snapshot.
type Config struct {
	Version string

	SourceDir      string `toml:"sourceDir" mapstructure:"sourceDir"`
	DestinationDir string `toml:"destinationDir" mapstructure:"destinationDir"`

	Host string `toml:"host" mapstructure:"host"`
	Port int    `toml:"port" mapstructure:"port"`

	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	DatabasePath string `toml:"databasePath" mapstructure:"databasePath"`

	MetricsEnabled bool `toml:"metricsEnabled" mapstructure:"metricsEnabled"`

	// Pipeline tuning. SettleDelayMS is the wait between a create
	// notification and enqueueing, to let the writer finish.
	WorkerCount   int `toml:"workerCount" mapstructure:"workerCount"`
	SettleDelayMS int `toml:"settleDelayMs" mapstructure:"settleDelayMs"`

	SortByDate     bool `toml:"sortByDate" mapstructure:"sortByDate"`
	SortByMetadata bool `toml:"sortByMetadata" mapstructure:"sortByMetadata"`
	AutoUnpack     bool `toml:"autoUnpack" mapstructure:"autoUnpack"`
	Deduplication  bool `toml:"deduplication" mapstructure:"deduplication"`
	QuarantineMode bool `toml:"quarantineMode" mapstructure:"quarantineMode"`
	DeepClean      bool `toml:"deepClean" mapstructure:"deepClean"`
	RetentionDays  int  `toml:"retentionDays" mapstructure:"retentionDays"`

	// Categories maps a category folder name to the extensions it owns.
	// Extensions include the leading dot and are matched case-insensitively.
	Categories map[string][]string `toml:"categories" mapstructure:"categories"`

	// QuarantineBlacklist holds extensions rerouted to quarantine when
	// QuarantineMode is on. IgnoreList holds extensions or exact file
	// names that are skipped entirely.
	QuarantineBlacklist []string `toml:"quarantineBlacklist" mapstructure:"quarantineBlacklist"`
	IgnoreList          []string `toml:"ignoreList" mapstructure:"ignoreList"`

	TelegramEnabled          bool   `toml:"telegramEnabled" mapstructure:"telegramEnabled"`
	TelegramToken            string `toml:"telegramToken" mapstructure:"telegramToken"`
	TelegramChatID           string `toml:"telegramChatId" mapstructure:"telegramChatId"`
	TelegramUploadEnabled    bool   `toml:"telegramUploadEnabled" mapstructure:"telegramUploadEnabled"`
	TelegramUploadMaxSizeMB  int    `toml:"telegramUploadMaxSizeMb" mapstructure:"telegramUploadMaxSizeMb"`
	TelegramNotifySuccess    bool   `toml:"telegramNotifySuccess" mapstructure:"telegramNotifySuccess"`
	TelegramNotifyDuplicate  bool   `toml:"telegramNotifyDuplicate" mapstructure:"telegramNotifyDuplicate"`
	TelegramNotifyQuarantine bool   `toml:"telegramNotifyQuarantine" mapstructure:"telegramNotifyQuarantine"`
}

// DefaultCategories is the stock extension table. Folder names carry a
// numeric prefix so the destination tree sorts predictably.
func DefaultCategories() map[string][]string {
	return map[string][]string{
		"01_Images":    {".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".psd", ".ai", ".raw", ".tiff", ".svg", ".ico", ".cr2", ".nef", ".orf"},
		"02_Video":     {".mp4", ".mkv", ".avi", ".mov", ".webm", ".flv", ".vob", ".3gp"},
		"03_Documents": {".pdf", ".docx", ".doc", ".xlsx", ".csv", ".pptx", ".txt", ".rtf", ".epub", ".djvu", ".odt"},
		"04_Archives":  {".zip", ".rar", ".7z", ".tar", ".gz", ".iso", ".torrent", ".bz2"},
		"05_Audio":     {".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a", ".mid"},
		"06_Programs":  {".exe", ".msi", ".bat", ".apk", ".jar", ".cmd", ".appimage", ".deb", ".rpm"},
		"07_Code":      {".py", ".js", ".html", ".css", ".json", ".cpp", ".c", ".php", ".sql", ".ts", ".go", ".rs", ".lua", ".sh"},
		"08_3D":        {".obj", ".fbx", ".blend", ".stl", ".dae"},
		"09_Fonts":     {".ttf", ".otf", ".woff", ".woff2"},
		"10_System":    {".dll", ".sys", ".cfg", ".dmp", ".bak"},
	}
}

// DefaultQuarantineBlacklist returns the stock suspicious-extension list.
func DefaultQuarantineBlacklist() []string {
	return []string{".exe", ".bat", ".vbs", ".js", ".apk", ".msi"}
}

// DefaultIgnoreList returns the stock ignore list: partial downloads and
// desktop clutter that should never be sorted.
func DefaultIgnoreList() []string {
	return []string{".tmp", ".crdownload", ".part", ".ini", "desktop.ini"}
}

// Validate checks the invariants the daemon relies on before starting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourceDir) == "" {
		return errors.New("sourceDir is required")
	}
	if strings.TrimSpace(c.DestinationDir) == "" {
		return errors.New("destinationDir is required")
	}
	if !filepath.IsAbs(c.SourceDir) {
		return fmt.Errorf("sourceDir must be absolute: %s", c.SourceDir)
	}
	if !filepath.IsAbs(c.DestinationDir) {
		return fmt.Errorf("destinationDir must be absolute: %s", c.DestinationDir)
	}
	if filepath.Clean(c.SourceDir) == filepath.Clean(c.DestinationDir) {
		return errors.New("sourceDir and destinationDir must differ")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("workerCount must be positive, got %d", c.WorkerCount)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retentionDays must not be negative, got %d", c.RetentionDays)
	}
	return nil
}

// DuplicateDir returns the absolute path of the duplicate store.
func (c *Config) DuplicateDir() string {
	return filepath.Join(c.DestinationDir, DuplicateFolder)
}

// QuarantineDir returns the absolute path of the quarantine store.
func (c *Config) QuarantineDir() string {
	return filepath.Join(c.DestinationDir, QuarantineFolder)
}

// ExtensionIndex builds the lowercase extension -> category lookup from
// the category table.
func (c *Config) ExtensionIndex() map[string]string {
	idx := make(map[string]string)
	for category, exts := range c.Categories {
		for _, ext := range exts {
			idx[strings.ToLower(ext)] = category
		}
	}
	return idx
}

// IsIgnored reports whether a file name or its extension is on the
// ignore list. Extension entries start with a dot; anything else is an
// exact file-name match.
func (c *Config) IsIgnored(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, entry := range c.IgnoreList {
		if strings.HasPrefix(entry, ".") {
			if ext == strings.ToLower(entry) {
				return true
			}
			continue
		}
		if strings.EqualFold(name, entry) {
			return true
		}
	}
	return false
}

// IsBlacklisted reports whether the extension is on the quarantine
// blacklist. The QuarantineMode gate is the caller's concern.
func (c *Config) IsBlacklisted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, entry := range c.QuarantineBlacklist {
		if ext == strings.ToLower(entry) {
			return true
		}
	}
	return false
}

// SettleDelay returns the intake settle delay with the 1s default.
func (c *Config) SettleDelay() int {
	if c.SettleDelayMS <= 0 {
		return 1000
	}
	return c.SettleDelayMS
}
