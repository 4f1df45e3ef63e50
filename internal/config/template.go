// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

// defaultConfigTemplate is written on first run. sourceDir and
// destinationDir have no sane defaults, so the daemon refuses to start
// until they are filled in.
const defaultConfigTemplate = `# config.toml - Auto-generated on first run

# Directory to watch for incoming files
# Required
#sourceDir = "/data/incoming"

# Root of the sorted destination tree
# Required, must differ from sourceDir
#destinationDir = "/data/sorted"

# Hostname / IP for the control API
# Default: "localhost"
#host = "localhost"

# Port for the control API
# Default: 7575
#port = 7575

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "INFO"

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/sortarr.log"

# Maximum log file size in megabytes before rotation
# Default: 50
#logMaxSize = 50

# Number of rotated log files to retain (0 keeps all)
# Default: 3
#logMaxBackups = 3

# SQLite database path
# Default: sortarr.db next to this file
#databasePath = ""

# Expose Prometheus metrics on /metrics
# Default: false
#metricsEnabled = false

# Number of concurrent sorting workers
# Default: 5
#workerCount = 5

# Milliseconds to wait after the last write before a new file is sorted
# Default: 1000
#settleDelayMs = 1000

# Append year/month subfolders from capture date, tag year or mtime
# Default: true
#sortByDate = true

# Append artist/album subfolders for tagged audio files
# Default: true
#sortByMetadata = true

# Extract recognized archives instead of filing them
# Default: false
#autoUnpack = false

# Route content-identical files to the duplicate store
# Default: true
#deduplication = true

# Route blacklisted extensions to the quarantine store
# Default: true
#quarantineMode = true

# Remove empty destination directories after placements
# Default: true
#deepClean = true

# Days to keep duplicate/quarantine entries before purging (0 disables)
# Default: 0
#retentionDays = 0

# Telegram notifications
# Default: disabled
#telegramEnabled = false
#telegramToken = ""
#telegramChatId = ""
#telegramNotifySuccess = true
#telegramNotifyDuplicate = true
#telegramNotifyQuarantine = true
#telegramUploadEnabled = false
#telegramUploadMaxSizeMb = 45
`
