// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package notifications

// EventType identifies what happened to a file or maintenance cycle.
type EventType string

const (
	EventFileSorted      EventType = "file_sorted"
	EventDuplicateFound  EventType = "duplicate_found"
	EventFileQuarantined EventType = "file_quarantined"
	EventArchiveUnpacked EventType = "archive_unpacked"
	EventRetentionPurge  EventType = "retention_purge"
	EventDaemonStarted   EventType = "daemon_started"
	EventDaemonStopped   EventType = "daemon_stopped"
	EventError           EventType = "error"
)

// EventDefinition describes an event type for configuration surfaces.
type EventDefinition struct {
	Type        EventType `json:"type"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
}

var eventDefinitions = []EventDefinition{
	{Type: EventFileSorted, Label: "File sorted", Description: "A file was moved into its category folder."},
	{Type: EventDuplicateFound, Label: "Duplicate found", Description: "A file's content matched an existing file and was routed to the duplicate store."},
	{Type: EventFileQuarantined, Label: "File quarantined", Description: "A file was routed to quarantine (blacklist hit or processing failure)."},
	{Type: EventArchiveUnpacked, Label: "Archive unpacked", Description: "An archive was extracted into its category folder."},
	{Type: EventRetentionPurge, Label: "Retention purge", Description: "Aged entries were deleted from the duplicate or quarantine store."},
	{Type: EventDaemonStarted, Label: "Daemon started", Description: "The sorting daemon came online."},
	{Type: EventDaemonStopped, Label: "Daemon stopped", Description: "The sorting daemon shut down."},
	{Type: EventError, Label: "Error", Description: "An unrecoverable per-file or maintenance error occurred."},
}

// EventDefinitions returns a copy of the event catalog.
func EventDefinitions() []EventDefinition {
	out := make([]EventDefinition, len(eventDefinitions))
	copy(out, eventDefinitions)
	return out
}

// Event is one outbound notification.
type Event struct {
	Type    EventType
	Message string
}

// Notifier delivers events to an external channel. Delivery is
// best-effort: failures are logged by implementations and never
// propagate to the pipeline.
type Notifier interface {
	Notify(event Event)
}

// Uploader pushes placed files to an external channel. The boolean
// mirrors the channel's accept/reject answer; the core does not await
// anything beyond it.
type Uploader interface {
	Upload(path string, caption string) (bool, string)
}

// NopNotifier drops all events; used when no channel is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(Event) {}
