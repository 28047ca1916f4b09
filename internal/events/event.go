// Package events publishes extension changes to interested listeners.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/extmgr-labs/extmgr/internal/extension"
	"github.com/google/uuid"
)

// Event is the JSON envelope published for every change.
type Event struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	SettingsKey string    `json:"settings_key"`
	Extension   string    `json:"extension"`
	Enabled     *bool     `json:"enabled,omitempty"`
	Action      string    `json:"action,omitempty"`
	Target      string    `json:"target,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// FromChange builds an event with a fresh ID.
func FromChange(c extension.Change) Event {
	ev := Event{
		ID:          uuid.NewString(),
		Kind:        string(c.Kind),
		SettingsKey: c.SettingsKey,
		Extension:   c.Key,
		Action:      string(c.Action),
		Target:      c.Target,
		OccurredAt:  c.At.UTC(),
	}
	if c.Kind == extension.ChangeToggled {
		enabled := c.Enabled
		ev.Enabled = &enabled
	}
	return ev
}

// RoutingKey returns the topic routing key, e.g. "extension.toggled".
func (e Event) RoutingKey() string {
	return "extension." + e.Kind
}

// Encode marshals the event as JSON.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Nop discards every change.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, extension.Change) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
