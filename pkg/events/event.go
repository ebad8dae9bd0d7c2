// Package events defines the JSON payloads put on the listing-events
// queue. The notify worker consumes them; other consumers can attach to
// the same queue without touching the API process.
package events

import "time"

const (
	UserRegistered = "user.registered"
	ItemCreated    = "item.created"
	ItemDeleted    = "item.deleted"
)

type Event struct {
	Type     string    `json:"type"`
	At       time.Time `json:"at"`
	UserID   int64     `json:"user_id,omitempty"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	ItemID   int64     `json:"item_id,omitempty"`
	Title    string    `json:"title,omitempty"`
}
