package models

import (
	"time"
)

// PresenceStatus is a user's connectivity flag
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
)

// ValidPresenceStatuses defines the statuses a client may report
var ValidPresenceStatuses = map[PresenceStatus]bool{
	PresenceOnline:  true,
	PresenceOffline: true,
}

// PresenceRecord is the stored presence state of one user. It is overwritten on
// every heartbeat and keeps no history.
type PresenceRecord struct {
	UserID           string         `json:"user_id"`
	Status           PresenceStatus `json:"status"`
	LastSeen         time.Time      `json:"last_seen"`
	LastStatusChange time.Time      `json:"last_status_change"`
}

// PresenceView is what readers see: the stored record with staleness applied
type PresenceView struct {
	UserID           string         `json:"user_id"`
	Status           PresenceStatus `json:"status"`
	IsOnline         bool           `json:"is_online"`
	Stale            bool           `json:"stale,omitempty"`
	LastSeen         *time.Time     `json:"last_seen,omitempty"`
	LastStatusChange *time.Time     `json:"last_status_change,omitempty"`
}

// Reasons attached to presence events
const (
	PresenceReasonHeartbeat  = "heartbeat"
	PresenceReasonExpired    = "expired"
	PresenceReasonDisconnect = "disconnect"
)

// PresenceEvent is published whenever a user's effective status changes
type PresenceEvent struct {
	UserID    string         `json:"user_id"`
	Status    PresenceStatus `json:"status"`
	Previous  PresenceStatus `json:"previous"`
	Reason    string         `json:"reason"`
	Timestamp time.Time      `json:"timestamp"`
}
