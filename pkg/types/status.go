package types

import "time"

// SystemStatus is the ledger service's system health report
type SystemStatus struct {
	Kafka  bool `json:"kafka"`
	Fabric bool `json:"fabric"`
}

// ChannelState is the observed state of one health channel
type ChannelState string

// Health channel states
const (
	ChannelUnknown ChannelState = "unknown"
	ChannelUp      ChannelState = "up"
	ChannelDown    ChannelState = "down"
)

// Notification severities
const (
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// Notification is a single health transition event shown to the user
type Notification struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
