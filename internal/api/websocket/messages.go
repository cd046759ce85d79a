package websocket

import "time"

// MessageType tags a server or client message.
type MessageType string

const (
	MessageTypeJobStart    MessageType = "job_start"
	MessageTypeDateStart   MessageType = "date_start"
	MessageTypeDateLoaded  MessageType = "date_loaded"
	MessageTypeProgress    MessageType = "progress"
	MessageTypeJobComplete MessageType = "job_complete"
	MessageTypeJobError    MessageType = "job_error"

	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeHeartbeat   MessageType = "heartbeat"
	MessageTypeError       MessageType = "error"
)

// ServerMessage is every frame pushed to clients.
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is a frame sent by a client.
type ClientMessage struct {
	Type    MessageType            `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// SubscriptionFilter limits which message types a client receives.
// An empty filter accepts everything.
type SubscriptionFilter struct {
	Types []MessageType `json:"types"`
}

// ProgressPayload carries job progress counters.
type ProgressPayload struct {
	Message string `json:"message"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

// DateStartPayload announces the date about to be loaded.
type DateStartPayload struct {
	Date  string `json:"date"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

// JobStartPayload describes a job that began running.
type JobStartPayload struct {
	Type   string   `json:"job_type"`
	Start  string   `json:"start_date,omitempty"`
	End    string   `json:"end_date,omitempty"`
	Dates  []string `json:"dates,omitempty"`
	DryRun bool     `json:"dry_run"`
}

// ErrorMessage is the payload of error frames.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectionStats is returned in heartbeat replies.
type ConnectionStats struct {
	ClientID         string    `json:"client_id"`
	ConnectedAt      time.Time `json:"connected_at"`
	MessagesSent     int64     `json:"messages_sent"`
	MessagesReceived int64     `json:"messages_received"`
	LastMessageAt    time.Time `json:"last_message_at"`
}
