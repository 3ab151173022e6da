package domain

// EventType names a realtime notification pushed to connected clients.
type EventType string

const (
	EventDirectMessage EventType = "DIRECT_MESSAGE"
	EventMessagesRead  EventType = "MESSAGES_READ"
)

// MessagesReadPayload tells a sender that the counterpart opened the thread.
type MessagesReadPayload struct {
	ReaderID string `json:"reader_id"`
	Count    int64  `json:"count"`
}
