package models

// EventType identifies a websocket event kind.
type EventType string

// Inbound event kinds pushed by the server, plus the single outbound kind.
const (
	EventConnectionEstablished EventType = "CONNECTION_ESTABLISHED"
	EventNewMessage            EventType = "NEW_MESSAGE"
	EventMessageSent           EventType = "MESSAGE_SENT"
	EventUserOnline            EventType = "USER_ONLINE"
	EventUserOffline           EventType = "USER_OFFLINE"
	EventError                 EventType = "ERROR"
	EventTyping                EventType = "TYPING"
	EventSendMessage           EventType = "SEND_MESSAGE"
)

// Event is the websocket wire frame, shared by inbound and outbound
// traffic. Unused fields are omitted per kind.
type Event struct {
	Type        EventType   `json:"type"`
	Message     *Message    `json:"message,omitempty"`
	UserID      string      `json:"userId,omitempty"`
	Content     string      `json:"content,omitempty"`
	ReceiverID  string      `json:"receiverId,omitempty"`
	MessageType MessageType `json:"messageType,omitempty"`
	Error       string      `json:"error,omitempty"`
}
