package store

import "chat-client/internal/models"

// ConversationKeyFor derives the cache key for a message relative to the
// local user: the key is always the other participant's id, so both a
// received message and the echo of an own send land in the same list.
func ConversationKeyFor(selfID string, msg models.Message) string {
	if msg.SenderID == selfID {
		return msg.ReceiverID
	}
	return msg.SenderID
}
