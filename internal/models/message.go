package models

import (
	"encoding/json"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// MessageType is the closed set of message content kinds the backend accepts.
type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
	MessageTypeVideo MessageType = "VIDEO"
	MessageTypeAudio MessageType = "AUDIO"
	MessageTypeFile  MessageType = "FILE"
	MessageTypeVoice MessageType = "VOICE"
)

// Message represents a chat message as served by the backend. IDs are
// opaque server-assigned strings; Timestamp is the server clock.
type Message struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"senderId"`
	ReceiverID string      `json:"receiverId"`
	ChatID     string      `json:"chatId,omitempty"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
	Timestamp  time.Time   `json:"timestamp"`
	Delivered  bool        `json:"delivered"`
	Read       bool        `json:"read"`
	Edited     bool        `json:"edited,omitempty"`
}

// FileInfo is the descriptor record carried in Content for media messages.
type FileInfo struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType,omitempty"`
}

// IsMedia reports whether Content holds a FileInfo record rather than text.
func (m Message) IsMedia() bool {
	return m.Type != MessageTypeText && m.Type != ""
}

// File decodes the FileInfo record out of a media message's Content.
func (m Message) File() (FileInfo, error) {
	var info FileInfo
	err := json.Unmarshal([]byte(m.Content), &info)
	return info, err
}

// MessageTypeForPath classifies an upload by its file extension.
// Anything unrecognized ships as a plain FILE attachment.
func MessageTypeForPath(path string) MessageType {
	mt := mime.TypeByExtension(filepath.Ext(path))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return MessageTypeImage
	case strings.HasPrefix(mt, "video/"):
		return MessageTypeVideo
	case strings.HasPrefix(mt, "audio/"):
		return MessageTypeAudio
	}
	return MessageTypeFile
}

// EncodeFileContent serializes a FileInfo for use as message Content.
func EncodeFileContent(info FileInfo) (string, error) {
	raw, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
