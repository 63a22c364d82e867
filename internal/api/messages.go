package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"chat-client/internal/models"
)

// MessageService covers message history and the REST send path. Live
// delivery goes over the websocket; SendMessage is the fallback used
// when the socket is down and the user insists.
type MessageService interface {
	ChatMessages(ctx context.Context, userID string, page, size int) ([]models.Message, error)
	SendMessage(ctx context.Context, req models.SendMessageRequest) (models.Message, error)
	MarkRead(ctx context.Context, messageID string) error
	DeleteMessage(ctx context.Context, messageID string) error
	EditMessage(ctx context.Context, messageID, content string) (models.Message, error)
}

// ChatMessages loads one page of history for the 1:1 conversation with
// userID, oldest first.
func (c *Client) ChatMessages(ctx context.Context, userID string, page, size int) ([]models.Message, error) {
	var msgs []models.Message
	path := fmt.Sprintf("/messages/chat/%s?page=%d&size=%d", url.PathEscape(userID), page, size)
	err := c.doJSON(ctx, http.MethodGet, "/messages/chat/:userId", path, nil, &msgs)
	return msgs, err
}

// SendMessage posts a message over REST.
func (c *Client) SendMessage(ctx context.Context, req models.SendMessageRequest) (models.Message, error) {
	var msg models.Message
	err := c.doJSON(ctx, http.MethodPost, "/messages/send", "/messages/send", req, &msg)
	return msg, err
}

// MarkRead flags a message as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	path := "/messages/" + url.PathEscape(messageID) + "/read"
	return c.doJSON(ctx, http.MethodPut, "/messages/:id/read", path, nil, nil)
}

// DeleteMessage removes a message the local user sent.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	path := "/messages/" + url.PathEscape(messageID)
	return c.doJSON(ctx, http.MethodDelete, "/messages/:id", path, nil, nil)
}

// EditMessage replaces the content of a previously sent text message.
func (c *Client) EditMessage(ctx context.Context, messageID, content string) (models.Message, error) {
	var msg models.Message
	path := "/messages/" + url.PathEscape(messageID)
	body := map[string]string{"content": content}
	err := c.doJSON(ctx, http.MethodPut, "/messages/:id", path, body, &msg)
	return msg, err
}

var _ MessageService = (*Client)(nil)
