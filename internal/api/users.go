package api

import (
	"context"
	"net/http"
	"net/url"

	"chat-client/internal/models"
)

// UserService covers the user directory endpoints.
type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
}

// ListUsers returns every known user with their fetch-time online flag.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.doJSON(ctx, http.MethodGet, "/users", "/users", nil, &users)
	return users, err
}

// SearchUsers queries the directory by username or display name.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	path := "/users/search?q=" + url.QueryEscape(query)
	err := c.doJSON(ctx, http.MethodGet, "/users/search", path, nil, &users)
	return users, err
}

var _ UserService = (*Client)(nil)
