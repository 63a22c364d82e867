package api

import (
	"context"
	"errors"
	"net/http"

	"chat-client/internal/models"
)

// AuthService covers the authentication endpoints.
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (models.User, error)
}

// Login exchanges credentials for a token and user snapshot.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "/auth/login", req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	if !resp.Success || resp.Token == "" {
		if resp.Message != "" {
			return models.AuthResponse{}, errors.New(resp.Message)
		}
		return models.AuthResponse{}, errors.New("login rejected")
	}
	return resp, nil
}

// Register creates an account and returns a fresh session.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "/auth/register", req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	if !resp.Success || resp.Token == "" {
		if resp.Message != "" {
			return models.AuthResponse{}, errors.New(resp.Message)
		}
		return models.AuthResponse{}, errors.New("registration rejected")
	}
	return resp, nil
}

// Logout invalidates the server-side session. Local state is the
// caller's responsibility.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", "/auth/logout", nil, nil)
}

// Me fetches the authenticated user's current record.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.doJSON(ctx, http.MethodGet, "/auth/me", "/auth/me", nil, &user)
	return user, err
}

var _ AuthService = (*Client)(nil)
