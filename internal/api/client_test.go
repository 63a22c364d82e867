package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-client/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, func() string { return "tok-1" })
}

func TestLoginSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req.Username)

		json.NewEncoder(w).Encode(models.AuthResponse{
			Success: true,
			Token:   "tok-xyz",
			User:    models.User{ID: "u1", Username: "alice"},
		})
	})

	resp, err := client.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", resp.Token)
	assert.Equal(t, "u1", resp.User.ID)
}

func TestLoginRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.AuthResponse{Success: false, Message: "bad credentials"})
	})

	_, err := client.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "nope"})
	require.EqualError(t, err, "bad credentials")
}

func TestAuthAndCorrelationHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.NotEmpty(t, r.Header.Get("X-Device-Id"))
		json.NewEncoder(w).Encode([]models.User{})
	})

	_, err := client.ListUsers(context.Background())
	require.NoError(t, err)
}

func TestChatMessagesPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/chat/u2", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("page"))
		require.Equal(t, "25", r.URL.Query().Get("size"))
		json.NewEncoder(w).Encode([]models.Message{{ID: "m1", SenderID: "u2", ReceiverID: "u1"}})
	})

	msgs, err := client.ChatMessages(context.Background(), "u2", 3, 25)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestAPIErrorMapping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "not allowed"})
	})

	err := client.MarkRead(context.Background(), "m1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "not allowed", apiErr.Message)
}

func TestUnauthorizedHookFires(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	fired := false
	client.SetUnauthorizedHook(func() { fired = true })

	err := client.DeleteMessage(context.Background(), "m1")
	require.Error(t, err)
	require.True(t, fired)
}

func TestSearchUsersEscapesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/search", r.URL.Path)
		require.Equal(t, "a b&c", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode([]models.User{{ID: "u7", Username: "abc"}})
	})

	users, err := client.SearchUsers(context.Background(), "a b&c")
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestUploadFileMultipart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "IMAGE", r.FormValue("type"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "pic.png", header.Filename)

		json.NewEncoder(w).Encode(uploadResponse{
			Filename:     "abc123.png",
			OriginalName: "pic.png",
			URL:          "/files/abc123.png",
			Size:         9,
			Type:         "IMAGE",
		})
	})

	info, err := client.UploadFile(context.Background(), path, models.MessageTypeImage)
	require.NoError(t, err)
	assert.Equal(t, "abc123.png", info.Filename)
	assert.Equal(t, "pic.png", info.OriginalName)
	assert.Equal(t, int64(9), info.Size)
	assert.Contains(t, info.MimeType, "image/png")
}

func TestFileURL(t *testing.T) {
	client := NewClient("http://localhost:8080/api/", time.Second, nil)
	require.Equal(t, "http://localhost:8080/api/files/abc.png", client.FileURL("abc.png"))
}
