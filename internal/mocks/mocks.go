package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-client/internal/api"
	"chat-client/internal/chat"
	"chat-client/internal/models"
)

type MessageServiceMock struct {
	mock.Mock
}

func (m *MessageServiceMock) ChatMessages(ctx context.Context, userID string, page, size int) ([]models.Message, error) {
	args := m.Called(ctx, userID, page, size)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageServiceMock) SendMessage(ctx context.Context, req models.SendMessageRequest) (models.Message, error) {
	args := m.Called(ctx, req)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageServiceMock) MarkRead(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageServiceMock) DeleteMessage(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageServiceMock) EditMessage(ctx context.Context, messageID, content string) (models.Message, error) {
	args := m.Called(ctx, messageID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserServiceMock) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	args := m.Called(ctx, query)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type ConnectionMock struct {
	mock.Mock
}

func (m *ConnectionMock) Send(evt models.Event) error {
	args := m.Called(evt)
	return args.Error(0)
}

func (m *ConnectionMock) IsReady() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *ConnectionMock) Close() {
	m.Called()
}

var _ api.MessageService = (*MessageServiceMock)(nil)
var _ api.UserService = (*UserServiceMock)(nil)
var _ chat.Connection = (*ConnectionMock)(nil)
var _ chat.HistoryService = (*MessageServiceMock)(nil)
