package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-client/internal/chat"
	"chat-client/internal/mocks"
	"chat-client/internal/models"
	"chat-client/internal/store"
)

const selfID = "u1"

func newTestCoordinator(history *mocks.MessageServiceMock, conn *mocks.ConnectionMock) (*chat.Coordinator, *store.Conversations, *store.Presence) {
	cache := store.NewConversations()
	presence := store.NewPresence()
	coord := chat.NewCoordinator(selfID, history, conn, cache, presence, 50)
	return coord, cache, presence
}

func textMessage(id, sender, receiver string, ts time.Time) models.Message {
	return models.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    "hello",
		Type:       models.MessageTypeText,
		Timestamp:  ts,
	}
}

func TestActivateColdCacheLoadsHistory(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, _ := newTestCoordinator(history, conn)

	base := time.Now()
	msgs := []models.Message{
		textMessage("m1", "u2", selfID, base.Add(1*time.Second)),
		textMessage("m2", selfID, "u2", base.Add(2*time.Second)),
	}
	history.On("ChatMessages", mock.Anything, "u2", 0, 50).Return(msgs, nil).Once()

	coord.Activate(context.Background(), "u2")

	require.Eventually(t, func() bool { return cache.Len("u2") == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "u2", coord.Active())
	history.AssertExpectations(t)
}

func TestActivateWarmCacheSkipsFetch(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, _ := newTestCoordinator(history, conn)

	cache.Replace("u2", []models.Message{textMessage("m1", "u2", selfID, time.Now())})

	coord.Activate(context.Background(), "u2")

	time.Sleep(50 * time.Millisecond)
	history.AssertNotCalled(t, "ChatMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestActivateHistoryFailureLeavesCacheUntouched(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, _ := newTestCoordinator(history, conn)

	history.On("ChatMessages", mock.Anything, "u2", 0, 50).Return(nil, assert.AnError).Once()

	var statuses []string
	done := make(chan struct{})
	coord.OnStatus(func(msg string) {
		statuses = append(statuses, msg)
		close(done)
	})

	coord.Activate(context.Background(), "u2")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("status callback never fired")
	}
	require.Empty(t, cache.Get("u2"))
	require.NotEmpty(t, statuses)
	history.AssertExpectations(t)
}

func TestStaleHistoryFetchStillPopulatesCacheWithoutStealingFocus(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, _ := newTestCoordinator(history, conn)

	slow := make(chan struct{})
	history.On("ChatMessages", mock.Anything, "u2", 0, 50).
		Run(func(mock.Arguments) { <-slow }).
		Return([]models.Message{textMessage("m1", "u2", selfID, time.Now())}, nil).Once()
	history.On("ChatMessages", mock.Anything, "u3", 0, 50).Return([]models.Message(nil), nil).Once()

	coord.Activate(context.Background(), "u2")
	coord.Activate(context.Background(), "u3")
	require.Equal(t, "u3", coord.Active())

	close(slow)
	require.Eventually(t, func() bool { return cache.Len("u2") == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "u3", coord.Active())
	history.AssertExpectations(t)
}

func TestSendMessageValidation(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, _ := newTestCoordinator(history, conn)

	require.ErrorIs(t, coord.SendMessage("u2", "   ", models.MessageTypeText), chat.ErrEmptyContent)

	conn.On("IsReady").Return(false).Once()
	require.ErrorIs(t, coord.SendMessage("u2", "hi", models.MessageTypeText), chat.ErrNotConnected)

	// No optimistic insert on either failure path.
	require.Empty(t, cache.Get("u2"))
	conn.AssertExpectations(t)
}

func TestSendMessageDelegatesWhenReady(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, _ := newTestCoordinator(history, conn)

	want := models.Event{
		Type:        models.EventSendMessage,
		Content:     "hi",
		ReceiverID:  "u2",
		MessageType: models.MessageTypeText,
	}
	conn.On("IsReady").Return(true).Once()
	conn.On("Send", want).Return(nil).Once()

	require.NoError(t, coord.SendMessage("u2", "hi", models.MessageTypeText))

	// The message shows up only once the server echoes it back.
	require.Empty(t, cache.Get("u2"))
	conn.AssertExpectations(t)
}

func TestDispatchRoutesMessagesAndPresence(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, presence := newTestCoordinator(history, conn)

	inbound := textMessage("m1", "u2", selfID, time.Now())
	echo := textMessage("m2", selfID, "u2", time.Now().Add(time.Second))

	coord.HandleEvent(models.Event{Type: models.EventNewMessage, Message: &inbound})
	coord.HandleEvent(models.Event{Type: models.EventMessageSent, Message: &echo})
	coord.HandleEvent(models.Event{Type: models.EventUserOnline, UserID: "u2"})

	require.Len(t, cache.Get("u2"), 2)
	require.True(t, presence.IsOnline("u2"))

	coord.HandleEvent(models.Event{Type: models.EventUserOffline, UserID: "u2"})
	require.False(t, presence.IsOnline("u2"))
}

func TestDispatchIgnoresUnknownAndTyping(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, presence := newTestCoordinator(history, conn)

	coord.HandleEvent(models.Event{Type: models.EventTyping, UserID: "u2"})
	coord.HandleEvent(models.Event{Type: "SOMETHING_NEW", UserID: "u2"})

	require.Empty(t, cache.Keys())
	require.Empty(t, presence.Snapshot())
}

func TestDispatchSurfacesErrorEvents(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, presence := newTestCoordinator(history, conn)

	var got string
	coord.OnStatus(func(msg string) { got = msg })

	coord.HandleEvent(models.Event{Type: models.EventError, Error: "rate limited"})

	require.Contains(t, got, "rate limited")
	require.Empty(t, cache.Keys())
	require.Empty(t, presence.Snapshot())
}

func TestTeardownClearsEverything(t *testing.T) {
	history := new(mocks.MessageServiceMock)
	conn := new(mocks.ConnectionMock)
	coord, cache, presence := newTestCoordinator(history, conn)

	msg := textMessage("m1", "u2", selfID, time.Now())
	coord.HandleEvent(models.Event{Type: models.EventNewMessage, Message: &msg})
	coord.HandleEvent(models.Event{Type: models.EventUserOnline, UserID: "u2"})
	coord.Activate(context.Background(), "u2")

	conn.On("Close").Return().Once()

	coord.Teardown()

	require.Empty(t, cache.Keys())
	require.Empty(t, presence.Snapshot())
	require.Empty(t, coord.Active())
	conn.AssertExpectations(t)
}
