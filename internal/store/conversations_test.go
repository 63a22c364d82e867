package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-client/internal/models"
)

const selfID = "u1"

func msgAt(id, sender, receiver string, ts time.Time) models.Message {
	return models.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    "m-" + id,
		Type:       models.MessageTypeText,
		Timestamp:  ts,
	}
}

func TestConversationKeyForSymmetry(t *testing.T) {
	ts := time.Now()
	outbound := msgAt("a", selfID, "u2", ts)
	inbound := msgAt("b", "u2", selfID, ts)

	require.Equal(t, "u2", ConversationKeyFor(selfID, outbound))
	require.Equal(t, "u2", ConversationKeyFor(selfID, inbound))
}

func TestMergeIdempotent(t *testing.T) {
	cache := NewConversations()
	m := msgAt("m1", "u2", selfID, time.Now())

	cache.Merge(selfID, m)
	once := cache.Get("u2")

	cache.Merge(selfID, m)
	twice := cache.Get("u2")

	require.Equal(t, once, twice)
	require.Len(t, twice, 1)
}

func TestMergeKeepsTimestampOrder(t *testing.T) {
	cache := NewConversations()
	base := time.Now()

	cache.Merge(selfID, msgAt("m3", "u2", selfID, base.Add(3*time.Second)))
	cache.Merge(selfID, msgAt("m1", "u2", selfID, base.Add(1*time.Second)))
	cache.Merge(selfID, msgAt("m2", selfID, "u2", base.Add(2*time.Second)))

	got := cache.Get("u2")
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp))
	}
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestReplaceThenLiveMerge(t *testing.T) {
	cache := NewConversations()
	base := time.Now()
	m1 := msgAt("m1", "u2", selfID, base.Add(1*time.Second))
	m2 := msgAt("m2", selfID, "u2", base.Add(2*time.Second))
	m3 := msgAt("m3", "u2", selfID, base.Add(3*time.Second))

	cache.Replace("u2", []models.Message{m1, m2})
	cache.Merge(selfID, m3)

	got := cache.Get("u2")
	require.Equal(t, []string{"m1", "m2", "m3"}, []string{got[0].ID, got[1].ID, got[2].ID})

	// A late duplicate from the overlapping history window changes nothing.
	cache.Merge(selfID, m2)
	again := cache.Get("u2")
	require.Equal(t, got, again)
}

func TestReplaceOverwritesAndSorts(t *testing.T) {
	cache := NewConversations()
	base := time.Now()

	cache.Replace("u2", []models.Message{msgAt("old", "u2", selfID, base)})
	cache.Replace("u2", []models.Message{
		msgAt("b", "u2", selfID, base.Add(2*time.Second)),
		msgAt("a", "u2", selfID, base.Add(1*time.Second)),
	})

	got := cache.Get("u2")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestGetUntouchedKeyIsEmptyNotNil(t *testing.T) {
	cache := NewConversations()
	got := cache.Get("u9")
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestMergeRoutesBothDirectionsToSameKey(t *testing.T) {
	cache := NewConversations()
	base := time.Now()

	cache.Merge(selfID, msgAt("in", "u2", selfID, base))
	cache.Merge(selfID, msgAt("out", selfID, "u2", base.Add(time.Second)))

	require.Len(t, cache.Get("u2"), 2)
	require.Empty(t, cache.Get(selfID))
}

func TestUpdateRewritesInPlace(t *testing.T) {
	cache := NewConversations()
	base := time.Now()
	m1 := msgAt("m1", selfID, "u2", base)
	m2 := msgAt("m2", "u2", selfID, base.Add(time.Second))
	cache.Replace("u2", []models.Message{m1, m2})

	edited := m1
	edited.Content = "rewritten"
	edited.Edited = true
	cache.Update("u2", edited)

	got := cache.Get("u2")
	require.Len(t, got, 2)
	assert.Equal(t, "rewritten", got[0].Content)
	assert.True(t, got[0].Edited)

	// Unknown ids change nothing.
	cache.Update("u2", msgAt("ghost", selfID, "u2", base))
	require.Len(t, cache.Get("u2"), 2)
}

func TestRemoveDeletesById(t *testing.T) {
	cache := NewConversations()
	base := time.Now()
	cache.Replace("u2", []models.Message{
		msgAt("m1", selfID, "u2", base),
		msgAt("m2", "u2", selfID, base.Add(time.Second)),
	})

	cache.Remove("u2", "m1")

	got := cache.Get("u2")
	require.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].ID)

	cache.Remove("u2", "m1")
	require.Len(t, cache.Get("u2"), 1)
}

func TestClearDropsEverything(t *testing.T) {
	cache := NewConversations()
	cache.Merge(selfID, msgAt("m1", "u2", selfID, time.Now()))
	cache.Merge(selfID, msgAt("m2", "u3", selfID, time.Now()))

	cache.Clear()

	require.Empty(t, cache.Keys())
	require.Empty(t, cache.Get("u2"))
}

func TestOnChangeFiresWithKey(t *testing.T) {
	cache := NewConversations()
	var keys []string
	cache.OnChange(func(key string, _ ChangeKind) { keys = append(keys, key) })

	cache.Merge(selfID, msgAt("m1", "u2", selfID, time.Now()))
	cache.Replace("u3", nil)

	require.Equal(t, []string{"u2", "u3"}, keys)
}

func TestOnChangeReportsMutationKind(t *testing.T) {
	cache := NewConversations()
	var kinds []ChangeKind
	cache.OnChange(func(_ string, kind ChangeKind) { kinds = append(kinds, kind) })

	base := time.Now()
	m := msgAt("m1", "u2", selfID, base)

	// A history load and a live arrival must be distinguishable, or a
	// background replace would present as new unread messages.
	cache.Replace("u2", []models.Message{m})
	cache.Merge(selfID, msgAt("m2", "u2", selfID, base.Add(time.Second)))
	edited := m
	edited.Edited = true
	cache.Update("u2", edited)
	cache.Remove("u2", "m2")
	cache.Clear()

	require.Equal(t, []ChangeKind{ChangeReplace, ChangeMerge, ChangeUpdate, ChangeRemove, ChangeClear}, kinds)
}
