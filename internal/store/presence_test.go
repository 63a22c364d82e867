package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceLastEventWins(t *testing.T) {
	p := NewPresence()

	p.MarkOnline("u5")
	p.MarkOffline("u5")
	p.MarkOnline("u5")

	require.True(t, p.IsOnline("u5"))
}

func TestPresenceIdempotent(t *testing.T) {
	p := NewPresence()

	p.MarkOnline("u1")
	p.MarkOnline("u1")
	require.True(t, p.IsOnline("u1"))
	require.Len(t, p.Snapshot(), 1)

	p.MarkOffline("u1")
	p.MarkOffline("u1")
	require.False(t, p.IsOnline("u1"))
	require.Empty(t, p.Snapshot())
}

func TestPresenceResetReplacesSet(t *testing.T) {
	p := NewPresence()
	p.MarkOnline("u1")

	p.Reset([]string{"u2", "u3"})

	assert.False(t, p.IsOnline("u1"))
	assert.True(t, p.IsOnline("u2"))
	assert.True(t, p.IsOnline("u3"))
}

func TestPresenceClear(t *testing.T) {
	p := NewPresence()
	p.MarkOnline("u1")
	p.MarkOnline("u2")

	p.Clear()

	require.Empty(t, p.Snapshot())
}

func TestPresenceNotifies(t *testing.T) {
	p := NewPresence()
	fired := 0
	p.OnChange(func() { fired++ })

	p.MarkOnline("u1")
	p.MarkOffline("u1")

	require.Equal(t, 2, fired)
}
