package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func openStore(t *testing.T, ttl time.Duration) *PageStore {
	t.Helper()
	s, err := Open(arbor.NewNoOpLogger(), filepath.Join(t.TempDir(), "pages"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openStore(t, 0)

	_, ok := s.Get("7203")
	assert.False(t, ok)

	require.NoError(t, s.Put("7203", "リアルタイムに変更 7203"))
	text, ok := s.Get("7203")
	require.True(t, ok)
	assert.Equal(t, "リアルタイムに変更 7203", text)

	require.NoError(t, s.Put("7203", "updated"))
	text, ok = s.Get("7203")
	require.True(t, ok)
	assert.Equal(t, "updated", text)
}

func TestExpiry(t *testing.T) {
	s := openStore(t, time.Hour)
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	require.NoError(t, s.Put("6758", "page"))

	s.now = func() time.Time { return base.Add(59 * time.Minute) }
	_, ok := s.Get("6758")
	assert.True(t, ok)

	s.now = func() time.Time { return base.Add(61 * time.Minute) }
	_, ok = s.Get("6758")
	assert.False(t, ok)
}
