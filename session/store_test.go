package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeAt returns a store with a controllable clock.
func storeAt(start time.Time) (*Store, *time.Time) {
	now := start
	s := NewStore()
	s.now = func() time.Time { return now }
	return s, &now
}

func TestGenerateID(t *testing.T) {
	a, err := GenerateID()
	require.NoError(t, err)
	b, err := GenerateID()
	require.NoError(t, err)
	assert.Len(t, a, 64) // 32 bytes hex-encoded
	assert.NotEqual(t, a, b)
}

func TestPendingLoginTimeout(t *testing.T) {
	s, now := storeAt(time.Now())
	id, err := s.CreatePending("a=1", "tok")
	require.NoError(t, err)

	*now = now.Add(4*time.Minute + 59*time.Second)
	p, ok := s.GetPending(id)
	require.True(t, ok)
	assert.Equal(t, "a=1", p.Cookies)
	assert.Equal(t, "tok", p.Token)

	*now = now.Add(2 * time.Second)
	_, ok = s.GetPending(id)
	assert.False(t, ok)

	// The expired entry is gone, not just hidden.
	s.mu.Lock()
	assert.Empty(t, s.pending)
	s.mu.Unlock()
}

func TestActivateConsumesPending(t *testing.T) {
	s, _ := storeAt(time.Now())
	id, err := s.CreatePending("a=1", "tok")
	require.NoError(t, err)

	s.Activate(id, "a=1; auth=x", "tok2", "handle9")
	_, ok := s.GetPending(id)
	assert.False(t, ok)

	sess, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "a=1; auth=x", sess.Cookies)
	assert.Equal(t, "tok2", sess.Token)
	assert.Equal(t, "handle9", sess.Handle)
}

func TestSlidingExpiry(t *testing.T) {
	s, now := storeAt(time.Now())
	id, _ := s.CreatePending("a=1", "tok")
	s.Activate(id, "a=1", "tok", "h")

	// Accessed every 20 minutes the session never expires.
	for i := 0; i < 5; i++ {
		*now = now.Add(20 * time.Minute)
		_, ok := s.Get(id)
		require.True(t, ok, "access %d", i)
	}

	// Untouched for 31 minutes it is gone.
	*now = now.Add(31 * time.Minute)
	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := storeAt(time.Now())
	id, _ := s.CreatePending("a=1", "tok")
	s.Activate(id, "a=1", "tok", "h")

	s.Delete(id)
	_, ok := s.Get(id)
	assert.False(t, ok)
	s.Delete(id) // no-op
	s.Delete("unknown")
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	s, now := storeAt(time.Now())
	stale, _ := s.CreatePending("a=1", "tok")
	fresh, _ := s.CreatePending("b=2", "tok")

	active, _ := s.CreatePending("c=3", "tok")
	s.Activate(active, "c=3", "tok", "h")

	*now = now.Add(6 * time.Minute)
	// Keep one pending entry fresh by recreating it after the clock
	// moved.
	fresh, _ = s.CreatePending("b=2", "tok")

	s.sweep()

	_, ok := s.GetPending(stale)
	assert.False(t, ok)
	_, ok = s.GetPending(fresh)
	assert.True(t, ok)
	_, ok = s.Get(active)
	assert.True(t, ok, "active session is inside its window")

	*now = now.Add(31 * time.Minute)
	s.sweep()
	s.mu.Lock()
	assert.Empty(t, s.sessions)
	s.mu.Unlock()
}

func TestStartSweeperIsIdempotent(t *testing.T) {
	s := NewStore()
	defer s.Close()
	s.StartSweeper()
	s.StartSweeper() // second call must not start another goroutine
	s.Close()
	s.Close() // double close is safe
}
