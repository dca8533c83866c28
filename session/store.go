package session

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"
)

const (
	// A login handshake left incomplete for five minutes is abandoned.
	pendingTTL = 5 * time.Minute
	// Active sessions expire 30 minutes after their last use; every
	// successful read slides the window forward.
	sessionTTL = 30 * time.Minute

	sweepInterval = 5 * time.Minute
)

// PendingLogin is an unauthenticated login handshake in progress: the
// portal cookies and request token from the init step.
type PendingLogin struct {
	Cookies string
	Token   string
	Created time.Time
}

// Session is an authenticated portal session.
type Session struct {
	Cookies string
	Token   string
	Handle  string
	Expires time.Time
}

// Store keeps pending logins and active sessions in memory, keyed by the
// opaque id handed to the browser. It is the process's single source of
// truth for session lifecycle and is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	pending  map[string]*PendingLogin
	sessions map[string]*Session

	// now is swapped out by the expiry tests.
	now func() time.Time

	sweepOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
}

// NewStore returns an empty store. Call StartSweeper to enable periodic
// cleanup of expired entries.
func NewStore() *Store {
	return &Store{
		pending:  make(map[string]*PendingLogin),
		sessions: make(map[string]*Session),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// GenerateID returns a 256-bit random identifier. The id is later
// accepted as a bearer credential in a browser cookie, so it has to be
// cryptographically unpredictable.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreatePending stores a fresh pending login and returns its id.
func (s *Store) CreatePending(cookies, token string) (string, error) {
	id, err := GenerateID()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id] = &PendingLogin{Cookies: cookies, Token: token, Created: s.now()}
	return id, nil
}

// GetPending returns the pending login for id. Entries past the pending
// window are dropped and reported as missing.
func (s *Store) GetPending(id string) (*PendingLogin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(p.Created) > pendingTTL {
		delete(s.pending, id)
		return nil, false
	}
	copied := *p
	return &copied, true
}

// Activate promotes id to an authenticated session, consuming any
// pending entry stored under it.
func (s *Store) Activate(id, cookies, token, handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	s.sessions[id] = &Session{
		Cookies: cookies,
		Token:   token,
		Handle:  handle,
		Expires: s.now().Add(sessionTTL),
	}
}

// Get returns the session for id and slides its expiry forward. The
// expiry check and the extension happen under one lock acquisition, so a
// concurrent Get cannot observe a half-extended session.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.After(sess.Expires) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.Expires = now.Add(sessionTTL)
	copied := *sess
	return &copied, true
}

// Delete removes id from both tables. Removing an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	delete(s.sessions, id)
}

// StartSweeper launches the periodic cleanup goroutine. Repeated calls
// are no-ops, so a process reloaded in place never runs two sweepers.
func (s *Store) StartSweeper() {
	s.sweepOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s.sweep()
				case <-s.stop:
					return
				}
			}
		}()
	})
}

// Close stops the sweeper. Safe to call more than once.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, p := range s.pending {
		if now.Sub(p.Created) > pendingTTL {
			delete(s.pending, id)
			removed++
		}
	}
	for id, sess := range s.sessions {
		if now.After(sess.Expires) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("session sweep", "removed", removed)
	}
}
