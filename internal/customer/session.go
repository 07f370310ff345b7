package customer

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the name of the cookie binding a client to its server-side
// session on the /customer subtree.
const SessionCookie = "bookshelf_session"

const (
	sessionTTL    = time.Hour
	sweepInterval = 5 * time.Minute
)

// Session is the server-side state behind a client cookie. Username and Token
// stay empty until a successful login binds them.
type Session struct {
	ID        string
	Username  string
	Token     string
	ExpiresAt time.Time
}

// Sessions is an in-memory session store. A janitor goroutine sweeps expired
// entries; lookups also expire lazily.
type Sessions struct {
	mu   sync.Mutex
	m    map[string]*Session
	done chan struct{}
}

func NewSessions() *Sessions {
	s := &Sessions{
		m:    make(map[string]*Session),
		done: make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *Sessions) Stop() {
	close(s.done)
}

// Ensure returns the live session named by the request cookie, creating a
// fresh one (and setting the cookie) when there is none. The returned value
// is a snapshot; later Bind calls are seen by later requests.
func (s *Sessions) Ensure(w http.ResponseWriter, r *http.Request) Session {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.lookup(c.Value); ok {
			return sess
		}
	}

	sess := &Session{
		ID:        "s_" + uuid.NewString(),
		ExpiresAt: time.Now().Add(sessionTTL),
	}

	s.mu.Lock()
	s.m[sess.ID] = sess
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/customer",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return *sess
}

// Bind attaches a login's token and username to the session and renews its
// lifetime. A no-op for unknown session IDs.
func (s *Sessions) Bind(id, username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok {
		return
	}
	sess.Username = username
	sess.Token = token
	sess.ExpiresAt = time.Now().Add(sessionTTL)
}

func (s *Sessions) lookup(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok {
		return Session{}, false
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.m, id)
		return Session{}, false
	}
	return *sess, true
}

func (s *Sessions) janitor() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			s.sweep(time.Now())
		case <-s.done:
			return
		}
	}
}

func (s *Sessions) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.m {
		if now.After(sess.ExpiresAt) {
			delete(s.m, id)
		}
	}
}
