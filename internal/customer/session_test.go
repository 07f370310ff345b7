package customer

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newSessions(t *testing.T) *Sessions {
	t.Helper()
	s := NewSessions()
	t.Cleanup(s.Stop)
	return s
}

func ensure(s *Sessions, cookie *http.Cookie) (Session, *http.Cookie) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customer/login", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	sess := s.Ensure(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return sess, c
		}
	}
	return sess, cookie
}

func TestEnsureCreatesAndReuses(t *testing.T) {
	s := newSessions(t)

	first, cookie := ensure(s, nil)
	if first.ID == "" {
		t.Fatalf("empty session id")
	}
	if cookie == nil || cookie.Value != first.ID {
		t.Fatalf("cookie not set to session id")
	}

	second, _ := ensure(s, cookie)
	if second.ID != first.ID {
		t.Fatalf("session not reused: %q vs %q", second.ID, first.ID)
	}
}

func TestBindAttachesLogin(t *testing.T) {
	s := newSessions(t)

	first, cookie := ensure(s, nil)
	s.Bind(first.ID, "alice", "tok123")

	sess, _ := ensure(s, cookie)
	if sess.Username != "alice" || sess.Token != "tok123" {
		t.Fatalf("bind not visible: %+v", sess)
	}
}

func TestExpiredSessionReplaced(t *testing.T) {
	s := newSessions(t)

	first, cookie := ensure(s, nil)

	s.mu.Lock()
	s.m[first.ID].ExpiresAt = time.Now().Add(-time.Minute)
	s.mu.Unlock()

	second, _ := ensure(s, cookie)
	if second.ID == first.ID {
		t.Fatalf("expired session reused")
	}
	if second.Token != "" || second.Username != "" {
		t.Fatalf("replacement session not clean: %+v", second)
	}
}

func TestSweepDropsExpired(t *testing.T) {
	s := newSessions(t)

	first, _ := ensure(s, nil)

	s.mu.Lock()
	s.m[first.ID].ExpiresAt = time.Now().Add(-time.Minute)
	s.mu.Unlock()

	s.sweep(time.Now())

	if _, ok := s.lookup(first.ID); ok {
		t.Fatalf("expired session survived sweep")
	}
}
