package customer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MemStore keeps users in memory. Verify waits checkDelay first, standing in
// for the credential lookup round trip; tests pass zero.
type MemStore struct {
	mu     sync.RWMutex
	byName map[string]User
	delay  time.Duration
}

func NewMemStore(checkDelay time.Duration) *MemStore {
	return &MemStore{
		byName: make(map[string]User),
		delay:  checkDelay,
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Available(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, taken := s.byName[username]
	return !taken, ctx.Err()
}

func (s *MemStore) Register(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[username]; taken {
		return ErrUsernameTaken
	}

	s.byName[username] = User{Username: username, Hash: hash}
	return nil
}

func (s *MemStore) Verify(ctx context.Context, username, password string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.RLock()
	u, ok := s.byName[username]
	s.mu.RUnlock()

	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *MemStore) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(s.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
