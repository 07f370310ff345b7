package customer

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndVerify(t *testing.T) {
	s := NewMemStore(0)
	ctx := context.Background()

	free, err := s.Available(ctx, "alice")
	if err != nil || !free {
		t.Fatalf("available: free=%v err=%v", free, err)
	}

	if err := s.Register(ctx, "alice", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	free, _ = s.Available(ctx, "alice")
	if free {
		t.Fatalf("username still available after register")
	}

	if err := s.Register(ctx, "alice", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate register err=%v", err)
	}

	if err := s.Verify(ctx, "alice", "secret"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := s.Verify(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err=%v", err)
	}
	if err := s.Verify(ctx, "bob", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err=%v", err)
	}
}

func TestPasswordsStoredHashed(t *testing.T) {
	s := NewMemStore(0)

	if err := s.Register(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	u := s.byName["alice"]
	if string(u.Hash) == "secret" {
		t.Fatalf("password stored in the clear")
	}
	if len(u.Hash) == 0 {
		t.Fatalf("empty hash")
	}
}
