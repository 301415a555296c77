package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"greenpulse/internal/models"
)

type fakeSubjectStore struct {
	users map[string]*models.User
}

func (f *fakeSubjectStore) ByUsername(_ context.Context, username string) (*models.User, error) {
	if user, ok := f.users[username]; ok {
		return user, nil
	}
	return nil, ErrUnknownSubject
}

type failingSubjectStore struct{}

func (failingSubjectStore) ByUsername(_ context.Context, _ string) (*models.User, error) {
	return nil, errors.New("store unavailable")
}

func TestResolve_KnownSubject(t *testing.T) {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	store := &fakeSubjectStore{users: map[string]*models.User{
		"alice": {ID: 7, Username: "alice"},
	}}
	resolver := NewIdentityResolver(tokens, store)

	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	user, err := resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if user.ID != 7 {
		t.Errorf("User ID = %d, want 7", user.ID)
	}
}

func TestResolve_UnknownSubject(t *testing.T) {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	resolver := NewIdentityResolver(tokens, &fakeSubjectStore{users: map[string]*models.User{}})

	// Valid signature for an account that no longer exists
	token, err := tokens.Issue("ghost")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = resolver.Resolve(context.Background(), token)
	if !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("Resolve() error = %v, want ErrUnknownSubject", err)
	}
}

func TestResolve_StoreFailure(t *testing.T) {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	resolver := NewIdentityResolver(tokens, failingSubjectStore{})

	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// A broken store must not read as "unauthenticated"
	_, err = resolver.Resolve(context.Background(), token)
	if err == nil {
		t.Fatal("Resolve() should fail when the store is unavailable")
	}
	if errors.Is(err, ErrUnknownSubject) {
		t.Errorf("Resolve() error = %v, must not be ErrUnknownSubject", err)
	}
	if IsAuthError(err) {
		t.Errorf("IsAuthError(%v) = true, want false", err)
	}
}

func TestIsAuthError(t *testing.T) {
	for _, err := range []error{ErrMalformedToken, ErrBadSignature, ErrTokenExpired, ErrUnknownSubject} {
		if !IsAuthError(err) {
			t.Errorf("IsAuthError(%v) = false, want true", err)
		}
	}
	if IsAuthError(errors.New("store unavailable")) {
		t.Error("IsAuthError should reject a non-auth error")
	}
}

func TestResolve_BadToken(t *testing.T) {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	store := &fakeSubjectStore{users: map[string]*models.User{
		"alice": {ID: 7, Username: "alice"},
	}}
	resolver := NewIdentityResolver(tokens, store)

	if _, err := resolver.Resolve(context.Background(), "garbage"); err == nil {
		t.Error("Resolve() should fail on an unparsable token")
	}
}
