package auth

import (
	"context"
	"errors"
	"fmt"

	"greenpulse/internal/models"
)

// ErrUnknownSubject means the token verified but its subject no longer
// exists. A valid signature for a deleted account must not authenticate.
var ErrUnknownSubject = errors.New("unknown token subject")

// IsAuthError reports whether err is a token resolution failure, as
// opposed to an infrastructure error like an unreachable store.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrUnknownSubject)
}

// SubjectStore looks up a user by the username a token carries as subject.
// Implementations must report a missing user with an error matching
// ErrUnknownSubject; any other error is treated as a store failure.
type SubjectStore interface {
	ByUsername(ctx context.Context, username string) (*models.User, error)
}

// IdentityResolver turns a presented bearer token into the acting User.
type IdentityResolver struct {
	tokens *TokenService
	store  SubjectStore
}

// NewIdentityResolver wires a token service to the user store.
func NewIdentityResolver(tokens *TokenService, store SubjectStore) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, store: store}
}

// Resolve verifies tokenString and confirms its subject still exists.
// Both steps are required: the cryptographic check alone would let a token
// outlive the account it was issued for.
func (r *IdentityResolver) Resolve(ctx context.Context, tokenString string) (*models.User, error) {
	subject, err := r.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := r.store.ByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUnknownSubject) {
			return nil, ErrUnknownSubject
		}
		// A store failure is not an authentication verdict
		return nil, fmt.Errorf("resolve subject %q: %w", subject, err)
	}
	return user, nil
}
