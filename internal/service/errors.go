// Package service implements the GreenPulse domain operations over the
// gorm-backed store. Handlers translate the sentinel errors below into
// HTTP statuses; the services themselves know nothing about transport.
package service

import (
	"errors"

	"greenpulse/internal/models"
)

var (
	// ErrNotFound means the requested resource id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a username or email uniqueness violation.
	ErrConflict = errors.New("username or email already registered")

	// ErrForbidden means the caller is authenticated but is not the
	// owner of the resource it tried to mutate.
	ErrForbidden = errors.New("not the owner of this resource")

	// ErrInvalidCredentials is returned on login failure. It is the same
	// error whether the username is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrInvalidArgument means a field value is semantically invalid,
	// e.g. a latitude outside [-90, 90].
	ErrInvalidArgument = errors.New("invalid argument")
)

// requireOwner enforces the ownership rule. Comparison is by stable id,
// never by username: ids are never reassigned, usernames one day might be.
func requireOwner(acting *models.User, ownerID uint) error {
	if acting == nil || acting.ID != ownerID {
		return ErrForbidden
	}
	return nil
}
