package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"greenpulse/internal/auth"
	"greenpulse/internal/models"
)

// Pagination bounds shared by every list operation.
const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// clampPage normalizes offset/limit: negative offsets become 0, missing
// limits get the default, oversized limits are capped rather than rejected.
func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return offset, limit
}

// dummyHash is compared against when login hits an unknown username, so
// the unknown-user path costs the same as a wrong-password path.
var dummyHash, _ = auth.HashPassword("greenpulse-timing-pad")

// UserService implements registration, login and user CRUD.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService on the given store handle.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new user with a hashed password. Returns ErrConflict
// when the username or email is already taken. The existence check and the
// insert run in one transaction; the unique indexes remain the authoritative
// guard against concurrent registrations.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", username, email).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check existing user: %w", err)
		}
		if count > 0 {
			return ErrConflict
		}
		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	log.Printf("[UserService] registered user %q (id=%d)", username, user.ID)
	return user, nil
}

// Authenticate verifies a username/password pair. The error is identical
// for an unknown username and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			auth.CheckPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ByUsername returns the user with the given username. It also backs the
// identity resolver's subject lookup.
func (s *UserService) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns users ordered by id. An empty username means no filter.
func (s *UserService) List(ctx context.Context, offset, limit int, username string) ([]models.User, error) {
	offset, limit = clampPage(offset, limit)

	q := s.db.WithContext(ctx).Model(&models.User{}).Order("id ASC")
	if username != "" {
		q = q.Where("username = ?", username)
	}

	var users []models.User
	if err := q.Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies a patch to the user with the given id. Only the user
// itself may update; username/email uniqueness is re-checked inside the
// transaction and still enforced by the store's unique indexes.
func (s *UserService) Update(ctx context.Context, id uint, patch models.UserPatch, acting *models.User) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := requireOwner(acting, user.ID); err != nil {
			return err
		}

		patch.Apply(&user)

		var count int64
		if err := tx.Model(&models.User{}).
			Where("(username = ? OR email = ?) AND id <> ?", user.Username, user.Email, user.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check uniqueness: %w", err)
		}
		if count > 0 {
			return ErrConflict
		}

		return tx.Save(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &user, nil
}

// Delete removes the user with the given id. Only self-delete is allowed.
// The user's trees are deleted in the same transaction so no tree is ever
// left pointing at a missing owner.
func (s *UserService) Delete(ctx context.Context, id uint, acting *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := requireOwner(acting, user.ID); err != nil {
			return err
		}

		if err := tx.Where("owner_id = ?", user.ID).Delete(&models.Tree{}).Error; err != nil {
			return fmt.Errorf("cascade trees: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}

		log.Printf("[UserService] deleted user %q (id=%d) and owned trees", user.Username, user.ID)
		return nil
	})
}
