package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"greenpulse/internal/models"
)

// TreeService implements CRUD over planted trees with ownership rules.
type TreeService struct {
	db *gorm.DB
}

// NewTreeService creates a TreeService on the given store handle.
func NewTreeService(db *gorm.DB) *TreeService {
	return &TreeService{db: db}
}

// validCoordinates checks the semantic ranges: latitude [-90, 90],
// longitude [-180, 180].
func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Create plants a tree owned by the acting user. The owner is always taken
// from the authenticated caller, never from request data.
func (s *TreeService) Create(ctx context.Context, species string, lat, lon float64, acting *models.User) (*models.Tree, error) {
	if !validCoordinates(lat, lon) {
		return nil, fmt.Errorf("%w: coordinates (%v, %v) out of range", ErrInvalidArgument, lat, lon)
	}

	tree := &models.Tree{
		Species:   species,
		Latitude:  lat,
		Longitude: lon,
		OwnerID:   acting.ID,
	}
	if err := s.db.WithContext(ctx).Create(tree).Error; err != nil {
		return nil, err
	}

	log.Printf("[TreeService] user %d planted tree %d (%s)", acting.ID, tree.ID, species)
	return tree, nil
}

// Get returns the tree with the given id.
func (s *TreeService) Get(ctx context.Context, id uint) (*models.Tree, error) {
	var tree models.Tree
	if err := s.db.WithContext(ctx).First(&tree, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tree, nil
}

// List returns trees ordered by id with the shared pagination rules.
func (s *TreeService) List(ctx context.Context, offset, limit int) ([]models.Tree, error) {
	offset, limit = clampPage(offset, limit)

	var trees []models.Tree
	if err := s.db.WithContext(ctx).
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&trees).Error; err != nil {
		return nil, err
	}
	return trees, nil
}

// ListByOwner returns every tree owned by the given user. Relations are
// fetched through this explicit call only; nothing lazy-loads.
func (s *TreeService) ListByOwner(ctx context.Context, ownerID uint) ([]models.Tree, error) {
	var trees []models.Tree
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).Order("id ASC").
		Find(&trees).Error; err != nil {
		return nil, err
	}
	return trees, nil
}

// Update applies a patch to a tree. Only the owner may update, and the
// ownership check happens before any write. OwnerID has no patch field,
// so ownership cannot change here.
func (s *TreeService) Update(ctx context.Context, id uint, patch models.TreePatch, acting *models.User) (*models.Tree, error) {
	var tree models.Tree

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tree, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := requireOwner(acting, tree.OwnerID); err != nil {
			return err
		}

		patch.Apply(&tree)
		if !validCoordinates(tree.Latitude, tree.Longitude) {
			return fmt.Errorf("%w: coordinates (%v, %v) out of range",
				ErrInvalidArgument, tree.Latitude, tree.Longitude)
		}

		return tx.Save(&tree).Error
	})
	if err != nil {
		return nil, err
	}
	return &tree, nil
}

// Delete removes a tree. Only the owner may delete.
func (s *TreeService) Delete(ctx context.Context, id uint, acting *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tree models.Tree
		if err := tx.First(&tree, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := requireOwner(acting, tree.OwnerID); err != nil {
			return err
		}
		return tx.Delete(&tree).Error
	})
}
