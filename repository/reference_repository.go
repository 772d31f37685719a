package repository

import (
	"context"
	"errors"
	"fmt"

	"Tracklab/model"

	"gorm.io/gorm"
)

// ReferenceRepository defines reference link operations.
type ReferenceRepository interface {
	Create(ctx context.Context, reference *model.Reference) error
	GetByID(ctx context.Context, id string) (*model.Reference, error)
	ListBySong(ctx context.Context, songID string) ([]*model.Reference, error)
	Delete(ctx context.Context, id string) error
	DeleteBySong(ctx context.Context, songID string) error
}

// gormReferenceRepository is the GORM implementation.
type gormReferenceRepository struct {
	db *gorm.DB
}

func (r *gormReferenceRepository) Create(ctx context.Context, reference *model.Reference) error {
	if err := r.db.WithContext(ctx).Create(reference).Error; err != nil {
		return fmt.Errorf("failed to create reference: %w", err)
	}
	return nil
}

func (r *gormReferenceRepository) GetByID(ctx context.Context, id string) (*model.Reference, error) {
	var reference model.Reference
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrReferenceNotFound, id)
		}
		return nil, fmt.Errorf("failed to get reference %s: %w", id, err)
	}
	return &reference, nil
}

func (r *gormReferenceRepository) ListBySong(ctx context.Context, songID string) ([]*model.Reference, error) {
	var references []*model.Reference
	err := r.db.WithContext(ctx).
		Where("song_id = ?", songID).
		Order("created_at ASC").
		Find(&references).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list references for song %s: %w", songID, err)
	}
	return references, nil
}

func (r *gormReferenceRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Reference{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete reference %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrReferenceNotFound, id)
	}
	return nil
}

func (r *gormReferenceRepository) DeleteBySong(ctx context.Context, songID string) error {
	err := r.db.WithContext(ctx).Where("song_id = ?", songID).Delete(&model.Reference{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete references for song %s: %w", songID, err)
	}
	return nil
}
