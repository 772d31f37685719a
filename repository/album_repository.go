package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Tracklab/model"

	"gorm.io/gorm"
)

// AlbumRepository defines album data operations.
type AlbumRepository interface {
	// Create inserts a new album.
	Create(ctx context.Context, album *model.Album) error

	// GetByID fetches an album, ErrAlbumNotFound if absent.
	GetByID(ctx context.Context, id string) (*model.Album, error)

	// List returns all albums, most recently updated first.
	List(ctx context.Context) ([]*model.Album, error)

	// Update saves the album's current fields.
	Update(ctx context.Context, album *model.Album) error

	// Touch bumps the album's updatedAt; called whenever one of its
	// songs or their children changes.
	Touch(ctx context.Context, id string, now time.Time) error

	// Delete removes the album row only; song cascade is the caller's job.
	Delete(ctx context.Context, id string) error
}

// gormAlbumRepository is the GORM implementation.
type gormAlbumRepository struct {
	db *gorm.DB
}

func (r *gormAlbumRepository) Create(ctx context.Context, album *model.Album) error {
	if err := r.db.WithContext(ctx).Create(album).Error; err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}
	return nil
}

func (r *gormAlbumRepository) GetByID(ctx context.Context, id string) (*model.Album, error) {
	var album model.Album
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&album).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAlbumNotFound, id)
		}
		return nil, fmt.Errorf("failed to get album %s: %w", id, err)
	}
	return &album, nil
}

func (r *gormAlbumRepository) List(ctx context.Context) ([]*model.Album, error) {
	var albums []*model.Album
	err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}

func (r *gormAlbumRepository) Update(ctx context.Context, album *model.Album) error {
	album.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&model.Album{}).
		Where("id = ?", album.ID).
		Updates(map[string]interface{}{
			"name":       album.Name,
			"updated_at": album.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update album %s: %w", album.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrAlbumNotFound, album.ID)
	}
	return nil
}

func (r *gormAlbumRepository) Touch(ctx context.Context, id string, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.Album{}).
		Where("id = ?", id).
		Update("updated_at", now).Error
	if err != nil {
		return fmt.Errorf("failed to touch album %s: %w", id, err)
	}
	return nil
}

func (r *gormAlbumRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Album{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete album %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrAlbumNotFound, id)
	}
	return nil
}
