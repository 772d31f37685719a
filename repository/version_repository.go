package repository

import (
	"context"
	"errors"
	"fmt"

	"Tracklab/model"

	"gorm.io/gorm"
)

// VersionRepository persists the append-only history entries. Append and
// UpdateUser are the only writes; nothing here ever rewrites an existing
// entry's content.
type VersionRepository interface {
	// Append inserts a new version record.
	Append(ctx context.Context, version *model.Version) error

	// GetByID fetches a version, ErrVersionNotFound if absent.
	GetByID(ctx context.Context, id string) (*model.Version, error)

	// ListBySong returns a song's versions newest-first; entries sharing
	// a timestamp come back in reverse insertion order.
	ListBySong(ctx context.Context, songID string) ([]*model.Version, error)

	// UpdateUser corrects the attribution of an existing version. This is
	// the sole permitted mutation.
	UpdateUser(ctx context.Context, id string, user string) error

	// DeleteBySong removes a song's entire history; only used by the
	// song-delete cascade.
	DeleteBySong(ctx context.Context, songID string) error
}

// gormVersionRepository is the GORM implementation.
type gormVersionRepository struct {
	db *gorm.DB
}

func (r *gormVersionRepository) Append(ctx context.Context, version *model.Version) error {
	if err := r.db.WithContext(ctx).Create(version).Error; err != nil {
		return fmt.Errorf("failed to append version: %w", err)
	}
	return nil
}

func (r *gormVersionRepository) GetByID(ctx context.Context, id string) (*model.Version, error) {
	var version model.Version
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrVersionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get version %s: %w", id, err)
	}
	return &version, nil
}

func (r *gormVersionRepository) ListBySong(ctx context.Context, songID string) ([]*model.Version, error) {
	var versions []*model.Version
	err := r.db.WithContext(ctx).
		Where("song_id = ?", songID).
		Order("created_at DESC, seq DESC").
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list versions for song %s: %w", songID, err)
	}
	return versions, nil
}

func (r *gormVersionRepository) UpdateUser(ctx context.Context, id string, user string) error {
	res := r.db.WithContext(ctx).Model(&model.Version{}).
		Where("id = ?", id).
		Update("user", user)
	if res.Error != nil {
		return fmt.Errorf("failed to update version %s attribution: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Version{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check version %s: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrVersionNotFound, id)
		}
	}
	return nil
}

func (r *gormVersionRepository) DeleteBySong(ctx context.Context, songID string) error {
	err := r.db.WithContext(ctx).Where("song_id = ?", songID).Delete(&model.Version{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete versions for song %s: %w", songID, err)
	}
	return nil
}
