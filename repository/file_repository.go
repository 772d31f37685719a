package repository

import (
	"context"
	"errors"
	"fmt"

	"Tracklab/model"

	"gorm.io/gorm"
)

// FileRepository defines file metadata operations.
type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	GetByID(ctx context.Context, id string) (*model.File, error)
	ListBySong(ctx context.Context, songID string) ([]*model.File, error)
	Delete(ctx context.Context, id string) error
	DeleteBySong(ctx context.Context, songID string) error
}

// gormFileRepository is the GORM implementation.
type gormFileRepository struct {
	db *gorm.DB
}

func (r *gormFileRepository) Create(ctx context.Context, file *model.File) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (r *gormFileRepository) GetByID(ctx context.Context, id string) (*model.File, error) {
	var file model.File
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
		}
		return nil, fmt.Errorf("failed to get file %s: %w", id, err)
	}
	return &file, nil
}

func (r *gormFileRepository) ListBySong(ctx context.Context, songID string) ([]*model.File, error) {
	var files []*model.File
	err := r.db.WithContext(ctx).
		Where("song_id = ?", songID).
		Order("created_at ASC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files for song %s: %w", songID, err)
	}
	return files, nil
}

func (r *gormFileRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.File{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete file %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	return nil
}

func (r *gormFileRepository) DeleteBySong(ctx context.Context, songID string) error {
	err := r.db.WithContext(ctx).Where("song_id = ?", songID).Delete(&model.File{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete files for song %s: %w", songID, err)
	}
	return nil
}
