package repository

import (
	"context"
	"errors"
	"fmt"

	"Tracklab/model"

	"gorm.io/gorm"
)

// CommentRepository defines comment operations. Comments never touch the
// version ledger.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)

	// ListBySong returns a song's comments newest-first.
	ListBySong(ctx context.Context, songID string) ([]*model.Comment, error)

	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id string) error
	DeleteBySong(ctx context.Context, songID string) error
}

// gormCommentRepository is the GORM implementation.
type gormCommentRepository struct {
	db *gorm.DB
}

func (r *gormCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *gormCommentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCommentNotFound, id)
		}
		return nil, fmt.Errorf("failed to get comment %s: %w", id, err)
	}
	return &comment, nil
}

func (r *gormCommentRepository) ListBySong(ctx context.Context, songID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("song_id = ?", songID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for song %s: %w", songID, err)
	}
	return comments, nil
}

func (r *gormCommentRepository) Update(ctx context.Context, comment *model.Comment) error {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]interface{}{
			"user": comment.User,
			"text": comment.Text,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update comment %s: %w", comment.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Comment{}).
			Where("id = ?", comment.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check comment %s: %w", comment.ID, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrCommentNotFound, comment.ID)
		}
	}
	return nil
}

func (r *gormCommentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrCommentNotFound, id)
	}
	return nil
}

func (r *gormCommentRepository) DeleteBySong(ctx context.Context, songID string) error {
	err := r.db.WithContext(ctx).Where("song_id = ?", songID).Delete(&model.Comment{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete comments for song %s: %w", songID, err)
	}
	return nil
}
