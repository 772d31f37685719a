package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Tracklab/model"

	"gorm.io/gorm"
)

// SongRepository defines song current-state operations. Snapshot taking
// and version appends live in the ledger, not here; Update is the raw
// overwrite path and records nothing.
type SongRepository interface {
	// Create inserts a new song with its order index already assigned.
	Create(ctx context.Context, song *model.Song) error

	// GetByID fetches a song, ErrSongNotFound if absent.
	GetByID(ctx context.Context, id string) (*model.Song, error)

	// GetByAlbum returns an album's songs ordered by their order index.
	GetByAlbum(ctx context.Context, albumID string) ([]*model.Song, error)

	// MaxOrder returns the highest order index in the album, -1 when empty.
	MaxOrder(ctx context.Context, albumID string) (int, error)

	// Update overwrites the song's mutable fields with the given record.
	Update(ctx context.Context, song *model.Song) error

	// SetOrder assigns a song's position within its album.
	SetOrder(ctx context.Context, songID string, order int, now time.Time) error

	// Delete removes the song row only; child cascade is the caller's job.
	Delete(ctx context.Context, id string) error
}

// gormSongRepository is the GORM implementation.
type gormSongRepository struct {
	db *gorm.DB
}

func (r *gormSongRepository) Create(ctx context.Context, song *model.Song) error {
	if err := r.db.WithContext(ctx).Create(song).Error; err != nil {
		return fmt.Errorf("failed to create song: %w", err)
	}
	return nil
}

func (r *gormSongRepository) GetByID(ctx context.Context, id string) (*model.Song, error) {
	var song model.Song
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&song).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSongNotFound, id)
		}
		return nil, fmt.Errorf("failed to get song %s: %w", id, err)
	}
	return &song, nil
}

func (r *gormSongRepository) GetByAlbum(ctx context.Context, albumID string) ([]*model.Song, error) {
	var songs []*model.Song
	err := r.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("sort_order ASC").
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list songs for album %s: %w", albumID, err)
	}
	return songs, nil
}

func (r *gormSongRepository) MaxOrder(ctx context.Context, albumID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&model.Song{}).
		Where("album_id = ?", albumID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max order for album %s: %w", albumID, err)
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

func (r *gormSongRepository) Update(ctx context.Context, song *model.Song) error {
	res := r.db.WithContext(ctx).Model(&model.Song{}).
		Where("id = ?", song.ID).
		Updates(map[string]interface{}{
			"title":             song.Title,
			"lyrics":            song.Lyrics,
			"lyrics_user":       song.LyricsUser,
			"lyrics_updated_at": song.LyricsUpdatedAt,
			"notes":             song.Notes,
			"notes_user":        song.NotesUser,
			"notes_updated_at":  song.NotesUpdatedAt,
			"progress":          song.Progress,
			"origin":            song.Origin,
			"updated_at":        song.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update song %s: %w", song.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Updates with identical values still match the row in MySQL only
		// when using the default affected-rows mode; check existence to
		// tell no-op apart from missing.
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Song{}).
			Where("id = ?", song.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check song %s: %w", song.ID, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrSongNotFound, song.ID)
		}
	}
	return nil
}

func (r *gormSongRepository) SetOrder(ctx context.Context, songID string, order int, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.Song{}).
		Where("id = ?", songID).
		Updates(map[string]interface{}{
			"sort_order": order,
			"updated_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set order for song %s: %w", songID, err)
	}
	return nil
}

func (r *gormSongRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Song{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete song %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrSongNotFound, id)
	}
	return nil
}
