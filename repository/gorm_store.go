package repository

import (
	"context"
	"fmt"

	"Tracklab/model"

	"gorm.io/gorm"
)

// gormStore bundles the GORM repositories over one *gorm.DB, which may be
// the root connection or a transaction handle.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates the MySQL-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Migrate creates or updates the schema for all tracked entities.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Album{},
		&model.Song{},
		&model.File{},
		&model.Reference{},
		&model.Comment{},
		&model.Version{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (s *gormStore) Albums() AlbumRepository         { return &gormAlbumRepository{db: s.db} }
func (s *gormStore) Songs() SongRepository           { return &gormSongRepository{db: s.db} }
func (s *gormStore) Files() FileRepository           { return &gormFileRepository{db: s.db} }
func (s *gormStore) References() ReferenceRepository { return &gormReferenceRepository{db: s.db} }
func (s *gormStore) Comments() CommentRepository     { return &gormCommentRepository{db: s.db} }
func (s *gormStore) Versions() VersionRepository     { return &gormVersionRepository{db: s.db} }

// Transaction runs fn against a store bound to a database transaction.
// fn returning an error rolls everything back.
func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
