package repository

import "context"

// Store aggregates the entity repositories of one storage backend.
//
// Transaction runs fn against a transactional view of the store: every
// repository call made through the Store handed to fn either commits as
// a unit or leaves no trace. Mutation entry points rely on this to keep
// a state change and its version append from being applied separately.
type Store interface {
	Albums() AlbumRepository
	Songs() SongRepository
	Files() FileRepository
	References() ReferenceRepository
	Comments() CommentRepository
	Versions() VersionRepository

	Transaction(ctx context.Context, fn func(Store) error) error
}
