// Package ledger implements the append-only version history of songs:
// how snapshots are taken, how entries are appended, and how a song is
// restored to a prior point without ever rewriting history.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Tracklab/logger"
	"Tracklab/model"
	"Tracklab/repository"

	"github.com/google/uuid"
)

// SystemUser is the attribution recorded on automatic entries such as
// restores.
const SystemUser = "System"

// ErrNoSnapshot is returned when a restore targets a version that carries
// no snapshot (song-created, file-upload and reference entries never do).
var ErrNoSnapshot = errors.New("version has no snapshot to restore")

// Ledger is the sole authority for producing and consuming song
// snapshots and for appending version records.
type Ledger struct {
	store repository.Store
	now   func() time.Time
}

// New creates a Ledger over the given store.
func New(store repository.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Record appends a new version for the song using the ledger's own store.
// Label and comment are free text; the only failure mode besides storage
// is a missing song.
func (l *Ledger) Record(ctx context.Context, songID, changes, comment, user, snapshot string) (*model.Version, error) {
	if _, err := l.store.Songs().GetByID(ctx, songID); err != nil {
		return nil, err
	}
	return l.Append(ctx, l.store, songID, changes, comment, user, snapshot)
}

// Append writes one version entry through the given store view, which may
// be transaction-scoped. Mutation entry points use this to commit a state
// change and its version record as one unit.
func (l *Ledger) Append(ctx context.Context, st repository.Store, songID, changes, comment, user, snapshot string) (*model.Version, error) {
	version := &model.Version{
		ID:        uuid.NewString(),
		SongID:    songID,
		Changes:   changes,
		Comment:   comment,
		User:      user,
		Snapshot:  snapshot,
		CreatedAt: l.now(),
	}
	if err := st.Versions().Append(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

// ListForSong returns the song's history newest-first. Calling it twice
// with no intervening mutation yields identical results.
func (l *Ledger) ListForSong(ctx context.Context, songID string) ([]*model.Version, error) {
	return l.store.Versions().ListBySong(ctx, songID)
}

// UpdateAttribution corrects the user recorded on an existing version.
// This is the one permitted mutation of history; nothing else about the
// entry changes.
func (l *Ledger) UpdateAttribution(ctx context.Context, versionID, user string) (*model.Version, error) {
	if err := l.store.Versions().UpdateUser(ctx, versionID, user); err != nil {
		return nil, err
	}
	return l.store.Versions().GetByID(ctx, versionID)
}

// Restore rewinds the song's editable fields to the snapshot carried by
// the target version, then appends a new "Restored from version history"
// entry holding the same snapshot. History is extended, never truncated:
// the restored state becomes the new head and every prior entry stays
// untouched.
func (l *Ledger) Restore(ctx context.Context, songID, versionID string) (*model.Song, error) {
	var restored *model.Song

	err := l.store.Transaction(ctx, func(st repository.Store) error {
		version, err := st.Versions().GetByID(ctx, versionID)
		if err != nil {
			return err
		}
		if version.SongID != songID {
			return fmt.Errorf("%w: %s does not belong to song %s",
				repository.ErrVersionNotFound, versionID, songID)
		}
		if !version.HasSnapshot() {
			return fmt.Errorf("%w: %s (%s)", ErrNoSnapshot, versionID, version.Changes)
		}

		snapshot, err := model.ParseSnapshot(version.Snapshot)
		if err != nil {
			return err
		}

		song, err := st.Songs().GetByID(ctx, songID)
		if err != nil {
			return err
		}

		now := l.now()
		song.Title = snapshot.Title
		song.Lyrics = snapshot.Lyrics
		song.Notes = snapshot.Notes
		song.Progress = snapshot.Progress
		song.UpdatedAt = now

		// Raw overwrite: this path takes no snapshot of its own, the
		// restore entry below is recorded explicitly.
		if err := st.Songs().Update(ctx, song); err != nil {
			return err
		}

		comment := fmt.Sprintf("Restored to %s", version.CreatedAt.Format("Jan 2, 2006 15:04:05"))
		if _, err := l.Append(ctx, st, songID, model.ChangeRestored, comment, SystemUser, version.Snapshot); err != nil {
			return err
		}

		if err := st.Albums().Touch(ctx, song.AlbumID, now); err != nil {
			return err
		}

		restored = song
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("song restored from version history",
		logger.String("songId", songID),
		logger.String("versionId", versionID))
	return restored, nil
}
