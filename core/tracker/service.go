// Package tracker holds the mutation entry points of the production
// tracker: album and song lifecycle, file and reference attachment, and
// comments. Every tracked mutation commits its state change together
// with its ledger entry in one transaction.
package tracker

import (
	"context"
	"time"

	"Tracklab/core/ledger"
	"Tracklab/logger"
	"Tracklab/model"
	"Tracklab/repository"

	"github.com/google/uuid"
)

// DefaultTitle is given to songs created without a title.
const DefaultTitle = "Untitled"

// Service wires the store and the version ledger behind the caller-facing
// operations.
type Service struct {
	store  repository.Store
	ledger *ledger.Ledger
	now    func() time.Time
}

// NewService creates the tracker service.
func NewService(store repository.Store, l *ledger.Ledger) *Service {
	return &Service{store: store, ledger: l, now: time.Now}
}

// Ledger exposes the version ledger for history queries and restores.
func (s *Service) Ledger() *ledger.Ledger {
	return s.ledger
}

// ---- albums ----

// CreateAlbum creates an empty album.
func (s *Service) CreateAlbum(ctx context.Context, name string) (*model.Album, error) {
	now := s.now()
	album := &model.Album{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Albums().Create(ctx, album); err != nil {
		return nil, err
	}
	logger.Info("album created", logger.String("albumId", album.ID), logger.String("name", name))
	return album, nil
}

// RenameAlbum changes an album's name.
func (s *Service) RenameAlbum(ctx context.Context, id, name string) (*model.Album, error) {
	album, err := s.store.Albums().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	album.Name = name
	if err := s.store.Albums().Update(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

// ListAlbums returns all albums with their songs, most recently updated
// album first.
func (s *Service) ListAlbums(ctx context.Context) ([]*model.AlbumWithSongs, error) {
	albums, err := s.store.Albums().List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*model.AlbumWithSongs, 0, len(albums))
	for _, album := range albums {
		songs, err := s.store.Songs().GetByAlbum(ctx, album.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &model.AlbumWithSongs{Album: *album, Songs: songs})
	}
	return result, nil
}

// GetAlbum returns an album with full data for each song.
func (s *Service) GetAlbum(ctx context.Context, id string) (*model.AlbumDetail, error) {
	album, err := s.store.Albums().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	songs, err := s.store.Songs().GetByAlbum(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &model.AlbumDetail{Album: *album, Songs: make([]*model.SongDetail, 0, len(songs))}
	for _, song := range songs {
		sd, err := s.songDetail(ctx, song)
		if err != nil {
			return nil, err
		}
		detail.Songs = append(detail.Songs, sd)
	}
	return detail, nil
}

// DeleteAlbum removes the album and every song in it, with each song's
// files, references, comments and versions.
func (s *Service) DeleteAlbum(ctx context.Context, id string) error {
	err := s.store.Transaction(ctx, func(st repository.Store) error {
		songs, err := st.Songs().GetByAlbum(ctx, id)
		if err != nil {
			return err
		}
		for _, song := range songs {
			if err := deleteSongCascade(ctx, st, song.ID); err != nil {
				return err
			}
		}
		return st.Albums().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.Info("album deleted", logger.String("albumId", id))
	return nil
}

// DuplicateAlbum copies an album and its songs' editable fields. Files,
// references and comments are not copied; each new song starts its own
// history.
func (s *Service) DuplicateAlbum(ctx context.Context, id string) (*model.Album, error) {
	original, err := s.store.Albums().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	songs, err := s.store.Songs().GetByAlbum(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	copyAlbum := &model.Album{
		ID:        uuid.NewString(),
		Name:      "Copy of " + original.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.store.Transaction(ctx, func(st repository.Store) error {
		if err := st.Albums().Create(ctx, copyAlbum); err != nil {
			return err
		}
		for i, song := range songs {
			copySong := &model.Song{
				ID:        uuid.NewString(),
				AlbumID:   copyAlbum.ID,
				Title:     song.Title,
				Lyrics:    song.Lyrics,
				Notes:     song.Notes,
				Progress:  song.Progress,
				Origin:    song.Origin,
				Order:     i,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := st.Songs().Create(ctx, copySong); err != nil {
				return err
			}
			if _, err := s.ledger.Append(ctx, st, copySong.ID, model.ChangeSongCreated,
				"Copied from "+original.Name, ledger.SystemUser, ""); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return copyAlbum, nil
}

// ---- songs ----

// CreateSong adds a song at the end of the album's sequence and records
// the initial history entry. No snapshot is taken; there is nothing to
// roll back to before creation.
func (s *Service) CreateSong(ctx context.Context, albumID, title, editor string) (*model.SongDetail, error) {
	if title == "" {
		title = DefaultTitle
	}
	if editor == "" {
		editor = "User"
	}

	now := s.now()
	song := &model.Song{
		ID:        uuid.NewString(),
		AlbumID:   albumID,
		Title:     title,
		Progress:  model.ProgressNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.Transaction(ctx, func(st repository.Store) error {
		if _, err := st.Albums().GetByID(ctx, albumID); err != nil {
			return err
		}
		maxOrder, err := st.Songs().MaxOrder(ctx, albumID)
		if err != nil {
			return err
		}
		song.Order = maxOrder + 1

		if err := st.Songs().Create(ctx, song); err != nil {
			return err
		}
		if _, err := s.ledger.Append(ctx, st, song.ID, model.ChangeSongCreated,
			"Initial creation", editor, ""); err != nil {
			return err
		}
		return st.Albums().Touch(ctx, albumID, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("song created",
		logger.String("songId", song.ID),
		logger.String("albumId", albumID),
		logger.Int("order", song.Order))
	return s.songDetail(ctx, song)
}

// GetSong returns one song with all of its owned data.
func (s *Service) GetSong(ctx context.Context, id string) (*model.SongDetail, error) {
	song, err := s.store.Songs().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.songDetail(ctx, song)
}

// UpdateSong applies field changes to a song. The pre-update state of
// {title, lyrics, notes, progress} is captured as a snapshot and appended
// to the history together with the state change, in one transaction. The
// history label comes from the first change.
func (s *Service) UpdateSong(ctx context.Context, songID string, changes []model.FieldChange, editor string) (*model.Song, error) {
	if editor == "" {
		editor = "User"
	}

	var updated *model.Song
	err := s.store.Transaction(ctx, func(st repository.Store) error {
		song, err := st.Songs().GetByID(ctx, songID)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			updated = song
			return nil
		}

		now := s.now()
		snapshot, err := model.TakeSnapshot(song, now).Encode()
		if err != nil {
			return err
		}

		for _, change := range changes {
			change.Apply(song, editor, now)
		}
		song.UpdatedAt = now

		if err := st.Songs().Update(ctx, song); err != nil {
			return err
		}
		if _, err := s.ledger.Append(ctx, st, songID, changes[0].Label(), "", editor, snapshot); err != nil {
			return err
		}
		if err := st.Albums().Touch(ctx, song.AlbumID, now); err != nil {
			return err
		}

		updated = song
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSong removes the song and all of its files, references, comments
// and versions as one unit.
func (s *Service) DeleteSong(ctx context.Context, songID string) error {
	return s.store.Transaction(ctx, func(st repository.Store) error {
		song, err := st.Songs().GetByID(ctx, songID)
		if err != nil {
			return err
		}
		if err := deleteSongCascade(ctx, st, songID); err != nil {
			return err
		}
		return st.Albums().Touch(ctx, song.AlbumID, s.now())
	})
}

// deleteSongCascade removes a song and its children inside an open
// transaction.
func deleteSongCascade(ctx context.Context, st repository.Store, songID string) error {
	if err := st.Files().DeleteBySong(ctx, songID); err != nil {
		return err
	}
	if err := st.References().DeleteBySong(ctx, songID); err != nil {
		return err
	}
	if err := st.Comments().DeleteBySong(ctx, songID); err != nil {
		return err
	}
	if err := st.Versions().DeleteBySong(ctx, songID); err != nil {
		return err
	}
	return st.Songs().Delete(ctx, songID)
}

// ReorderSongs assigns each song the position its id holds in the given
// sequence. The id list is trusted as supplied; ids outside the album are
// the caller's mistake to make.
func (s *Service) ReorderSongs(ctx context.Context, albumID string, songIDs []string) error {
	now := s.now()
	return s.store.Transaction(ctx, func(st repository.Store) error {
		for i, id := range songIDs {
			if err := st.Songs().SetOrder(ctx, id, i, now); err != nil {
				return err
			}
		}
		return st.Albums().Touch(ctx, albumID, now)
	})
}

// ---- files ----

// FileParams describes an uploaded file as returned by the file
// transport collaborator.
type FileParams struct {
	Name       string
	Type       model.FileType
	URL        string
	MimeType   string
	Size       int64
	ExternalID string
}

// AddFile attaches file metadata to a song and records an upload entry
// in the song's history. Upload entries carry no snapshot.
func (s *Service) AddFile(ctx context.Context, songID string, params FileParams, editor string) (*model.File, error) {
	if editor == "" {
		editor = "User"
	}

	now := s.now()
	file := &model.File{
		ID:         uuid.NewString(),
		SongID:     songID,
		Name:       params.Name,
		Type:       params.Type,
		URL:        params.URL,
		MimeType:   params.MimeType,
		Size:       params.Size,
		ExternalID: params.ExternalID,
		CreatedAt:  now,
	}

	err := s.store.Transaction(ctx, func(st repository.Store) error {
		song, err := st.Songs().GetByID(ctx, songID)
		if err != nil {
			return err
		}
		if err := st.Files().Create(ctx, file); err != nil {
			return err
		}
		if _, err := s.ledger.Append(ctx, st, songID,
			model.ChangeUploadedFile(params.Type), params.Name, editor, ""); err != nil {
			return err
		}
		return st.Albums().Touch(ctx, song.AlbumID, now)
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// DeleteFile removes a file attachment and returns the deleted record so
// the caller can release the stored object. No history entry is recorded.
func (s *Service) DeleteFile(ctx context.Context, fileID string) (*model.File, error) {
	var file *model.File
	err := s.store.Transaction(ctx, func(st repository.Store) error {
		var err error
		file, err = st.Files().GetByID(ctx, fileID)
		if err != nil {
			return err
		}
		if err := st.Files().Delete(ctx, fileID); err != nil {
			return err
		}
		song, err := st.Songs().GetByID(ctx, file.SongID)
		if err != nil {
			return err
		}
		return st.Albums().Touch(ctx, song.AlbumID, s.now())
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// ---- references ----

// ReferenceParams describes a catalog search result being attached to a
// song.
type ReferenceParams struct {
	Type      model.ReferenceSource
	Title     string
	Artist    string
	URL       string
	Thumbnail string
}

// AddReference attaches an external reference link and records an
// "Added reference" entry. Reference entries carry no snapshot.
func (s *Service) AddReference(ctx context.Context, songID string, params ReferenceParams, editor string) (*model.Reference, error) {
	if editor == "" {
		editor = "User"
	}

	now := s.now()
	reference := &model.Reference{
		ID:        uuid.NewString(),
		SongID:    songID,
		Type:      params.Type,
		Title:     params.Title,
		Artist:    params.Artist,
		URL:       params.URL,
		Thumbnail: params.Thumbnail,
		User:      editor,
		CreatedAt: now,
	}

	err := s.store.Transaction(ctx, func(st repository.Store) error {
		song, err := st.Songs().GetByID(ctx, songID)
		if err != nil {
			return err
		}
		if err := st.References().Create(ctx, reference); err != nil {
			return err
		}
		if _, err := s.ledger.Append(ctx, st, songID,
			model.ChangeAddedReference, params.Title, editor, ""); err != nil {
			return err
		}
		return st.Albums().Touch(ctx, song.AlbumID, now)
	})
	if err != nil {
		return nil, err
	}
	return reference, nil
}

// DeleteReference removes a reference link. No history entry is recorded.
func (s *Service) DeleteReference(ctx context.Context, referenceID string) error {
	return s.store.Transaction(ctx, func(st repository.Store) error {
		reference, err := st.References().GetByID(ctx, referenceID)
		if err != nil {
			return err
		}
		if err := st.References().Delete(ctx, referenceID); err != nil {
			return err
		}
		song, err := st.Songs().GetByID(ctx, reference.SongID)
		if err != nil {
			return err
		}
		return st.Albums().Touch(ctx, song.AlbumID, s.now())
	})
}

// ---- comments ----

// AddComment adds a remark to a song. Comments live outside the version
// ledger.
func (s *Service) AddComment(ctx context.Context, songID, user, text string) (*model.Comment, error) {
	song, err := s.store.Songs().GetByID(ctx, songID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	comment := &model.Comment{
		ID:        uuid.NewString(),
		SongID:    songID,
		User:      user,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.store.Albums().Touch(ctx, song.AlbumID, now); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment edits an existing comment's text or attribution.
func (s *Service) UpdateComment(ctx context.Context, commentID, user, text string) (*model.Comment, error) {
	comment, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if user != "" {
		comment.User = user
	}
	if text != "" {
		comment.Text = text
	}
	if err := s.store.Comments().Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment.
func (s *Service) DeleteComment(ctx context.Context, commentID string) error {
	return s.store.Comments().Delete(ctx, commentID)
}

// ---- helpers ----

func (s *Service) songDetail(ctx context.Context, song *model.Song) (*model.SongDetail, error) {
	files, err := s.store.Files().ListBySong(ctx, song.ID)
	if err != nil {
		return nil, err
	}
	references, err := s.store.References().ListBySong(ctx, song.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListBySong(ctx, song.ID)
	if err != nil {
		return nil, err
	}
	versions, err := s.store.Versions().ListBySong(ctx, song.ID)
	if err != nil {
		return nil, err
	}
	return &model.SongDetail{
		Song:       *song,
		Files:      files,
		References: references,
		Comments:   comments,
		Versions:   versions,
	}, nil
}
