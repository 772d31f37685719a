package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"Tracklab/logger"
	"Tracklab/model"

	"github.com/fsnotify/fsnotify"
)

// jsonData is the on-disk shape of the flat-file backend: one JSON blob
// holding every entity, the way the original sync'd data file works.
type jsonData struct {
	Albums     []*model.Album     `json:"albums"`
	Songs      []*model.Song      `json:"songs"`
	Files      []*model.File      `json:"files"`
	References []*model.Reference `json:"references"`
	Comments   []*model.Comment   `json:"comments"`
	Versions   []*model.Version   `json:"versions"`

	// NextSeq numbers version inserts so ties on createdAt keep their
	// insertion order.
	NextSeq int64 `json:"nextSeq"`
}

// JSONStore is the flat-file Store backend. All entities live in a single
// JSON file; every mutation rewrites it atomically (temp file + rename).
// A watcher reloads the in-memory copy when an external sync client
// rewrites the file.
type JSONStore struct {
	path string

	mu   sync.RWMutex
	data *jsonData

	// selfWrites counts renames we performed ourselves so the watcher
	// can tell them apart from external rewrites.
	selfWrites int
	watcher    *fsnotify.Watcher
	done       chan struct{}
}

// NewJSONStore opens (or creates) the flat-file store at path.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &JSONStore{
		path: path,
		data: &jsonData{},
		done: make(chan struct{}),
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, s.data); err != nil {
			return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		if err := s.persist(s.data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}

	if err := s.startWatcher(); err != nil {
		// The store works without the watcher; external rewrites just
		// won't be picked up until restart.
		logger.Warn("data file watcher unavailable", logger.ErrorField(err))
	}

	return s, nil
}

// Close stops the file watcher.
func (s *JSONStore) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *JSONStore) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: the atomic-rename write pattern replaces the
	// file node, which breaks a direct file watch.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case <-s.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				s.maybeReload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("data file watcher error", logger.ErrorField(err))
			}
		}
	}()
	return nil
}

// maybeReload re-reads the data file unless the event came from our own write.
func (s *JSONStore) maybeReload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selfWrites > 0 {
		s.selfWrites--
		return
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		logger.Warn("failed to reload data file", logger.ErrorField(err))
		return
	}
	fresh := &jsonData{}
	if err := json.Unmarshal(raw, fresh); err != nil {
		logger.Warn("ignoring malformed external data file rewrite", logger.ErrorField(err))
		return
	}
	s.data = fresh
	logger.Info("data file reloaded after external change", logger.String("path", s.path))
}

// persist writes d to disk atomically. Callers hold the write lock.
func (s *JSONStore) persist(d *jsonData) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	s.selfWrites++
	return nil
}

// clone deep-copies the dataset via a JSON round-trip so mutations can be
// discarded on failure.
func (d *jsonData) clone() (*jsonData, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to clone dataset: %w", err)
	}
	c := &jsonData{}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("failed to clone dataset: %w", err)
	}
	return c, nil
}

// mutate clones the dataset, applies fn, persists the result, and swaps it
// in. A failing fn or a failing write leaves the current state untouched,
// which is what makes every mutation all-or-nothing.
func (s *JSONStore) mutate(fn func(*jsonData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working, err := s.data.clone()
	if err != nil {
		return err
	}
	if err := fn(working); err != nil {
		return err
	}
	if err := s.persist(working); err != nil {
		return err
	}
	s.data = working
	return nil
}

// read runs fn under the read lock against the live dataset.
func (s *JSONStore) read(fn func(*jsonData) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// Transaction runs fn against a store view whose repositories mutate a
// working copy; the copy is persisted and swapped in only if fn succeeds.
func (s *JSONStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.mutate(func(d *jsonData) error {
		return fn(&jsonTxStore{data: d})
	})
}

func (s *JSONStore) Albums() AlbumRepository     { return &jsonAlbumRepository{jsonRepo{store: s}} }
func (s *JSONStore) Songs() SongRepository       { return &jsonSongRepository{jsonRepo{store: s}} }
func (s *JSONStore) Files() FileRepository       { return &jsonFileRepository{jsonRepo{store: s}} }
func (s *JSONStore) References() ReferenceRepository {
	return &jsonReferenceRepository{jsonRepo{store: s}}
}
func (s *JSONStore) Comments() CommentRepository { return &jsonCommentRepository{jsonRepo{store: s}} }
func (s *JSONStore) Versions() VersionRepository { return &jsonVersionRepository{jsonRepo{store: s}} }

// jsonTxStore serves repositories bound to an in-flight working copy.
type jsonTxStore struct {
	data *jsonData
}

func (s *jsonTxStore) Albums() AlbumRepository { return &jsonAlbumRepository{jsonRepo{tx: s.data}} }
func (s *jsonTxStore) Songs() SongRepository   { return &jsonSongRepository{jsonRepo{tx: s.data}} }
func (s *jsonTxStore) Files() FileRepository   { return &jsonFileRepository{jsonRepo{tx: s.data}} }
func (s *jsonTxStore) References() ReferenceRepository {
	return &jsonReferenceRepository{jsonRepo{tx: s.data}}
}
func (s *jsonTxStore) Comments() CommentRepository {
	return &jsonCommentRepository{jsonRepo{tx: s.data}}
}
func (s *jsonTxStore) Versions() VersionRepository {
	return &jsonVersionRepository{jsonRepo{tx: s.data}}
}

// Nested transactions just reuse the same working copy.
func (s *jsonTxStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

// jsonRepo is the shared access plumbing: either bound to the store (each
// call locks and persists) or to a transaction's working copy.
type jsonRepo struct {
	store *JSONStore
	tx    *jsonData
}

func (r *jsonRepo) mutate(fn func(*jsonData) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.store.mutate(fn)
}

func (r *jsonRepo) read(fn func(*jsonData) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.store.read(fn)
}

// ---- albums ----

type jsonAlbumRepository struct{ jsonRepo }

func (r *jsonAlbumRepository) Create(ctx context.Context, album *model.Album) error {
	a := *album
	return r.mutate(func(d *jsonData) error {
		d.Albums = append(d.Albums, &a)
		return nil
	})
}

func (r *jsonAlbumRepository) GetByID(ctx context.Context, id string) (*model.Album, error) {
	var found *model.Album
	err := r.read(func(d *jsonData) error {
		for _, a := range d.Albums {
			if a.ID == id {
				copy := *a
				found = &copy
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrAlbumNotFound, id)
	})
	return found, err
}

func (r *jsonAlbumRepository) List(ctx context.Context) ([]*model.Album, error) {
	var albums []*model.Album
	err := r.read(func(d *jsonData) error {
		for _, a := range d.Albums {
			copy := *a
			albums = append(albums, &copy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(albums, func(i, j int) bool {
		return albums[i].UpdatedAt.After(albums[j].UpdatedAt)
	})
	return albums, nil
}

func (r *jsonAlbumRepository) Update(ctx context.Context, album *model.Album) error {
	return r.mutate(func(d *jsonData) error {
		for _, a := range d.Albums {
			if a.ID == album.ID {
				a.Name = album.Name
				a.UpdatedAt = time.Now()
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrAlbumNotFound, album.ID)
	})
}

func (r *jsonAlbumRepository) Touch(ctx context.Context, id string, now time.Time) error {
	return r.mutate(func(d *jsonData) error {
		for _, a := range d.Albums {
			if a.ID == id {
				a.UpdatedAt = now
				return nil
			}
		}
		return nil
	})
}

func (r *jsonAlbumRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(func(d *jsonData) error {
		for i, a := range d.Albums {
			if a.ID == id {
				d.Albums = append(d.Albums[:i], d.Albums[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrAlbumNotFound, id)
	})
}

// ---- songs ----

type jsonSongRepository struct{ jsonRepo }

func (r *jsonSongRepository) Create(ctx context.Context, song *model.Song) error {
	s := *song
	return r.mutate(func(d *jsonData) error {
		d.Songs = append(d.Songs, &s)
		return nil
	})
}

func (r *jsonSongRepository) GetByID(ctx context.Context, id string) (*model.Song, error) {
	var found *model.Song
	err := r.read(func(d *jsonData) error {
		for _, s := range d.Songs {
			if s.ID == id {
				copy := *s
				found = &copy
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrSongNotFound, id)
	})
	return found, err
}

func (r *jsonSongRepository) GetByAlbum(ctx context.Context, albumID string) ([]*model.Song, error) {
	var songs []*model.Song
	err := r.read(func(d *jsonData) error {
		for _, s := range d.Songs {
			if s.AlbumID == albumID {
				copy := *s
				songs = append(songs, &copy)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(songs, func(i, j int) bool {
		return songs[i].Order < songs[j].Order
	})
	return songs, nil
}

func (r *jsonSongRepository) MaxOrder(ctx context.Context, albumID string) (int, error) {
	max := -1
	err := r.read(func(d *jsonData) error {
		for _, s := range d.Songs {
			if s.AlbumID == albumID && s.Order > max {
				max = s.Order
			}
		}
		return nil
	})
	return max, err
}

func (r *jsonSongRepository) Update(ctx context.Context, song *model.Song) error {
	return r.mutate(func(d *jsonData) error {
		for _, s := range d.Songs {
			if s.ID == song.ID {
				s.Title = song.Title
				s.Lyrics = song.Lyrics
				s.LyricsUser = song.LyricsUser
				s.LyricsUpdatedAt = song.LyricsUpdatedAt
				s.Notes = song.Notes
				s.NotesUser = song.NotesUser
				s.NotesUpdatedAt = song.NotesUpdatedAt
				s.Progress = song.Progress
				s.Origin = song.Origin
				s.UpdatedAt = song.UpdatedAt
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrSongNotFound, song.ID)
	})
}

func (r *jsonSongRepository) SetOrder(ctx context.Context, songID string, order int, now time.Time) error {
	return r.mutate(func(d *jsonData) error {
		for _, s := range d.Songs {
			if s.ID == songID {
				s.Order = order
				s.UpdatedAt = now
				return nil
			}
		}
		return nil
	})
}

func (r *jsonSongRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(func(d *jsonData) error {
		for i, s := range d.Songs {
			if s.ID == id {
				d.Songs = append(d.Songs[:i], d.Songs[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrSongNotFound, id)
	})
}

// ---- files ----

type jsonFileRepository struct{ jsonRepo }

func (r *jsonFileRepository) Create(ctx context.Context, file *model.File) error {
	f := *file
	return r.mutate(func(d *jsonData) error {
		d.Files = append(d.Files, &f)
		return nil
	})
}

func (r *jsonFileRepository) GetByID(ctx context.Context, id string) (*model.File, error) {
	var found *model.File
	err := r.read(func(d *jsonData) error {
		for _, f := range d.Files {
			if f.ID == id {
				copy := *f
				found = &copy
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	})
	return found, err
}

func (r *jsonFileRepository) ListBySong(ctx context.Context, songID string) ([]*model.File, error) {
	var files []*model.File
	err := r.read(func(d *jsonData) error {
		for _, f := range d.Files {
			if f.SongID == songID {
				copy := *f
				files = append(files, &copy)
			}
		}
		return nil
	})
	return files, err
}

func (r *jsonFileRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(func(d *jsonData) error {
		for i, f := range d.Files {
			if f.ID == id {
				d.Files = append(d.Files[:i], d.Files[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	})
}

func (r *jsonFileRepository) DeleteBySong(ctx context.Context, songID string) error {
	return r.mutate(func(d *jsonData) error {
		kept := d.Files[:0]
		for _, f := range d.Files {
			if f.SongID != songID {
				kept = append(kept, f)
			}
		}
		d.Files = kept
		return nil
	})
}

// ---- references ----

type jsonReferenceRepository struct{ jsonRepo }

func (r *jsonReferenceRepository) Create(ctx context.Context, reference *model.Reference) error {
	ref := *reference
	return r.mutate(func(d *jsonData) error {
		d.References = append(d.References, &ref)
		return nil
	})
}

func (r *jsonReferenceRepository) GetByID(ctx context.Context, id string) (*model.Reference, error) {
	var found *model.Reference
	err := r.read(func(d *jsonData) error {
		for _, ref := range d.References {
			if ref.ID == id {
				copy := *ref
				found = &copy
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrReferenceNotFound, id)
	})
	return found, err
}

func (r *jsonReferenceRepository) ListBySong(ctx context.Context, songID string) ([]*model.Reference, error) {
	var references []*model.Reference
	err := r.read(func(d *jsonData) error {
		for _, ref := range d.References {
			if ref.SongID == songID {
				copy := *ref
				references = append(references, &copy)
			}
		}
		return nil
	})
	return references, err
}

func (r *jsonReferenceRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(func(d *jsonData) error {
		for i, ref := range d.References {
			if ref.ID == id {
				d.References = append(d.References[:i], d.References[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrReferenceNotFound, id)
	})
}

func (r *jsonReferenceRepository) DeleteBySong(ctx context.Context, songID string) error {
	return r.mutate(func(d *jsonData) error {
		kept := d.References[:0]
		for _, ref := range d.References {
			if ref.SongID != songID {
				kept = append(kept, ref)
			}
		}
		d.References = kept
		return nil
	})
}

// ---- comments ----

type jsonCommentRepository struct{ jsonRepo }

func (r *jsonCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	c := *comment
	return r.mutate(func(d *jsonData) error {
		d.Comments = append(d.Comments, &c)
		return nil
	})
}

func (r *jsonCommentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var found *model.Comment
	err := r.read(func(d *jsonData) error {
		for _, c := range d.Comments {
			if c.ID == id {
				copy := *c
				found = &copy
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrCommentNotFound, id)
	})
	return found, err
}

func (r *jsonCommentRepository) ListBySong(ctx context.Context, songID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.read(func(d *jsonData) error {
		for _, c := range d.Comments {
			if c.SongID == songID {
				copy := *c
				comments = append(comments, &copy)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *jsonCommentRepository) Update(ctx context.Context, comment *model.Comment) error {
	return r.mutate(func(d *jsonData) error {
		for _, c := range d.Comments {
			if c.ID == comment.ID {
				c.User = comment.User
				c.Text = comment.Text
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrCommentNotFound, comment.ID)
	})
}

func (r *jsonCommentRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(func(d *jsonData) error {
		for i, c := range d.Comments {
			if c.ID == id {
				d.Comments = append(d.Comments[:i], d.Comments[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrCommentNotFound, id)
	})
}

func (r *jsonCommentRepository) DeleteBySong(ctx context.Context, songID string) error {
	return r.mutate(func(d *jsonData) error {
		kept := d.Comments[:0]
		for _, c := range d.Comments {
			if c.SongID != songID {
				kept = append(kept, c)
			}
		}
		d.Comments = kept
		return nil
	})
}

// ---- versions ----

type jsonVersionRepository struct{ jsonRepo }

func (r *jsonVersionRepository) Append(ctx context.Context, version *model.Version) error {
	v := *version
	return r.mutate(func(d *jsonData) error {
		d.NextSeq++
		v.Seq = d.NextSeq
		d.Versions = append(d.Versions, &v)
		return nil
	})
}

func (r *jsonVersionRepository) GetByID(ctx context.Context, id string) (*model.Version, error) {
	var found *model.Version
	err := r.read(func(d *jsonData) error {
		for _, v := range d.Versions {
			if v.ID == id {
				copy := *v
				found = &copy
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrVersionNotFound, id)
	})
	return found, err
}

func (r *jsonVersionRepository) ListBySong(ctx context.Context, songID string) ([]*model.Version, error) {
	var versions []*model.Version
	err := r.read(func(d *jsonData) error {
		for _, v := range d.Versions {
			if v.SongID == songID {
				copy := *v
				versions = append(versions, &copy)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(versions, func(i, j int) bool {
		if !versions[i].CreatedAt.Equal(versions[j].CreatedAt) {
			return versions[i].CreatedAt.After(versions[j].CreatedAt)
		}
		return versions[i].Seq > versions[j].Seq
	})
	return versions, nil
}

func (r *jsonVersionRepository) UpdateUser(ctx context.Context, id string, user string) error {
	return r.mutate(func(d *jsonData) error {
		for _, v := range d.Versions {
			if v.ID == id {
				v.User = user
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrVersionNotFound, id)
	})
}

func (r *jsonVersionRepository) DeleteBySong(ctx context.Context, songID string) error {
	return r.mutate(func(d *jsonData) error {
		kept := d.Versions[:0]
		for _, v := range d.Versions {
			if v.SongID != songID {
				kept = append(kept, v)
			}
		}
		d.Versions = kept
		return nil
	})
}
