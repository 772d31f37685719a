package model

import "time"

// FieldChange is one mutation to a song's editable state. Each mutation
// kind is its own type so that history labels are derived exhaustively
// instead of from runtime field names.
type FieldChange interface {
	// Label is the machine-generated history label, e.g. "Updated lyrics".
	Label() string

	// Apply writes the change into the song record. Lyrics and notes
	// edits also stamp their per-field editor attribution.
	Apply(s *Song, editor string, now time.Time)
}

// TitleChange replaces the song title.
type TitleChange struct {
	Value string
}

func (c TitleChange) Label() string { return "Updated title" }

func (c TitleChange) Apply(s *Song, editor string, now time.Time) {
	s.Title = c.Value
}

// LyricsChange replaces the lyrics text and records who edited it.
type LyricsChange struct {
	Value string
}

func (c LyricsChange) Label() string { return "Updated lyrics" }

func (c LyricsChange) Apply(s *Song, editor string, now time.Time) {
	s.Lyrics = c.Value
	s.LyricsUser = editor
	t := now
	s.LyricsUpdatedAt = &t
}

// NotesChange replaces the notes text and records who edited it.
type NotesChange struct {
	Value string
}

func (c NotesChange) Label() string { return "Updated notes" }

func (c NotesChange) Apply(s *Song, editor string, now time.Time) {
	s.Notes = c.Value
	s.NotesUser = editor
	t := now
	s.NotesUpdatedAt = &t
}

// ProgressChange moves the song to another production stage.
type ProgressChange struct {
	Value Progress
}

func (c ProgressChange) Label() string { return "Updated progress" }

func (c ProgressChange) Apply(s *Song, editor string, now time.Time) {
	s.Progress = c.Value
}

// OriginChange replaces the free-form provenance label.
type OriginChange struct {
	Value string
}

func (c OriginChange) Label() string { return "Updated origin" }

func (c OriginChange) Apply(s *Song, editor string, now time.Time) {
	s.Origin = c.Value
}
