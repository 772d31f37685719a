package repository

import "errors"

// Not-found sentinels. Backends return these (possibly wrapped) when an
// operation references an identifier that does not exist; callers match
// them with errors.Is.
var (
	ErrAlbumNotFound     = errors.New("album not found")
	ErrSongNotFound      = errors.New("song not found")
	ErrVersionNotFound   = errors.New("version not found")
	ErrFileNotFound      = errors.New("file not found")
	ErrReferenceNotFound = errors.New("reference not found")
	ErrCommentNotFound   = errors.New("comment not found")
)
