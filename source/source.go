package source

import (
	"context"
	"errors"

	"github.com/stagekit/stagekit/song"
)

// ErrNotFound is returned when the requested setlist or song does not exist
// (or is not visible to the current user).
var ErrNotFound = errors.New("not found")

// User is the already-resolved identity a session performs under.
type User struct {
	ID    string
	Email string
}

// IdentityProvider resolves the current user. A nil user with a nil error
// means signed out.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// Source loads setlists and songs. The performance engine does not care
// whether this is a remote database or a local file; songs are validated
// into the closed content model at this boundary, never probed downstream.
type Source interface {
	LoadSetlist(ctx context.Context, id string) (*song.Setlist, error)
	LoadSong(ctx context.Context, id string) (*song.Song, error)
}
