package sessions

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no session matches the given ID.
var ErrNotFound = errors.New("session not found")

type Repo interface {
	Upsert(ctx context.Context, session Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	Delete(ctx context.Context, sessionID string) error
}
