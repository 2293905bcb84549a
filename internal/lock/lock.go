package lock

import (
	"context"
	"errors"
)

// ErrLocked is returned by Acquire when another holder owns the key.
var ErrLocked = errors.New("resource is locked")

// Locker hands out non-blocking exclusive locks. The returned release func is
// idempotent and must be called once the protected work is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

func ProjectKey(projectID string) string {
	return "opensight:lock:project:" + projectID
}
