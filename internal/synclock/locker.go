// Package synclock provides a per-slug advisory lock so two sync runs
// for the same property cannot interleave their erase and write phases.
package synclock

import (
	"context"
	"errors"

	"github.com/rentalhq/propsync/internal/model"
)

// ErrLockHeld is returned when another run currently holds the lock.
var ErrLockHeld = errors.New("property is locked by another sync run")

// Locker defines the interface for per-slug sync lock management.
type Locker interface {
	// Acquire attempts to take the lock for the given run owner.
	// It succeeds if no lock exists, the existing lock has expired,
	// or the existing lock belongs to the same owner.
	Acquire(ctx context.Context, slug, owner string) (*model.SyncLock, error)

	// Release removes the lock if the owner holds it.
	Release(ctx context.Context, slug, owner string) error

	// Status retrieves the current lock, or nil when unlocked.
	Status(ctx context.Context, slug string) (*model.SyncLock, error)
}
