package synclock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rentalhq/propsync/internal/model"
)

// MemoryLocker implements Locker with an in-process map. It serializes
// runs within one server process only; deployments with multiple
// concurrent instances need the DynamoDB-backed LockManager.
type MemoryLocker struct {
	locks       map[string]*model.SyncLock
	mu          sync.Mutex
	ttlDuration time.Duration
}

// NewMemoryLocker creates a MemoryLocker with the default TTL.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks:       make(map[string]*model.SyncLock),
		ttlDuration: DefaultTTL,
	}
}

func (m *MemoryLocker) Acquire(ctx context.Context, slug, owner string) (*model.SyncLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().Unix()
	if existing, ok := m.locks[slug]; ok {
		if existing.ExpiresAt > now && existing.Owner != owner {
			return nil, ErrLockHeld
		}
	}

	lock := &model.SyncLock{
		Slug:      slug,
		Owner:     owner,
		ExpiresAt: now + int64(m.ttlDuration.Seconds()),
	}
	m.locks[slug] = lock
	return lock, nil
}

func (m *MemoryLocker) Release(ctx context.Context, slug, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.locks[slug]
	if !ok || existing.Owner != owner {
		return fmt.Errorf("lock not found or not owned by run %s", owner)
	}

	delete(m.locks, slug)
	return nil
}

func (m *MemoryLocker) Status(ctx context.Context, slug string) (*model.SyncLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.locks[slug]
	if !ok {
		return nil, nil
	}
	if existing.ExpiresAt < time.Now().Unix() {
		return nil, nil // Expired
	}
	return existing, nil
}
