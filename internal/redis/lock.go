package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquirePushLock attempts to acquire the push-initiation lock for the
// given transaction, so only one STK push is ever sent per transaction.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquirePushLock(ctx context.Context, transactionID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:push:%s", transactionID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleasePushLock releases the push-initiation lock for the transaction.
func (s *LockStore) ReleasePushLock(ctx context.Context, transactionID string) error {
	key := fmt.Sprintf("lock:push:%s", transactionID)

	return s.client.Del(ctx, key).Err()
}
