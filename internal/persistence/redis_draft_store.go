package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/miniinbox/inbox/internal/editor"
)

// releaseLock deletes the lock only if it still holds our token, so an
// expired-and-reacquired lock is never released by the previous owner.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisDraftStore keeps drafts as JSON values with a TTL and uses SET NX
// locks as the cross-instance saving guard.
type RedisDraftStore struct {
	client  redis.UniversalClient
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisDraftStore creates a store. lockTTL bounds how long a crashed save
// can block further saves of the same draft.
func NewRedisDraftStore(client redis.UniversalClient, ttl, lockTTL time.Duration) *RedisDraftStore {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &RedisDraftStore{client: client, ttl: ttl, lockTTL: lockTTL}
}

func (s *RedisDraftStore) Load(ctx context.Context, key DraftKey) (editor.Snapshot, bool, error) {
	raw, err := s.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return editor.Snapshot{}, false, nil
	}
	if err != nil {
		return editor.Snapshot{}, false, fmt.Errorf("load draft %s: %w", key, err)
	}
	var snapshot editor.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return editor.Snapshot{}, false, fmt.Errorf("decode draft %s: %w", key, err)
	}
	return snapshot, true, nil
}

func (s *RedisDraftStore) Store(ctx context.Context, key DraftKey, snapshot editor.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key.String(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store draft %s: %w", key, err)
	}
	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, key DraftKey) error {
	if err := s.client.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("delete draft %s: %w", key, err)
	}
	return nil
}

func (s *RedisDraftStore) AcquireSave(ctx context.Context, key DraftKey) (func(), bool, error) {
	lockKey := key.String() + ":saving"
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, lockKey, token, s.lockTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire save lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// The request context may already be done; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseLock.Run(releaseCtx, s.client, []string{lockKey}, token).Err()
	}
	return release, true, nil
}

func (s *RedisDraftStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
