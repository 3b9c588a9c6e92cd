package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "skillswap:session:"

// RedisStore keeps conversations in Redis with a native key TTL, so state
// survives bot restarts and eviction needs no sweeper. Per-user serialization
// still uses in-process mutexes: the bot runs as a single consumer of its
// Telegram update stream.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewRedisStore constructs a Redis-backed store with the given idle TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		locks:  make(map[int64]*sync.Mutex),
	}
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

// Get returns the user's conversation if present. Decode failures are treated
// as absence; the stale key is dropped.
func (s *RedisStore) Get(ctx context.Context, userID int64) (*Conversation, bool) {
	data, err := s.client.Get(ctx, redisKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		s.client.Del(ctx, redisKey(userID))
		return nil, false
	}
	return &conv, true
}

// Put stores the conversation with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, userID int64, conv *Conversation) {
	if conv == nil {
		return
	}
	conv.UpdatedAt = time.Now()
	data, err := json.Marshal(conv)
	if err != nil {
		return
	}
	s.client.Set(ctx, redisKey(userID), data, s.ttl)
}

// Delete removes the user's conversation.
func (s *RedisStore) Delete(ctx context.Context, userID int64) {
	s.client.Del(ctx, redisKey(userID))
}

// Len reports the number of active conversations.
func (s *RedisStore) Len(ctx context.Context) int {
	var count int
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count
}

// Serialize runs fn under the user's in-process lock.
func (s *RedisStore) Serialize(userID int64, fn func() error) error {
	s.locksMu.Lock()
	mu, ok := s.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	defer mu.Unlock()
	return fn()
}
