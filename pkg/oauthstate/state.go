package oauthstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store issues single-use OAuth state nonces.
type Store interface {
	Issue(ctx context.Context) (string, error)
	// Consume reports whether state was issued and not yet used or expired.
	Consume(ctx context.Context, state string) (bool, error)
}

const keyPrefix = "oauth:state:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Issue(ctx context.Context) (string, error) {
	state := uuid.NewString()
	ok, err := s.client.SetNX(ctx, keyPrefix+state, 1, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("oauth state collision")
	}
	return state, nil
}

func (s *RedisStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	n, err := s.client.Del(ctx, keyPrefix+state).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return n == 1, nil
}

// MemoryStore keeps nonces in process, for single-instance deployments.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	issued map[string]time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:    ttl,
		now:    time.Now,
		issued: make(map[string]time.Time),
	}
}

func (s *MemoryStore) Issue(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.issued {
		if now.After(exp) {
			delete(s.issued, k)
		}
	}

	state := uuid.NewString()
	s.issued[state] = now.Add(s.ttl)
	return state, nil
}

func (s *MemoryStore) Consume(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.issued[state]
	if !ok {
		return false, nil
	}
	delete(s.issued, state)
	return !s.now().After(exp), nil
}
