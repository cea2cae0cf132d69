package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zkhudr/gemini-agent/domain/memory"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	// Address is the Redis host:port.
	Address string

	// Password is the optional auth password.
	Password string

	// DB is the Redis database number.
	DB int

	// KeyPrefix namespaces this store's keys; the project identifier is a
	// good choice so session/project scopes stay per-project.
	KeyPrefix string

	// DialTimeout bounds the initial connection check.
	DialTimeout time.Duration
}

// RedisStore keeps each scope in its own Redis hash, record key to record
// JSON. Scope independence and the fixed recall order match the file store.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a Redis store and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis memory store: %w", err)
	}

	return &RedisStore{client: client, keyPrefix: cfg.KeyPrefix}, nil
}

// NewRedisStoreFromClient wraps an existing client, for tests.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) scopeKey(scope memory.Scope) string {
	return s.keyPrefix + "memory:" + string(scope)
}

// Remember upserts a record into the scope's hash.
func (s *RedisStore) Remember(ctx context.Context, key, content string, scope memory.Scope, tags ...string) error {
	if !scope.Valid() {
		return fmt.Errorf("%w: %s", memory.ErrInvalidScope, scope)
	}
	if tags == nil {
		tags = []string{}
	}
	rec := memory.Record{
		Content:   content,
		Source:    "user_memory_" + string(scope),
		Priority:  1,
		Scope:     scope,
		Tags:      tags,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return s.client.HSet(ctx, s.scopeKey(scope), key, data).Err()
}

// Recall returns the first record found across the requested scopes.
func (s *RedisStore) Recall(ctx context.Context, key string, scopes ...memory.Scope) (memory.Record, bool, error) {
	for _, scope := range scopeList(scopes) {
		if !scope.Valid() {
			return memory.Record{}, false, fmt.Errorf("%w: %s", memory.ErrInvalidScope, scope)
		}
		data, err := s.client.HGet(ctx, s.scopeKey(scope), key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return memory.Record{}, false, err
		}
		var rec memory.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return memory.Record{}, false, fmt.Errorf("decode record: %w", err)
		}
		return rec, true, nil
	}
	return memory.Record{}, false, nil
}

// Search matches query case-insensitively against content and tags.
func (s *RedisStore) Search(ctx context.Context, query string, scopes ...memory.Scope) ([]memory.SearchHit, error) {
	needle := strings.ToLower(query)
	var hits []memory.SearchHit
	for _, scope := range scopeList(scopes) {
		records, err := s.loadScope(ctx, scope)
		if err != nil {
			return nil, err
		}
		for _, key := range sortedKeys(records) {
			rec := records[key]
			if matches(rec, needle) {
				hits = append(hits, memory.SearchHit{
					Key:     key,
					Scope:   scope,
					Content: memory.TruncateContent(rec.Content),
					Tags:    rec.Tags,
				})
			}
		}
	}
	return hits, nil
}

// All returns every record grouped by scope.
func (s *RedisStore) All(ctx context.Context, scopes ...memory.Scope) (map[memory.Scope]map[string]memory.Record, error) {
	out := make(map[memory.Scope]map[string]memory.Record)
	for _, scope := range scopeList(scopes) {
		records, err := s.loadScope(ctx, scope)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			out[scope] = records
		}
	}
	return out, nil
}

// Clear deletes exactly that scope's hash.
func (s *RedisStore) Clear(ctx context.Context, scope memory.Scope) error {
	if !scope.Valid() {
		return fmt.Errorf("%w: %s", memory.ErrInvalidScope, scope)
	}
	return s.client.Del(ctx, s.scopeKey(scope)).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) loadScope(ctx context.Context, scope memory.Scope) (map[string]memory.Record, error) {
	raw, err := s.client.HGetAll(ctx, s.scopeKey(scope)).Result()
	if err != nil {
		return nil, err
	}
	records := make(map[string]memory.Record, len(raw))
	for key, data := range raw {
		var rec memory.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		records[key] = rec
	}
	return records, nil
}

var _ memory.Store = (*RedisStore)(nil)
