package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplyCache guarda la respuesta enviada para un MessageSid, de modo que un
// reintento del mismo webhook devuelva el mismo texto sin volver a llamar al NLU.
type ReplyCache interface {
	Get(ctx context.Context, messageSID string) (string, bool, error)
	Put(ctx context.Context, messageSID, reply string) error
}

const memoryCachePruneThreshold = 1024

type memoryEntry struct {
	reply     string
	expiresAt time.Time
}

type memoryReplyCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryReplyCache sirve para una sola instancia; con varias réplicas usar Redis.
func NewMemoryReplyCache(ttl time.Duration) ReplyCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &memoryReplyCache{
		ttl:   ttl,
		items: make(map[string]memoryEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (c *memoryReplyCache) Get(_ context.Context, messageSID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[messageSID]
	if !ok {
		return "", false, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.items, messageSID)
		return "", false, nil
	}
	return entry.reply, true, nil
}

func (c *memoryReplyCache) Put(_ context.Context, messageSID, reply string) error {
	if strings.TrimSpace(messageSID) == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if len(c.items) >= memoryCachePruneThreshold {
		for k, e := range c.items {
			if now.After(e.expiresAt) {
				delete(c.items, k)
			}
		}
	}
	c.items[messageSID] = memoryEntry{reply: reply, expiresAt: now.Add(c.ttl)}
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisReplyCache struct {
	client  redisKV
	ttl     time.Duration
	prefix  string
	timeout time.Duration
}

func NewRedisReplyCache(client *redis.Client, ttl time.Duration) ReplyCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisReplyCache{
		client:  client,
		ttl:     ttl,
		prefix:  "sms:reply:",
		timeout: 500 * time.Millisecond,
	}
}

func (c *redisReplyCache) Get(ctx context.Context, messageSID string) (string, bool, error) {
	if strings.TrimSpace(messageSID) == "" {
		return "", false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	val, err := c.client.Get(ctx, c.prefix+messageSID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisReplyCache) Put(ctx context.Context, messageSID, reply string) error {
	if strings.TrimSpace(messageSID) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Set(ctx, c.prefix+messageSID, reply, c.ttl).Err()
}
