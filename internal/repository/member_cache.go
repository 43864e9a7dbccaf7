package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/member-registry/internal/domain"
)

const (
	memberListKey   = "members:list"
	memberKeyPrefix = "member:"
)

// MemberCache is a read-through cache for directory lookups. All methods are
// nil-safe so the service degrades to direct repository reads when Redis is
// not configured.
type MemberCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMemberCache wraps a redis client with the configured entry TTL.
func NewMemberCache(client *redis.Client, ttl time.Duration) *MemberCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &MemberCache{client: client, ttl: ttl}
}

// GetList returns the cached directory listing, or false on miss or error.
func (c *MemberCache) GetList(ctx context.Context) ([]*domain.Member, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, memberListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var members []*domain.Member
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, false
	}
	return members, true
}

// SetList stores the directory listing.
func (c *MemberCache) SetList(ctx context.Context, members []*domain.Member) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, memberListKey, raw, c.ttl).Err()
}

// GetByID returns a cached member, or false on miss or error.
func (c *MemberCache) GetByID(ctx context.Context, id string) (*domain.Member, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, memberKeyPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var member domain.Member
	if err := json.Unmarshal(raw, &member); err != nil {
		return nil, false
	}
	return &member, true
}

// Set stores a single member.
func (c *MemberCache) Set(ctx context.Context, member *domain.Member) {
	if c == nil || member == nil {
		return
	}
	raw, err := json.Marshal(member)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, memberKeyPrefix+member.ID, raw, c.ttl).Err()
}

// Invalidate drops the listing and, when id is non-empty, the member entry.
// Any write to the directory goes through here.
func (c *MemberCache) Invalidate(ctx context.Context, id string) {
	if c == nil {
		return
	}
	keys := []string{memberListKey}
	if id != "" {
		keys = append(keys, memberKeyPrefix+id)
	}
	_ = c.client.Del(ctx, keys...).Err()
}
