package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

const identityKeyPrefix = "gostore:identity:"

// cachedIdentity 缓存条目，带令牌过期时间
type cachedIdentity struct {
	Identity
	Expires int64 `json:"exp"`
}

// TokenCache 缓存已验签令牌对应的身份，key 按一致性哈希分到节点前缀下
type TokenCache struct {
	redis radix.Client
	ring  *ConsistentHashRing
	ttl   time.Duration
	now   func() time.Time
}

// NewTokenCache redis 为 nil 时不缓存，鉴权照常
func NewTokenCache(redis radix.Client, ring *ConsistentHashRing, ttl time.Duration) *TokenCache {
	if ring == nil {
		ring = NewConsistentHashRing(nil, 0)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenCache{redis: redis, ring: ring, ttl: ttl, now: time.Now}
}

func (c *TokenCache) key(token string) string {
	sum := sha1.Sum([]byte(token))
	return identityKeyPrefix + c.ring.GetNode(token) + ":" + hex.EncodeToString(sum[:])
}

func (c *TokenCache) enabled() bool {
	return c != nil && c.redis != nil
}

// Lookup 命中且未过期时返回身份
func (c *TokenCache) Lookup(ctx context.Context, token string) (*Identity, bool, error) {
	if !c.enabled() {
		return nil, false, nil
	}
	key := c.key(token)
	var raw []byte
	mn := radix.MaybeNil{Rcv: &raw}
	if err := c.redis.Do(radix.Cmd(&mn, "GET", key)); err != nil {
		return nil, false, err
	}
	if mn.Nil || len(raw) == 0 {
		return nil, false, nil
	}

	var entry cachedIdentity
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Expires <= c.now().Unix() {
		// 损坏或已过期，删掉后重新验签
		_ = c.redis.Do(radix.Cmd(nil, "DEL", key))
		return nil, false, nil
	}
	id := entry.Identity
	return &id, true, nil
}

// Remember 写入身份，存活时间取 ttl 与令牌剩余寿命的较小值
func (c *TokenCache) Remember(ctx context.Context, token string, id *Identity, expires time.Time) error {
	if !c.enabled() || id == nil {
		return nil
	}
	life := c.ttl
	if left := expires.Sub(c.now()); left < life {
		life = left
	}
	secs := int64(life / time.Second)
	if secs <= 0 {
		return nil
	}
	body, err := json.Marshal(cachedIdentity{Identity: *id, Expires: expires.Unix()})
	if err != nil {
		return err
	}
	return c.redis.Do(radix.FlatCmd(nil, "SET", c.key(token), body, "EX", secs))
}
