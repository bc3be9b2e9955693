package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	radix "github.com/mediocregopher/radix/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/config"
)

func testJWT() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", TTL: time.Hour}
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, radix.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	pool, err := radix.NewPool("tcp", mr.Addr(), 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return mr, pool
}

func TestGenerateAndParseToken(t *testing.T) {
	cfg := testJWT()
	tok, err := GenerateToken(cfg, &Identity{ID: 7, Name: "Ada", Email: "ada@example.com", IsAdmin: true})
	require.NoError(t, err)

	claims, err := ParseToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, &Identity{ID: 7, Name: "Ada", Email: "ada@example.com", IsAdmin: true}, claims.Identity())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	cfg := testJWT()
	tok, err := GenerateToken(cfg, &Identity{ID: 1})
	require.NoError(t, err)

	_, err = ParseToken(&config.JWTConfig{Secret: "other"}, tok)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	raw, err := expired.SignedString([]byte(cfg.Secret))
	require.NoError(t, err)
	_, err = ParseToken(cfg, raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGateAuthenticate(t *testing.T) {
	gate := NewGate(testJWT(), nil)
	ctx := context.Background()
	tok, err := gate.Issue(&Identity{ID: 3, Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	id, err := gate.Authenticate(ctx, "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id.ID)

	id, err = gate.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "Bob", id.Name)

	_, err = gate.Authenticate(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, MsgNoToken, apperr.MessageOf(err))

	_, err = gate.Authenticate(ctx, "Bearer not-a-jwt")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, MsgInvalidToken, apperr.MessageOf(err))
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(&Identity{IsAdmin: true}))

	err := RequireAdmin(&Identity{IsAdmin: false})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.True(t, apperr.Is(RequireAdmin(nil), apperr.KindForbidden))
}

func TestTokenCacheRoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewTokenCache(client, NewConsistentHashRing([]string{"n1", "n2"}, 10), time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Lookup(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	expires := time.Now().Add(30 * time.Second)
	require.NoError(t, cache.Remember(ctx, "tok", &Identity{ID: 9, Name: "Ada", IsAdmin: true}, expires))
	got, ok, err := cache.Lookup(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(9), got.ID)
	assert.True(t, got.IsAdmin)

	// 存活时间被令牌剩余寿命截断
	key := cache.key("tok")
	assert.Contains(t, key, identityKeyPrefix)
	assert.LessOrEqual(t, mr.TTL(key), 30*time.Second)
	assert.Greater(t, mr.TTL(key), time.Duration(0))
}

func TestTokenCacheDropsCorruptAndExpiredEntries(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewTokenCache(client, nil, time.Minute)
	ctx := context.Background()

	key := cache.key("bad")
	require.NoError(t, mr.Set(key, "{not json"))
	_, ok, err := cache.Lookup(ctx, "bad")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(key))

	// 条目仍在 redis 中，但令牌已过期
	require.NoError(t, cache.Remember(ctx, "stale", &Identity{ID: 1}, time.Now().Add(time.Hour)))
	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, ok, err = cache.Lookup(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(cache.key("stale")))

	// 对 cache.now 而言令牌已过期，不写入
	require.NoError(t, cache.Remember(ctx, "old", &Identity{ID: 2}, time.Now().Add(time.Hour)))
	assert.False(t, mr.Exists(cache.key("old")))
}

func TestGateUsesCache(t *testing.T) {
	_, client := setupRedis(t)
	cfg := testJWT()
	gate := NewGate(cfg, NewTokenCache(client, nil, time.Minute))
	ctx := context.Background()

	tok, err := gate.Issue(&Identity{ID: 5, Name: "Cy"})
	require.NoError(t, err)
	_, err = gate.Authenticate(ctx, "Bearer "+tok)
	require.NoError(t, err)

	// 缓存命中后即使密钥轮换也能识别，直到缓存过期
	cfg.Secret = "rotated"
	id, err := gate.Authenticate(ctx, "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id.ID)
}

func TestConsistentHashRing(t *testing.T) {
	ring := NewConsistentHashRing([]string{"a", "b", "c"}, 20)
	assert.Equal(t, []string{"a", "b", "c"}, ring.Nodes())

	node := ring.GetNode("some-token")
	assert.Contains(t, []string{"a", "b", "c"}, node)
	assert.Equal(t, node, ring.GetNode("some-token"))

	ring.Add("a", "a")
	assert.Equal(t, []string{"a", "b", "c"}, ring.Nodes())

	empty := NewConsistentHashRing(nil, 0)
	assert.Equal(t, "auth-node-default", empty.GetNode("x"))
}

func TestConsistentHashRingSetNodes(t *testing.T) {
	ring := NewConsistentHashRing([]string{"a", "b", "c"}, 20)
	keys := make([]string, 200)
	before := make(map[string]string, len(keys))
	for i := range keys {
		keys[i] = "token-" + strconv.Itoa(i)
		before[keys[i]] = ring.GetNode(keys[i])
	}

	ring.SetNodes([]string{"a", "c", "d"})
	assert.Equal(t, []string{"a", "c", "d"}, ring.Nodes())
	for _, k := range keys {
		got := ring.GetNode(k)
		assert.NotEqual(t, "b", got)
		// 只有原属下线节点或被新节点接管的键会迁移
		if before[k] != "b" && got != "d" {
			assert.Equal(t, before[k], got, k)
		}
	}

	ring.SetNodes(nil)
	assert.Equal(t, []string{"a", "c", "d"}, ring.Nodes())
}
