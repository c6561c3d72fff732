package cache

import (
	"context"
	"testing"
	"time"

	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled: true,
		Backend: "memory",
		MaxSize: 2,
		TTL:     time.Hour,
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), testCacheConfig(), config.RedisConfig{
		Addr:   mr.Addr(),
		Prefix: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestIdentificationKey(t *testing.T) {
	a := IdentificationKey("s1", []string{"h1", "h2"})
	assert.Equal(t, a, IdentificationKey("s1", []string{"h1", "h2"}))
	assert.NotEqual(t, a, IdentificationKey("s1", []string{"h2", "h1"}), "order matters")
	assert.NotEqual(t, a, IdentificationKey("s2", []string{"h1", "h2"}), "no cross-session hits")
	assert.True(t, len(a) > len(SessionPrefix("s1")))
	assert.Contains(t, a, SessionPrefix("s1"))
}

func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			m := NewManager(testCacheConfig())
			t.Cleanup(func() { _ = m.Close() })
			return m
		},
		"redis": func(t *testing.T) Store {
			s, _ := newRedisStore(t)
			return s
		},
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, common.ErrCacheMiss)

			require.NoError(t, s.Set(ctx, IdentificationKey("s1", []string{"a"}), `["eggs"]`))
			require.NoError(t, s.Set(ctx, IdentificationKey("s2", []string{"a"}), `["milk"]`))

			got, err := s.Get(ctx, IdentificationKey("s1", []string{"a"}))
			require.NoError(t, err)
			assert.Equal(t, `["eggs"]`, got)

			n, err := s.DeleteByPrefix(ctx, SessionPrefix("s1"))
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			_, err = s.Get(ctx, IdentificationKey("s1", []string{"a"}))
			assert.ErrorIs(t, err, common.ErrCacheMiss)

			got, err = s.Get(ctx, IdentificationKey("s2", []string{"a"}))
			require.NoError(t, err)
			assert.Equal(t, `["milk"]`, got)

			stats := s.GetStats()
			assert.Equal(t, name, stats["backend"])
		})
	}
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m := NewManager(testCacheConfig())
	defer m.Close()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	cfg := testCacheConfig()
	cfg.TTL = time.Millisecond
	m := NewManager(cfg)
	defer m.Close()

	require.NoError(t, m.Set(ctx, "a", "1"))
	time.Sleep(5 * time.Millisecond)

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestRedisStoreTTLAndPrefix(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v"))
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Hour, mr.TTL("test:k"))

	mr.FastForward(2 * time.Hour)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestNewDisabled(t *testing.T) {
	s, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, s)
}
