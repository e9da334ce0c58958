package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got string
	found, err := s.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	found, err = s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", got)

	require.NoError(t, s.Delete(ctx, "k"))
	found, _ = s.Get(ctx, "k", &got)
	assert.False(t, found)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", 1, time.Hour))
	require.NoError(t, s.Set(ctx, "forever", 2, 0))

	now = now.Add(2 * time.Hour)
	var v int
	found, _ := s.Get(ctx, "k", &v)
	assert.False(t, found)
	found, _ = s.Get(ctx, "forever", &v)
	assert.True(t, found)
	assert.Equal(t, 2, v)
}

type countingSource struct {
	calls   int
	players []models.RemotePlayer
	err     error
}

func (c *countingSource) FetchPlayers(ctx context.Context) ([]models.RemotePlayer, error) {
	c.calls++
	return c.players, c.err
}

func TestCachedCatalog(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{players: []models.RemotePlayer{
		{ID: "1", Name: "Justin Jefferson", Position: models.PositionWR},
		{ID: "2", Name: "Ja'Marr Chase", Position: models.PositionWR},
	}}
	c := NewCachedCatalog(src, NewMemoryStore(), time.Hour)

	first, err := c.FetchPlayers(ctx)
	require.NoError(t, err)
	second, err := c.FetchPlayers(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first, second, "order survives the cache")

	require.NoError(t, c.Invalidate(ctx))
	_, err = c.FetchPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedCatalogSourceError(t *testing.T) {
	src := &countingSource{err: errors.New("sleeper down")}
	c := NewCachedCatalog(src, NewMemoryStore(), 0)

	_, err := c.FetchPlayers(context.Background())
	assert.Error(t, err)
	assert.Equal(t, DefaultCatalogTTL, c.ttl)
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	s := NewRedisStoreFromClient(nil, "")
	assert.Equal(t, "draftaid:cache:catalog:nfl", s.key(CatalogKey))
}
