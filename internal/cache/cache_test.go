package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	IDs []uint `json:"ids"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = client.Close()
		client = nil
		mr.Close()
	})
	return mr
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "graph:7", GraphKey(7))
	assert.Equal(t, "post:3:results", ResultsKey(3))
	assert.Equal(t, "user:9", UserKey(9))
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{IDs: []uint{1, 2}}, nil
	}

	v, hit, err := Aside(ctx, GraphKey(1), time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []uint{1, 2}, v.IDs)
	assert.True(t, mr.Exists("graph:1"))

	v, hit, err = Aside(ctx, GraphKey(1), time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []uint{1, 2}, v.IDs)
	assert.Equal(t, 1, calls)

	InvalidateGraph(ctx, 1)
	assert.False(t, mr.Exists("graph:1"))
}

func TestAside_LoadErrorIsNotCached(t *testing.T) {
	mr := setupMiniredis(t)

	_, _, err := Aside(context.Background(), "k", time.Minute, func(context.Context) (payload, error) {
		return payload{}, errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("k"))
}

func TestAside_WithoutClient(t *testing.T) {
	client = nil
	v, hit, err := Aside(context.Background(), "k", time.Minute, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	Invalidate(context.Background(), "k")
}

func TestAside_CorruptEntryFallsThrough(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	v, hit, err := Aside(context.Background(), "k", time.Minute, func(context.Context) (int, error) {
		return 5, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 5, v)

	got, _ := mr.Get("k")
	assert.Equal(t, "5", got)
}

func TestInitRedis_Unreachable(t *testing.T) {
	assert.Nil(t, InitRedis("127.0.0.1:1"))
	assert.Nil(t, GetClient())
	assert.Nil(t, InitRedis("redis://%zz"))
}

func TestInitRedis_Connects(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := InitRedis("redis://" + mr.Addr())
	require.NotNil(t, c)
	defer func() {
		_ = c.Close()
		client = nil
	}()
	assert.Same(t, c, GetClient())
}
