package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadThroughCache_LoadsOnMiss(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[tokenKey, tokenValue]("tokens", DefaultExpiration, DefaultCleanupInterval)

	calls := 0
	loader := func(ctx context.Context, id uint64) (tokenValue, error) {
		calls++
		return tokenValue{ID: id, Owner: "alice"}, nil
	}

	rtc := NewReadThroughCache[tokenKey](cache, loader, false)

	got, err := rtc.Get(ctx, "token:1", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, tokenValue{ID: 1, Owner: "alice"}, got)
	assert.Equal(t, 1, calls)

	// Second read is served from the cache.
	got, err = rtc.Get(ctx, "token:1", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, tokenValue{ID: 1, Owner: "alice"}, got)
	assert.Equal(t, 1, calls)
}

func TestReadThroughCache_LoaderErrorNotCached(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[tokenKey, tokenValue]("tokens", DefaultExpiration, DefaultCleanupInterval)

	wantErr := errors.New("token not found")
	calls := 0
	loader := func(ctx context.Context, id uint64) (tokenValue, error) {
		calls++
		return tokenValue{}, wantErr
	}

	rtc := NewReadThroughCache[tokenKey](cache, loader, false)

	_, err := rtc.Get(ctx, "token:2", 2, time.Minute)
	require.ErrorIs(t, err, wantErr)

	_, err = rtc.Get(ctx, "token:2", 2, time.Minute)
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 2, calls, "errors must not be cached")
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[tokenKey, tokenValue]("tokens", DefaultExpiration, DefaultCleanupInterval)

	calls := 0
	loader := func(ctx context.Context, id uint64) (tokenValue, error) {
		calls++
		return tokenValue{ID: id, Owner: "bob"}, nil
	}

	rtc := NewReadThroughCache[tokenKey](cache, loader, true)

	for range 3 {
		_, err := rtc.Get(ctx, "token:3", 3, time.Minute)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls, "skip-cache mode always hits the loader")

	_, found := cache.Get(ctx, "token:3")
	assert.False(t, found, "skip-cache mode never writes back")
}

func TestReadThroughCache_GetWithRefresh(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[tokenKey, tokenValue]("tokens", DefaultExpiration, DefaultCleanupInterval)

	calls := 0
	loader := func(ctx context.Context, id uint64) (tokenValue, error) {
		calls++
		return tokenValue{ID: id, Owner: "carol"}, nil
	}

	rtc := NewReadThroughCache[tokenKey](cache, loader, false)

	_, err := rtc.GetWithRefresh(ctx, "token:4", 4, 40*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)
	_, err = rtc.GetWithRefresh(ctx, "token:4", 4, time.Minute)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)
	_, err = rtc.Get(ctx, "token:4", 4, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "refresh should keep the entry warm")
}
