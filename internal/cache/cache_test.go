package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute)

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss, "oldest entry evicted past capacity")

	val, err := c.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), val)

	require.NoError(t, c.Delete(ctx, "b", "c"))
	_, err = c.Get(ctx, "c")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, 20*time.Millisecond)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "k")
		return errors.Is(err, ErrMiss)
	}, time.Second, 10*time.Millisecond)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{name: "memory", driver: DriverMemory},
		{name: "default", driver: ""},
		{name: "none", driver: DriverNone},
		{name: "redis without client", driver: DriverRedis, wantErr: true},
		{name: "unknown", driver: "memcached", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(&config.CacheConfig{Driver: tt.driver, TTL: time.Minute, Size: 10}, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestFetchReadsThrough(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(NewMemoryCache(10, time.Minute), time.Minute)
	key := ProductKey(uuid.New())
	var calls int32

	load := func(context.Context) (*item, error) {
		atomic.AddInt32(&calls, 1)
		return &item{Name: "Mug", Price: "8.00"}, nil
	}

	first, err := Fetch(ctx, loader, key, load)
	require.NoError(t, err)
	second, err := Fetch(ctx, loader, key, load)
	require.NoError(t, err)

	assert.Equal(t, "Mug", first.Name)
	assert.Equal(t, *first, *second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	loader.Invalidate(ctx, key)
	_, err = Fetch(ctx, loader, key, load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(NewMemoryCache(10, time.Minute), time.Minute)
	boom := errors.New("boom")

	_, err := Fetch(ctx, loader, "k", func(context.Context) (*item, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	got, err := Fetch(ctx, loader, "k", func(context.Context) (*item, error) { return &item{Name: "ok"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Name)
}

func TestFetchCoalescesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(NewNoopCache(), time.Minute)
	var calls int32
	release := make(chan struct{})

	load := func(context.Context) (*item, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &item{Name: "shared"}, nil
	}

	var wg sync.WaitGroup
	results := make([]*item, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, loader, "hot", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "shared", r.Name)
	}
}
