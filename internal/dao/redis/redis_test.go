package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat_gateway_server/internal/dto/respond"
	"chat_gateway_server/pkg/errorx"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCacheStringAndHash(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
	v, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	_, ok, err = cache.HashGet(ctx, "user:u1", "presence")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.HashSet(ctx, "user:u1", "presence", "ONLINE"))
	v, ok, err = cache.HashGet(ctx, "user:u1", "presence")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ONLINE", v)
}

func TestRedisCacheSets(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client)
	ctx := context.Background()

	require.NoError(t, cache.AddToSet(ctx, "s", "a", "b", "c"))
	members, err := cache.GetSetMembers(ctx, "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, members)

	left, err := cache.RemoveFromSet(ctx, "s", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), left)

	require.NoError(t, cache.Delete(ctx, "s", "does-not-exist"))
	assert.False(t, mr.Exists("s"))

	members, err = cache.GetSetMembers(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRedisCacheWrapsConnectionErrors(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client)
	mr.Close()

	_, _, err := cache.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeCacheError, errorx.GetCode(err))
}

type profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func TestCachedHitSkipsProducer(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client)
	require.NoError(t, mr.Set("CACHE:ME_USER:u1", `{"id":"u1","username":"ann"}`))

	calls := 0
	got, err := Cached(context.Background(), cache, "CACHE:ME_USER:u1", time.Hour, func(context.Context) (profile, error) {
		calls++
		return profile{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, profile{ID: "u1", Username: "ann"}, got)
}

func TestCachedMissStoresWithTTL(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client)

	got, err := Cached(context.Background(), cache, "CACHE:ME_USER:u2", 6*time.Hour, func(context.Context) (profile, error) {
		return profile{ID: "u2", Username: "bob"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	stored, err := mr.Get("CACHE:ME_USER:u2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u2","username":"bob"}`, stored)
	assert.Equal(t, 6*time.Hour, mr.TTL("CACHE:ME_USER:u2"))
}

func TestCachedProducerErrorIsNotCached(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client)
	boom := errors.New("db down")

	_, err := Cached(context.Background(), cache, "k", time.Hour, func(context.Context) (profile, error) {
		return profile{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestCachedUndecodableEntryIsRecomputed(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client)
	require.NoError(t, mr.Set("k", `"just a string"`))

	calls := 0
	got, err := Cached(context.Background(), cache, "k", time.Hour, func(context.Context) (profile, error) {
		calls++
		return profile{ID: "u3"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "u3", got.ID)

	require.NoError(t, mr.Set("k", "null"))
	_, err = Cached(context.Background(), cache, "k", time.Hour, func(context.Context) (profile, error) {
		calls++
		return profile{ID: "u3"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedEmptyCollectionIsCached(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client)
	ctx := context.Background()

	calls := 0
	producer := func(context.Context) ([]profile, error) {
		calls++
		return []profile{}, nil
	}
	_, err := Cached(ctx, cache, "CACHE:U_FRNDS:u1", time.Hour, producer)
	require.NoError(t, err)
	got, err := Cached(ctx, cache, "CACHE:U_FRNDS:u1", time.Hour, producer)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	stored, _ := mr.Get("CACHE:U_FRNDS:u1")
	assert.Equal(t, "[]", stored)
}

func TestCachedWrongShapeIsRecomputed(t *testing.T) {
	cases := map[string]string{
		"empty object":   `{}`,
		"foreign object": `{"channels":[1,2]}`,
		"extra field":    `{"id":"u1","display_name":"Ann","username":"ann","presence":"ONLINE"}`,
		"empty id":       `{"id":"","display_name":"Ann","username":"ann"}`,
	}
	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			mr, client := newTestClient(t)
			cache := NewRedisCache(client)
			require.NoError(t, mr.Set("CACHE:ME_USER:u1", stored))

			calls := 0
			got, err := Cached(context.Background(), cache, "CACHE:ME_USER:u1", time.Hour, func(context.Context) (respond.Profile, error) {
				calls++
				return respond.Profile{ID: "u1", DisplayName: "Ann", Username: "ann"}, nil
			})
			require.NoError(t, err)
			assert.Equal(t, 1, calls)
			assert.Equal(t, "u1", got.ID)

			rewritten, err := mr.Get("CACHE:ME_USER:u1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":"u1","display_name":"Ann","username":"ann"}`, rewritten)
		})
	}
}

func TestCachedCollectionElementsAreValidated(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client)
	ctx := context.Background()

	require.NoError(t, mr.Set("CACHE:USERS:u1", `{"u2":{"id":"u2","display_name":"","username":"bob"}}`))
	calls := 0
	producer := func(context.Context) (map[string]respond.Profile, error) {
		calls++
		return map[string]respond.Profile{"u2": {ID: "u2", Username: "bob"}}, nil
	}
	got, err := Cached(ctx, cache, "CACHE:USERS:u1", time.Hour, producer)
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, "bob", got["u2"].Username)

	require.NoError(t, mr.Set("CACHE:USERS:u1", `{"u2":{}}`))
	_, err = Cached(ctx, cache, "CACHE:USERS:u1", time.Hour, producer)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, mr.Set("CACHE:U_FRNDS:u1", `[{"id":"r1","user_a":"u1"}]`))
	records, err := Cached(ctx, cache, "CACHE:U_FRNDS:u1", time.Hour, func(context.Context) ([]respond.FriendRecord, error) {
		calls++
		return []respond.FriendRecord{{ID: "r1", UserA: "u1", UserB: "u2"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "u2", records[0].UserB)
}

// failingStore 读写均失败
type failingStore struct {
	CacheService
}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("read failed")
}

func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("write failed")
}

func TestCachedStoreFailuresAreSwallowed(t *testing.T) {
	got, err := Cached(context.Background(), failingStore{}, "k", time.Hour, func(context.Context) (profile, error) {
		return profile{ID: "u4"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u4", got.ID)
}

func TestRedisBusDeliversAndUnsubscribes(t *testing.T) {
	_, client := newTestClient(t)
	bus := NewRedisBus(client)
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "U.u1", "F.u2")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "F.u2", []byte{0x01, 0x02}))
	select {
	case msg := <-sub.Messages():
		assert.Equal(t, []byte{0x01, 0x02}, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	require.NoError(t, sub.Unsubscribe(ctx, "U.u1", "F.u2"))
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	select {
	case _, ok := <-sub.Messages():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("messages channel not closed")
	}
}

func TestRedisBusSubscribeRequiresChannels(t *testing.T) {
	_, client := newTestClient(t)
	_, err := NewRedisBus(client).Subscribe(context.Background())
	require.Error(t, err)
	assert.Equal(t, errorx.CodeBusError, errorx.GetCode(err))
}
