package items

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/itemstore/codec"
	"github.com/dmitrijs2005/itemstore/models"
	"github.com/dmitrijs2005/itemstore/store"
	"github.com/dmitrijs2005/itemstore/store/memstore"
	"github.com/dmitrijs2005/itemstore/store/redisstore"
)

// expiringStore is a store whose clock tests can move forward.
type expiringStore struct {
	store.Strings
	advance func(d time.Duration)
}

type memClock struct{ now time.Time }

func (c *memClock) Now() time.Time { return c.now }

func backends() map[string]func(t *testing.T) expiringStore {
	return map[string]func(t *testing.T) expiringStore{
		"redis": func(t *testing.T) expiringStore {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
			t.Cleanup(func() { _ = client.Close() })
			return expiringStore{Strings: redisstore.New(client), advance: mr.FastForward}
		},
		"memory": func(t *testing.T) expiringStore {
			clock := &memClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
			return expiringStore{
				Strings: memstore.New(memstore.WithClock(clock.Now)),
				advance: func(d time.Duration) { clock.now = clock.now.Add(d) },
			}
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s expiringStore)) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t))
		})
	}
}

func newRepo(t *testing.T, s store.Strings, name string) *StoreRepository[string] {
	t.Helper()
	r, err := New[string](name, s)
	require.NoError(t, err)
	return r
}

func seed(t *testing.T, r *StoreRepository[string], n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("test%d", i)
		require.NoError(t, r.Set(context.Background(), models.Item[string]{ID: id, Data: id}, 0))
	}
}

func TestSetAndGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s expiringStore) {
		ctx := context.Background()
		r := newRepo(t, s, "repo")

		item := models.Item[string]{ID: "test", Data: "test"}
		require.NoError(t, r.Set(ctx, item, 0))

		got, err := r.GetByID(ctx, "test")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, item, *got)

		missing, err := r.GetByID(ctx, "not-found")
		require.NoError(t, err)
		assert.Nil(t, missing)

		require.ErrorIs(t, r.Set(ctx, models.Item[string]{}, 0), ErrInvalidItem)
	})
}

func TestSet_Expiration(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s expiringStore) {
		ctx := context.Background()
		r := newRepo(t, s, "repo")

		require.NoError(t, r.Set(ctx, models.Item[string]{ID: "expiring-item", Data: "bar"}, time.Second))
		require.NoError(t, r.Set(ctx, models.Item[string]{ID: "keeper", Data: "baz"}, 0))

		s.advance(1500 * time.Millisecond)

		got, err := r.GetByID(ctx, "expiring-item")
		require.NoError(t, err)
		assert.Nil(t, got)

		count, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGetAll(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s expiringStore) {
		ctx := context.Background()
		r := newRepo(t, s, "repo")
		seed(t, r, 3)

		all, err := r.GetAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.Item[string]{
			{ID: "test1", Data: "test1"},
			{ID: "test2", Data: "test2"},
			{ID: "test3", Data: "test3"},
		}, all)
	})
}

func TestGetPaginated(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s expiringStore) {
		ctx := context.Background()
		r := newRepo(t, s, "repo")
		seed(t, r, 7)

		var seen []string
		for page, want := range map[int64]int{1: 3, 2: 3, 3: 1} {
			got, err := r.GetPaginated(ctx, page, 3)
			require.NoError(t, err)
			assert.Len(t, got.Items, want, "page %d", page)
			assert.Equal(t, int64(7), got.Count)
			for _, it := range got.Items {
				seen = append(seen, it.ID)
			}
		}
		assert.ElementsMatch(t, []string{"test1", "test2", "test3", "test4", "test5", "test6", "test7"}, seen)

		beyond, err := r.GetPaginated(ctx, 4, 3)
		require.NoError(t, err)
		assert.Empty(t, beyond.Items)
		assert.Zero(t, beyond.Count)

		_, err = r.GetPaginated(ctx, 0, 3)
		require.ErrorIs(t, err, ErrInvalidPage)
	})
}

func TestGetPaginated_HugePageIsBeyondTheEnd(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s expiringStore) {
		ctx := context.Background()
		r := newRepo(t, s, "repo")
		seed(t, r, 3)

		for _, tc := range []struct{ page, size int64 }{
			{1<<62 + 1, 2},
			{math.MaxInt64, 2},
			{2, math.MaxInt64},
		} {
			got, err := r.GetPaginated(ctx, tc.page, tc.size)
			require.NoError(t, err)
			assert.Empty(t, got.Items, "page %d size %d", tc.page, tc.size)
			assert.Zero(t, got.Count)
		}

		whole, err := r.GetPaginated(ctx, 1, math.MaxInt64)
		require.NoError(t, err)
		assert.Len(t, whole.Items, 3)
		assert.Equal(t, int64(3), whole.Count)
	})
}

func TestHasItemAndDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s expiringStore) {
		ctx := context.Background()
		r := newRepo(t, s, "repo")
		require.NoError(t, r.Set(ctx, models.Item[string]{ID: "test", Data: "test"}, 0))

		ok, err := r.HasItem(ctx, "test")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.HasItem(ctx, "not-found")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, r.DeleteByID(ctx, "test"))
		require.NoError(t, r.DeleteByID(ctx, "test"))

		all, err := r.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestDeleteAll(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s expiringStore) {
		ctx := context.Background()
		r := newRepo(t, s, "repo")
		other := newRepo(t, s, "repo2")
		seed(t, r, 4)
		seed(t, other, 2)

		require.NoError(t, r.DeleteAll(ctx))
		require.NoError(t, r.DeleteAll(ctx))

		count, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		count, err = other.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count, "other namespaces are untouched")
	})
}

func TestNameWithGlobCharacters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s expiringStore) {
		ctx := context.Background()
		star := newRepo(t, s, "a*")
		plain := newRepo(t, s, "ab")
		seed(t, star, 1)
		seed(t, plain, 2)

		count, err := star.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, star.DeleteAll(ctx))
		count, err = plain.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestJSONCodecReadsForeignValues(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.Set(ctx, "items:legacy:test1", []byte(`{"id":"test1","data":"test1"}`), 0))

	r, err := New[string]("legacy", s, WithCodec[string](codec.JSON[string]{}))
	require.NoError(t, err)

	got, err := r.GetByID(ctx, "test1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "test1", got.Data)
}

func TestNew_Validation(t *testing.T) {
	s := memstore.New()
	_, err := New[string]("", s)
	require.ErrorIs(t, err, ErrInvalidName)
	_, err = New[string]("a:b", s)
	require.ErrorIs(t, err, ErrInvalidName)
	_, err = New[string]("x", nil)
	require.Error(t, err)
	_, err = New[string]("x", s, WithCodec[int](codec.CBOR[int]{}))
	require.Error(t, err)
	_, err = New[string]("x", s, WithLogger(nil))
	require.Error(t, err)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `items:a\*b\?\[c\]:`, escapeGlob("items:a*b?[c]:"))
	assert.Equal(t, "items:plain:", escapeGlob("items:plain:"))
}

func TestStoreOutageIsUnavailable(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	r := newRepo(t, redisstore.New(client), "repo")
	mr.Close()

	require.ErrorIs(t, r.Set(ctx, models.Item[string]{ID: "a", Data: "a"}, 0), store.ErrUnavailable)
	_, err := r.GetAll(ctx)
	require.ErrorIs(t, err, store.ErrUnavailable)
}
