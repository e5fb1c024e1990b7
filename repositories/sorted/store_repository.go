package sorted

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/itemstore/codec"
	"github.com/dmitrijs2005/itemstore/logging"
	"github.com/dmitrijs2005/itemstore/models"
	"github.com/dmitrijs2005/itemstore/score"
	"github.com/dmitrijs2005/itemstore/store"
)

const (
	indexPrefix = "items:"
	dataPrefix  = "items-data:"
)

// StoreRepository implements Repository over a store.Store.
type StoreRepository[T any] struct {
	name     string
	indexKey string
	dataKey  string
	store    store.Store
	codec    codec.Codec[T]
	gen      *score.Generator
	log      logging.Logger
}

var _ Repository[any] = (*StoreRepository[any])(nil)

// New creates a repository named name on top of s. Without options it uses
// the CBOR codec, a discarding logger and its own score generator.
func New[T any](name string, s store.Store, opts ...Option) (*StoreRepository[T], error) {
	if name == "" || strings.Contains(name, ":") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if s == nil {
		return nil, fmt.Errorf("sorted: store cannot be nil")
	}

	cfg := config{}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	c := codec.Default[T]()
	if cfg.codec != nil {
		typed, ok := cfg.codec.(codec.Codec[T])
		if !ok {
			return nil, fmt.Errorf("sorted: codec type %T does not match repository item type", cfg.codec)
		}
		c = typed
	}
	if cfg.logger == nil {
		cfg.logger = logging.Discard()
	}
	if cfg.gen == nil {
		cfg.gen = score.New()
	}

	return &StoreRepository[T]{
		name:     name,
		indexKey: indexPrefix + name,
		dataKey:  dataPrefix + name,
		store:    s,
		codec:    c,
		gen:      cfg.gen,
		log:      cfg.logger.With("repository", name),
	}, nil
}

// Name returns the repository namespace.
func (r *StoreRepository[T]) Name() string {
	return r.name
}

func (r *StoreRepository[T]) Add(ctx context.Context, item models.Item[T]) (models.SortedItem[T], error) {
	return r.Set(ctx, item)
}

// Set removes any previous index entry for item.ID and writes the payload and
// the new index entry in one pipelined batch.
func (r *StoreRepository[T]) Set(ctx context.Context, item models.Item[T]) (models.SortedItem[T], error) {
	if item.ID == "" {
		return models.SortedItem[T]{}, ErrInvalidItem
	}
	sc, err := r.gen.Next()
	if err != nil {
		return models.SortedItem[T]{}, fmt.Errorf("failed to generate score: %w", err)
	}
	data, err := r.codec.Marshal(item)
	if err != nil {
		return models.SortedItem[T]{}, fmt.Errorf("failed to encode item %s: %w", item.ID, err)
	}

	err = store.WithBatch(ctx, r.store, func(b store.Batch) error {
		b.ZRem(r.indexKey, item.ID)
		b.HSet(r.dataKey, item.ID, data)
		b.ZAdd(r.indexKey, float64(sc), item.ID)
		return nil
	})
	if err != nil {
		return models.SortedItem[T]{}, fmt.Errorf("failed to store item %s: %w", item.ID, err)
	}

	r.log.Debug(ctx, "item stored", "id", item.ID, "score", sc, "size", len(data))
	return models.SortedItem[T]{Item: item, Score: sc}, nil
}

// UpdateByID overwrites the payload only; the index entry is untouched. An
// item deleted between the lookup and the write comes back as a payload
// without an index entry.
func (r *StoreRepository[T]) UpdateByID(ctx context.Context, id string, data T) (bool, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}

	encoded, err := r.codec.Marshal(models.Item[T]{ID: id, Data: data})
	if err != nil {
		return false, fmt.Errorf("failed to encode item %s: %w", id, err)
	}
	if err := r.store.HSet(ctx, r.dataKey, id, encoded); err != nil {
		return false, fmt.Errorf("failed to update item %s: %w", id, err)
	}

	r.log.Debug(ctx, "item updated", "id", id, "size", len(encoded))
	return true, nil
}

func (r *StoreRepository[T]) GetByID(ctx context.Context, id string) (*models.Item[T], error) {
	if id == "" {
		return nil, nil
	}
	data, ok, err := r.store.HGet(ctx, r.dataKey, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	if !ok {
		return nil, nil
	}
	item, err := r.codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode item %s: %w", id, err)
	}
	return item, nil
}

func (r *StoreRepository[T]) GetAll(ctx context.Context) ([]models.Item[T], error) {
	return r.byRank(ctx, 0, -1)
}

// GetPaginated returns page (1-based) of pageSize items. Count is the index
// cardinality, or 0 when the page is beyond the end.
func (r *StoreRepository[T]) GetPaginated(ctx context.Context, page, pageSize int64) (models.Page[T], error) {
	start, end, ok, err := pageRange(page, pageSize)
	if err != nil {
		return models.Page[T]{}, err
	}
	if !ok {
		return models.Page[T]{Items: []models.Item[T]{}, Count: 0}, nil
	}
	ids, err := r.store.ZRange(ctx, r.indexKey, start, end)
	if err != nil {
		return models.Page[T]{}, fmt.Errorf("failed to read index: %w", err)
	}
	if len(ids) == 0 {
		return models.Page[T]{Items: []models.Item[T]{}, Count: 0}, nil
	}

	items, err := r.load(ctx, ids)
	if err != nil {
		return models.Page[T]{}, err
	}
	count, err := r.Count(ctx)
	if err != nil {
		return models.Page[T]{}, err
	}
	return models.Page[T]{Items: items, Count: count}, nil
}

func (r *StoreRepository[T]) GetItemScoreByID(ctx context.Context, id string) (int64, bool, error) {
	sc, ok, err := r.store.ZScore(ctx, r.indexKey, id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get score of %s: %w", id, err)
	}
	if !ok {
		return 0, false, nil
	}
	return int64(sc), true, nil
}

// GetItemsByScore returns items with min <= score <= max.
func (r *StoreRepository[T]) GetItemsByScore(ctx context.Context, min, max int64) ([]models.Item[T], error) {
	return r.byScore(ctx, store.Between(float64(min), float64(max)))
}

// GetItemsBetween returns items stored between from and to, inclusive, as
// far as the clock of the writing generator can tell.
func (r *StoreRepository[T]) GetItemsBetween(ctx context.Context, from, to time.Time) ([]models.Item[T], error) {
	min, max := score.Bounds(from, to)
	return r.GetItemsByScore(ctx, min, max)
}

func (r *StoreRepository[T]) GetFirstNItems(ctx context.Context, n int64) ([]models.Item[T], error) {
	if n <= 0 {
		return []models.Item[T]{}, nil
	}
	return r.byRank(ctx, 0, n-1)
}

func (r *StoreRepository[T]) GetLastNItems(ctx context.Context, n int64) ([]models.Item[T], error) {
	if n <= 0 {
		return []models.Item[T]{}, nil
	}
	return r.byRank(ctx, -n, -1)
}

func (r *StoreRepository[T]) GetItemsInRange(ctx context.Context, start, end int64) ([]models.Item[T], error) {
	return r.byRank(ctx, start, end)
}

// ExistsInRange reports whether any index entry has min <= score <= max
// without fetching payloads.
func (r *StoreRepository[T]) ExistsInRange(ctx context.Context, min, max int64) (bool, error) {
	rng := store.Between(float64(min), float64(max))
	rng.Count = 1
	ids, err := r.store.ZRangeByScore(ctx, r.indexKey, rng)
	if err != nil {
		return false, fmt.Errorf("failed to read index: %w", err)
	}
	return len(ids) > 0, nil
}

// GetNextNItemsGreaterThanScore returns up to n items with a score strictly
// greater than sc.
func (r *StoreRepository[T]) GetNextNItemsGreaterThanScore(ctx context.Context, sc, n int64) ([]models.Item[T], error) {
	if n <= 0 {
		return []models.Item[T]{}, nil
	}
	return r.byScore(ctx, store.Above(float64(sc), n))
}

// HasItem checks the payload hash, which is authoritative for presence.
func (r *StoreRepository[T]) HasItem(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.HExists(ctx, r.dataKey, id)
	if err != nil {
		return false, fmt.Errorf("failed to check item %s: %w", id, err)
	}
	return ok, nil
}

func (r *StoreRepository[T]) Count(ctx context.Context) (int64, error) {
	n, err := r.store.ZCard(ctx, r.indexKey)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

// DeletePage removes the items getPaginated would return for the same
// arguments and reports how many index entries it targeted.
func (r *StoreRepository[T]) DeletePage(ctx context.Context, page, pageSize int64) (int, error) {
	start, end, ok, err := pageRange(page, pageSize)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	ids, err := r.store.ZRange(ctx, r.indexKey, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to read index: %w", err)
	}
	if err := r.remove(ctx, ids...); err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		r.log.Debug(ctx, "page deleted", "page", page, "page_size", pageSize, "deleted", len(ids))
	}
	return len(ids), nil
}

// DeleteByID is a no-op for an unknown id.
func (r *StoreRepository[T]) DeleteByID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := r.remove(ctx, id); err != nil {
		return err
	}
	r.log.Debug(ctx, "item deleted", "id", id)
	return nil
}

// DeleteAll drops both keys. Each key gets its own DEL so the batch works on
// a cluster where the two keys hash to different slots.
func (r *StoreRepository[T]) DeleteAll(ctx context.Context) error {
	err := store.WithBatch(ctx, r.store, func(b store.Batch) error {
		b.Del(r.dataKey)
		b.Del(r.indexKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete all items: %w", err)
	}
	r.log.Debug(ctx, "all items deleted")
	return nil
}

// PruneOrphans removes index entries whose payload is missing, as left by a
// partially applied write, and returns how many it removed.
func (r *StoreRepository[T]) PruneOrphans(ctx context.Context) (int, error) {
	ids, err := r.store.ZRange(ctx, r.indexKey, 0, -1)
	if err != nil {
		return 0, fmt.Errorf("failed to read index: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	values, err := r.store.HMGet(ctx, r.dataKey, ids...)
	if err != nil {
		return 0, fmt.Errorf("failed to read items: %w", err)
	}

	var orphans []string
	for i, v := range values {
		if v == nil {
			orphans = append(orphans, ids[i])
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	err = store.WithBatch(ctx, r.store, func(b store.Batch) error {
		b.ZRem(r.indexKey, orphans...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune index: %w", err)
	}
	r.log.Info(ctx, "orphaned index entries pruned", "count", len(orphans))
	return len(orphans), nil
}

func (r *StoreRepository[T]) remove(ctx context.Context, ids ...string) error {
	err := store.WithBatch(ctx, r.store, func(b store.Batch) error {
		if len(ids) == 0 {
			return nil
		}
		b.ZRem(r.indexKey, ids...)
		b.HDel(r.dataKey, ids...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	return nil
}

func (r *StoreRepository[T]) byRank(ctx context.Context, start, end int64) ([]models.Item[T], error) {
	ids, err := r.store.ZRange(ctx, r.indexKey, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return r.load(ctx, ids)
}

func (r *StoreRepository[T]) byScore(ctx context.Context, rng store.ScoreRange) ([]models.Item[T], error) {
	ids, err := r.store.ZRangeByScore(ctx, r.indexKey, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return r.load(ctx, ids)
}

// load fetches and decodes payloads for ids in order. Ids without a payload
// are skipped and logged.
func (r *StoreRepository[T]) load(ctx context.Context, ids []string) ([]models.Item[T], error) {
	items := make([]models.Item[T], 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	values, err := r.store.HMGet(ctx, r.dataKey, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	for i, v := range values {
		if v == nil {
			r.log.Warn(ctx, "index entry without payload", "id", ids[i])
			continue
		}
		item, err := r.codec.Unmarshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", ids[i], err)
		}
		if item == nil {
			r.log.Warn(ctx, "index entry with empty payload", "id", ids[i])
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

// pageRange converts a 1-based page into an inclusive rank range. The bool is
// false when the page starts past any rank the index can hold.
func pageRange(page, pageSize int64) (int64, int64, bool, error) {
	start, end, valid := models.PageBounds(page, pageSize)
	if !valid {
		return 0, 0, false, ErrInvalidPage
	}
	return start, end, start != models.UnreachableRank, nil
}
