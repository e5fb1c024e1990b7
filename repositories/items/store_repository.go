package items

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/itemstore/codec"
	"github.com/dmitrijs2005/itemstore/logging"
	"github.com/dmitrijs2005/itemstore/models"
	"github.com/dmitrijs2005/itemstore/store"
)

// StoreRepository implements Repository over store.Strings.
type StoreRepository[T any] struct {
	name    string
	prefix  string
	pattern string
	store   store.Strings
	codec   codec.Codec[T]
	log     logging.Logger
}

var _ Repository[any] = (*StoreRepository[any])(nil)

// New creates a repository named name on top of s.
func New[T any](name string, s store.Strings, opts ...Option) (*StoreRepository[T], error) {
	if name == "" || strings.Contains(name, ":") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if s == nil {
		return nil, fmt.Errorf("items: store cannot be nil")
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
			return nil, fmt.Errorf("items: codec type %T does not match repository item type", cfg.codec)
		}
		c = typed
	}
	if cfg.logger == nil {
		cfg.logger = logging.Discard()
	}

	prefix := "items:" + name + ":"
	return &StoreRepository[T]{
		name:    name,
		prefix:  prefix,
		pattern: escapeGlob(prefix) + "*",
		store:   s,
		codec:   c,
		log:     cfg.logger.With("repository", name),
	}, nil
}

func (r *StoreRepository[T]) key(id string) string {
	return r.prefix + id
}

func (r *StoreRepository[T]) Set(ctx context.Context, item models.Item[T], ttl time.Duration) error {
	if item.ID == "" {
		return ErrInvalidItem
	}
	data, err := r.codec.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode item %s: %w", item.ID, err)
	}
	if err := r.store.Set(ctx, r.key(item.ID), data, ttl); err != nil {
		return fmt.Errorf("failed to store item %s: %w", item.ID, err)
	}
	r.log.Debug(ctx, "item stored", "id", item.ID, "ttl", ttl)
	return nil
}

func (r *StoreRepository[T]) GetByID(ctx context.Context, id string) (*models.Item[T], error) {
	if id == "" {
		return nil, nil
	}
	data, ok, err := r.store.Get(ctx, r.key(id))
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
	keys, err := r.keys(ctx)
	if err != nil {
		return nil, err
	}
	return r.load(ctx, keys)
}

// GetPaginated pages over the sorted key list. Count is the number of keys,
// or 0 when the page is beyond the end.
func (r *StoreRepository[T]) GetPaginated(ctx context.Context, page, pageSize int64) (models.Page[T], error) {
	start, end, ok := models.PageBounds(page, pageSize)
	if !ok {
		return models.Page[T]{}, ErrInvalidPage
	}
	keys, err := r.keys(ctx)
	if err != nil {
		return models.Page[T]{}, err
	}

	count := int64(len(keys))
	if start >= count {
		return models.Page[T]{Items: []models.Item[T]{}, Count: 0}, nil
	}
	end = min(end, count-1)

	items, err := r.load(ctx, keys[start:end+1])
	if err != nil {
		return models.Page[T]{}, err
	}
	return models.Page[T]{Items: items, Count: count}, nil
}

func (r *StoreRepository[T]) HasItem(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	ok, err := r.store.Exists(ctx, r.key(id))
	if err != nil {
		return false, fmt.Errorf("failed to check item %s: %w", id, err)
	}
	return ok, nil
}

func (r *StoreRepository[T]) DeleteByID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	r.log.Debug(ctx, "item deleted", "id", id)
	return nil
}

func (r *StoreRepository[T]) DeleteAll(ctx context.Context) error {
	keys, err := r.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	n, err := r.store.Del(ctx, keys...)
	if err != nil {
		return fmt.Errorf("failed to delete all items: %w", err)
	}
	r.log.Debug(ctx, "all items deleted", "deleted", n)
	return nil
}

func (r *StoreRepository[T]) Count(ctx context.Context) (int64, error) {
	keys, err := r.keys(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

// keys returns this repository's keys in lexicographic order.
func (r *StoreRepository[T]) keys(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, r.pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// load fetches and decodes keys in order, skipping keys that expired or were
// deleted after they were listed.
func (r *StoreRepository[T]) load(ctx context.Context, keys []string) ([]models.Item[T], error) {
	items := make([]models.Item[T], 0, len(keys))
	if len(keys) == 0 {
		return items, nil
	}
	values, err := r.store.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		item, err := r.codec.Unmarshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", keys[i], err)
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

// escapeGlob quotes the characters KEYS patterns treat specially.
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, c := range s {
		if strings.ContainsRune(`*?[]\^`, c) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
