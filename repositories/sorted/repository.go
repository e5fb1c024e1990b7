package sorted

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/itemstore/models"
)

var (
	// ErrInvalidPage is returned for a page or page size below 1.
	ErrInvalidPage = errors.New("sorted: page and page size must be positive")
	// ErrInvalidItem is returned for an item without an ID.
	ErrInvalidItem = errors.New("sorted: item id cannot be empty")
	// ErrInvalidName is returned for an empty repository name or one that
	// contains ':', which would let its keys match another repository's.
	ErrInvalidName = errors.New("sorted: repository name must be non-empty and free of ':'")
)

// Repository is a time-ordered collection of items. Results are always in
// ascending score order; rank ranges are 0-based and inclusive, negative
// ranks count from the end. Lookups of missing items return nil, false or an
// empty slice, never an error.
type Repository[T any] interface {
	// Set stores item under a fresh score. Storing an existing ID moves it
	// to the end of the order.
	Set(ctx context.Context, item models.Item[T]) (models.SortedItem[T], error)
	Add(ctx context.Context, item models.Item[T]) (models.SortedItem[T], error)
	// UpdateByID replaces the payload of an existing item and keeps its score.
	UpdateByID(ctx context.Context, id string, data T) (bool, error)

	GetByID(ctx context.Context, id string) (*models.Item[T], error)
	GetAll(ctx context.Context) ([]models.Item[T], error)
	GetPaginated(ctx context.Context, page, pageSize int64) (models.Page[T], error)
	GetItemScoreByID(ctx context.Context, id string) (int64, bool, error)
	GetItemsByScore(ctx context.Context, min, max int64) ([]models.Item[T], error)
	GetItemsBetween(ctx context.Context, from, to time.Time) ([]models.Item[T], error)
	GetFirstNItems(ctx context.Context, n int64) ([]models.Item[T], error)
	GetLastNItems(ctx context.Context, n int64) ([]models.Item[T], error)
	GetItemsInRange(ctx context.Context, start, end int64) ([]models.Item[T], error)
	ExistsInRange(ctx context.Context, min, max int64) (bool, error)
	GetNextNItemsGreaterThanScore(ctx context.Context, score, n int64) ([]models.Item[T], error)
	HasItem(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)

	DeletePage(ctx context.Context, page, pageSize int64) (int, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	// PruneOrphans removes index entries that have no payload.
	PruneOrphans(ctx context.Context) (int, error)
}
