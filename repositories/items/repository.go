// Package items implements an unordered repository that keeps one string key
// per item, items:<name>:<id>, with optional expiration.
//
// Enumeration scans the key space by pattern, so GetAll, GetPaginated, Count
// and DeleteAll cost O(keys matched) and pages are not stable under
// concurrent writes.
//
// Names may not contain ':'. Sorted repositories share the items: key
// prefix, so a sorted repository named a:b would otherwise keep its index at
// items:a:b, inside the key space of an unordered repository named a.
package items

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/itemstore/models"
)

var (
	// ErrInvalidPage is returned for a page or page size below 1.
	ErrInvalidPage = errors.New("items: page and page size must be positive")
	// ErrInvalidItem is returned for an item without an ID.
	ErrInvalidItem = errors.New("items: item id cannot be empty")
	// ErrInvalidName is returned for an empty repository name or one that
	// contains ':', which would let its keys match another repository's.
	ErrInvalidName = errors.New("items: repository name must be non-empty and free of ':'")
)

// Repository stores items by ID without ordering.
type Repository[T any] interface {
	// Set stores item. A ttl of 0 keeps it until deleted.
	Set(ctx context.Context, item models.Item[T], ttl time.Duration) error
	GetByID(ctx context.Context, id string) (*models.Item[T], error)
	GetAll(ctx context.Context) ([]models.Item[T], error)
	GetPaginated(ctx context.Context, page, pageSize int64) (models.Page[T], error)
	HasItem(ctx context.Context, id string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
