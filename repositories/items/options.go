package items

import (
	"fmt"

	"github.com/dmitrijs2005/itemstore/codec"
	"github.com/dmitrijs2005/itemstore/logging"
)

// Option configures a repository on creation.
type Option func(*config) error

type config struct {
	codec  any
	logger logging.Logger
}

// WithCodec sets the codec used for stored values. Use codec.JSON to read
// and write values shared with JSON producers.
func WithCodec[T any](c codec.Codec[T]) Option {
	return func(cfg *config) error {
		if c == nil {
			return fmt.Errorf("items: codec cannot be nil")
		}
		cfg.codec = c
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return fmt.Errorf("items: logger cannot be nil")
		}
		cfg.logger = l
		return nil
	}
}
