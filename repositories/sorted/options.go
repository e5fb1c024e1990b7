package sorted

import (
	"fmt"

	"github.com/dmitrijs2005/itemstore/codec"
	"github.com/dmitrijs2005/itemstore/logging"
	"github.com/dmitrijs2005/itemstore/score"
)

// Option configures a repository on creation.
type Option func(*config) error

type config struct {
	codec  any
	logger logging.Logger
	gen    *score.Generator
}

// WithCodec sets the codec used for stored payloads. Its type parameter must
// match the repository's.
func WithCodec[T any](c codec.Codec[T]) Option {
	return func(cfg *config) error {
		if c == nil {
			return fmt.Errorf("sorted: codec cannot be nil")
		}
		cfg.codec = c
		return nil
	}
}

// WithLogger sets the logger. Mutations are logged at debug level.
func WithLogger(l logging.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return fmt.Errorf("sorted: logger cannot be nil")
		}
		cfg.logger = l
		return nil
	}
}

// WithGenerator sets the score generator. Sharing one generator between
// repositories keeps their scores mutually ordered.
func WithGenerator(g *score.Generator) Option {
	return func(cfg *config) error {
		if g == nil {
			return fmt.Errorf("sorted: generator cannot be nil")
		}
		cfg.gen = g
		return nil
	}
}
