package codec

import (
	"encoding/json"

	"github.com/dmitrijs2005/itemstore/models"
)

// JSON encodes items as {"id":...,"data":...}. Use it to read and write
// collections that other clients store as JSON text.
type JSON[T any] struct{}

func (JSON[T]) Marshal(item models.Item[T]) ([]byte, error) {
	return json.Marshal(item)
}

func (JSON[T]) Unmarshal(data []byte) (*models.Item[T], error) {
	if len(data) == 0 {
		return nil, nil
	}
	var item models.Item[T]
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, decodeErr(err)
	}
	return &item, nil
}
