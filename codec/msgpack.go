package codec

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dmitrijs2005/itemstore/models"
)

// Msgpack encodes items as MessagePack.
type Msgpack[T any] struct{}

func (Msgpack[T]) Marshal(item models.Item[T]) ([]byte, error) {
	return msgpack.Marshal(&item)
}

func (Msgpack[T]) Unmarshal(data []byte) (*models.Item[T], error) {
	if len(data) == 0 {
		return nil, nil
	}
	var item models.Item[T]
	if err := msgpack.Unmarshal(data, &item); err != nil {
		return nil, decodeErr(err)
	}
	return &item, nil
}
