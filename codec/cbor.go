package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/dmitrijs2005/itemstore/models"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error

	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	// Untyped payloads decode to the same shapes encoding/json produces,
	// except that integers stay integers.
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// CBOR encodes items as RFC 8949 CBOR using core deterministic encoding.
// It is the default codec: compact, schemaless and round-trips nested values.
type CBOR[T any] struct{}

func (CBOR[T]) Marshal(item models.Item[T]) ([]byte, error) {
	return cborEnc.Marshal(item)
}

func (CBOR[T]) Unmarshal(data []byte) (*models.Item[T], error) {
	if len(data) == 0 {
		return nil, nil
	}
	var item models.Item[T]
	if err := cborDec.Unmarshal(data, &item); err != nil {
		return nil, decodeErr(err)
	}
	return &item, nil
}
