package types

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// RawCBOR is CBOR encoded data which is decoded lazily, ie command attributes.
type RawCBOR = cbor.RawMessage

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(fmt.Errorf("initializing CBOR encoder: %w", err))
	}
	if decMode, err = (cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}).DecMode(); err != nil {
		panic(fmt.Errorf("initializing CBOR decoder: %w", err))
	}
}

// Encode returns deterministic CBOR encoding of v.
func Encode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Decode decodes CBOR data into v, unknown struct fields are rejected.
func Decode(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
