package store

import "github.com/fxamacker/cbor/v2"

// encodeCBOR and decodeCBOR are the store's whole-record serialization,
// standing in for the original implementation's bitcode framing (see
// SPEC_FULL.md's DOMAIN STACK section). This is a layer above the
// ciphersuite package's own per-value Encode/Decode: the store treats
// every ciphersuite-encoded field as an opaque []byte and only CBOR-frames
// the record shape (which fields are present, the keyspace maps) around
// them.
func encodeCBOR(v interface{}) ([]byte, error) {
	return cbor.Marshal(v)
}

func decodeCBOR(b []byte, v interface{}) error {
	return cbor.Unmarshal(b, v)
}
