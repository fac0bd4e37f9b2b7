// Package store implements the persistent, keyspaced, durable key-value
// layer of spec.md section 4.C plus the derived DKG and signing storage
// APIs the engines call against it. The store is modeled as a capability
// interface (KV) supplied to the concrete Store, per spec.md section 9:
// "Reimplementations should model the store as a capability interface
// supplied to each engine, with its concrete backing (in-memory for tests,
// durable KV for production) chosen by the caller" — generalized here from
// the teacher's Ciphersuite/Curve/Hashing strategy-interface pattern
// (frost/ciphersuite.go) from a math capability to a storage capability.
package store

import "errors"

// Keyspace names one of the five logical tables spec.md section 4.C
// defines over the underlying KV.
type Keyspace string

const (
	// KeyspaceDKG holds the single DKG working-set blob.
	KeyspaceDKG Keyspace = "dkg"
	// KeyspaceKeypair holds the single keypair record blob.
	KeyspaceKeypair Keyspace = "keypair"
	// KeyspaceCoordinatorMessages is keyed by message_hash.
	KeyspaceCoordinatorMessages Keyspace = "coordinator_messages"
	// KeyspaceParticipantMessages is keyed by message_hash.
	KeyspaceParticipantMessages Keyspace = "participant_messages"
	// KeyspaceSignedMessages is keyed by message_hash.
	KeyspaceSignedMessages Keyspace = "signed_messages"
)

// ErrNotFound is a sentinel for a missing key. KV.Get does not return it:
// Get reports absence as found == false with a nil error.
var ErrNotFound = errors.New("store: key not found")

// KV is a keyed, durable, atomic key-value capability with keyspaces
// (logical tables). Every mutating operation must be durable before it
// returns (spec.md section 4.C: "fsync semantics"). The store need not be
// multi-writer: spec.md section 5 guarantees all call paths serialize
// through the engine that owns a given KV instance.
type KV interface {
	// Put durably writes value under key in keyspace ks, overwriting any
	// existing value.
	Put(ks Keyspace, key, value []byte) error
	// Get returns the most recent durable value for key in keyspace ks.
	// found is false, with a nil error, when no value is stored.
	Get(ks Keyspace, key []byte) (value []byte, found bool, err error)
	// Delete durably removes key from keyspace ks. Deleting an absent key
	// is not an error.
	Delete(ks Keyspace, key []byte) error
	// Iterate calls fn once per stored entry in keyspace ks. Iteration
	// order depends on the implementation (BadgerKV visits keys in byte
	// order; the test memKV in map order); fn must not mutate the store.
	Iterate(ks Keyspace, fn func(key, value []byte) error) error
	// Close releases any resources held by the KV. Close is idempotent.
	Close() error
}

// singletonKey is the fixed key used for the two single-blob keyspaces
// (dkg, keypair), per spec.md section 4.C.
var singletonKey = []byte("singleton")

// Store wraps a KV with the derived DKG and signing storage API spec.md
// section 4.C describes: "the engines call these, not the raw KV." Both
// engines share one Store the same way the original implementation's
// single per-party database backs both its dkg and signing operation
// sets.
type Store struct {
	kv KV
}

// NewStore builds a Store over an already-open KV.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// NewBadgerStore opens a durable badger-backed Store rooted at dir.
func NewBadgerStore(dir string) (*Store, error) {
	kv, err := OpenBadgerKV(dir)
	if err != nil {
		return nil, err
	}
	return NewStore(kv), nil
}

// Close releases the underlying KV's resources.
func (s *Store) Close() error {
	return s.kv.Close()
}
