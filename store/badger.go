package store

import (
	"bytes"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
)

// BadgerKV is the durable KV backing used in production, per spec.md
// section 4.C: "a durable, atomic, keyspaced KV store... fsync-on-write
// durability." WithSyncWrites(true) forces an fsync on every commit so a
// process crash immediately after a Put cannot lose it.
type BadgerKV struct {
	db *badger.DB
}

// OpenBadgerKV opens (creating if absent) a badger database rooted at dir.
func OpenBadgerKV(dir string) (*BadgerKV, error) {
	opts := badger.DefaultOptions(dir).WithSyncWrites(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, newErr("open", KindIO, err)
	}
	return &BadgerKV{db: db}, nil
}

func dbKey(ks Keyspace, key []byte) []byte {
	b := make([]byte, 0, len(ks)+1+len(key))
	b = append(b, ks...)
	b = append(b, ':')
	b = append(b, key...)
	return b
}

func (k *BadgerKV) Put(ks Keyspace, key, value []byte) error {
	err := k.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dbKey(ks, key), value)
	})
	if err != nil {
		return newErr(fmt.Sprintf("put %s", ks), KindIO, err)
	}
	return nil
}

func (k *BadgerKV) Get(ks Keyspace, key []byte) ([]byte, bool, error) {
	var value []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(ks, key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			value = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, false, newErr(fmt.Sprintf("get %s", ks), KindIO, err)
	}
	return value, value != nil, nil
}

func (k *BadgerKV) Delete(ks Keyspace, key []byte) error {
	err := k.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(dbKey(ks, key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return newErr(fmt.Sprintf("delete %s", ks), KindIO, err)
	}
	return nil
}

func (k *BadgerKV) Iterate(ks Keyspace, fn func(key, value []byte) error) error {
	prefix := append([]byte(ks), ':')
	err := k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			storedKey := bytes.TrimPrefix(item.KeyCopy(nil), prefix)
			var value []byte
			if err := item.Value(func(v []byte) error {
				value = append([]byte(nil), v...)
				return nil
			}); err != nil {
				return err
			}
			if err := fn(storedKey, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return newErr(fmt.Sprintf("iterate %s", ks), KindIO, err)
	}
	return nil
}

func (k *BadgerKV) Close() error {
	if err := k.db.Close(); err != nil {
		return newErr("close", KindIO, err)
	}
	return nil
}
