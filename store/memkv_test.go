package store

import "sync"

// memKV is an in-memory KV used only by this package's tests, so the DKG
// and signing derived-API tests don't need to pay badger's on-disk cost
// for every case; BadgerKV itself is covered separately in badger_test.go.
type memKV struct {
	mu   sync.Mutex
	data map[Keyspace]map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[Keyspace]map[string][]byte)}
}

func (m *memKV) Put(ks Keyspace, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[ks] == nil {
		m.data[ks] = make(map[string][]byte)
	}
	cp := append([]byte(nil), value...)
	m.data[ks][string(key)] = cp
	return nil
}

func (m *memKV) Get(ks Keyspace, key []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[ks][string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *memKV) Delete(ks Keyspace, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[ks], string(key))
	return nil
}

func (m *memKV) Iterate(ks Keyspace, fn func(key, value []byte) error) error {
	m.mu.Lock()
	items := make(map[string][]byte, len(m.data[ks]))
	for k, v := range m.data[ks] {
		items[k] = append([]byte(nil), v...)
	}
	m.mu.Unlock()
	for k, v := range items {
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

func (m *memKV) Close() error { return nil }
