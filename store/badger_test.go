package store

import "testing"

func TestBadgerKVPutGetDelete(t *testing.T) {
	kv, err := OpenBadgerKV(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerKV: %v", err)
	}
	defer kv.Close()

	if err := kv.Put(KeyspaceKeypair, []byte("k"), []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, found, err := kv.Get(KeyspaceKeypair, []byte("k"))
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if string(got) != "v1" {
		t.Fatalf("Get = %q, want v1", got)
	}

	if err := kv.Delete(KeyspaceKeypair, []byte("k")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, found, err = kv.Get(KeyspaceKeypair, []byte("k"))
	if err != nil || found {
		t.Fatalf("Get after delete: found=%v err=%v", found, err)
	}
}

func TestBadgerKVKeyspacesAreIsolated(t *testing.T) {
	kv, err := OpenBadgerKV(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerKV: %v", err)
	}
	defer kv.Close()

	if err := kv.Put(KeyspaceDKG, []byte("shared"), []byte("dkg-value")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := kv.Put(KeyspaceKeypair, []byte("shared"), []byte("keypair-value")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, _, err := kv.Get(KeyspaceDKG, []byte("shared"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "dkg-value" {
		t.Fatalf("DKG keyspace got %q, want dkg-value", got)
	}

	got, _, err = kv.Get(KeyspaceKeypair, []byte("shared"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "keypair-value" {
		t.Fatalf("Keypair keyspace got %q, want keypair-value", got)
	}
}

func TestBadgerKVIterate(t *testing.T) {
	kv, err := OpenBadgerKV(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerKV: %v", err)
	}
	defer kv.Close()

	want := map[string]string{"a": "1", "b": "2", "c": "3"}
	for k, v := range want {
		if err := kv.Put(KeyspaceSignedMessages, []byte(k), []byte(v)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got := make(map[string]string)
	err = kv.Iterate(KeyspaceSignedMessages, func(key, value []byte) error {
		got[string(key)] = string(value)
		return nil
	})
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Iterate found %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("Iterate entry %q = %q, want %q", k, got[k], v)
		}
	}
}
