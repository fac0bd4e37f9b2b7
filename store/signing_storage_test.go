package store

import (
	"testing"

	"threshold.network/frost/ciphersuite"
)

func TestKeypairRoundTrip(t *testing.T) {
	s := NewStore(newMemKV())
	id, _ := ciphersuite.HashedIdentifier([]byte("alice@example"))

	record := &KeypairRecord{
		Identifier:    id.Bytes(),
		MaxSigners:    2,
		MinSigners:    2,
		SigningKey:    []byte{1, 2, 3},
		PublicPackage: []byte{4, 5, 6},
		Participants:  [][]byte{id.Bytes()},
	}
	if err := s.SetKeypair(record); err != nil {
		t.Fatalf("SetKeypair: %v", err)
	}

	got, err := s.GetKeypair()
	if err != nil {
		t.Fatalf("GetKeypair: %v", err)
	}
	if string(got.SigningKey) != "\x01\x02\x03" {
		t.Fatalf("GetKeypair.SigningKey = %v, want [1 2 3]", got.SigningKey)
	}
	if got.MaxSigners != 2 || got.MinSigners != 2 {
		t.Fatalf("GetKeypair config = (%d,%d), want (2,2)", got.MaxSigners, got.MinSigners)
	}
}

func TestGetKeypairNotFound(t *testing.T) {
	s := NewStore(newMemKV())
	if _, err := s.GetKeypair(); err == nil {
		t.Fatalf("GetKeypair on empty store succeeded, want not-found error")
	}
}

func TestCoordinatorMessageLifecycle(t *testing.T) {
	s := NewStore(newMemKV())
	var hash [32]byte
	copy(hash[:], []byte("message-hash-for-test-purposes!"))

	msg := &CoordinatorMessage{
		State:        SigningRound1,
		Participants: [][]byte{[]byte("alice"), []byte("bob")},
	}
	if err := s.SetCoordinatorMessage(hash, msg); err != nil {
		t.Fatalf("SetCoordinatorMessage: %v", err)
	}

	got, found, err := s.GetCoordinatorMessage(hash)
	if err != nil || !found {
		t.Fatalf("GetCoordinatorMessage: found=%v err=%v", found, err)
	}
	if got.State != SigningRound1 {
		t.Fatalf("GetCoordinatorMessage.State = %v, want round1", got.State)
	}

	all, err := s.ListCoordinatorMessages()
	if err != nil {
		t.Fatalf("ListCoordinatorMessages: %v", err)
	}
	if _, ok := all[hash]; !ok {
		t.Fatalf("ListCoordinatorMessages missing record")
	}

	if err := s.DeleteCoordinatorMessage(hash); err != nil {
		t.Fatalf("DeleteCoordinatorMessage: %v", err)
	}
	if _, found, err := s.GetCoordinatorMessage(hash); err != nil || found {
		t.Fatalf("GetCoordinatorMessage after delete: found=%v err=%v", found, err)
	}
}

func TestParticipantMessageLifecycle(t *testing.T) {
	s := NewStore(newMemKV())
	var hash [32]byte
	copy(hash[:], []byte("another-message-hash-for-tests!"))

	msg := &ParticipantMessage{
		Participants: [][]byte{[]byte("alice"), []byte("bob")},
		Coordinator:  []byte("alice"),
		Nonces:       []byte{9, 9},
	}
	if err := s.SetParticipantMessage(hash, msg); err != nil {
		t.Fatalf("SetParticipantMessage: %v", err)
	}

	got, found, err := s.GetParticipantMessage(hash)
	if err != nil || !found {
		t.Fatalf("GetParticipantMessage: found=%v err=%v", found, err)
	}
	if string(got.Nonces) != "\x09\x09" {
		t.Fatalf("GetParticipantMessage.Nonces = %v, want [9 9]", got.Nonces)
	}

	if err := s.DeleteParticipantMessage(hash); err != nil {
		t.Fatalf("DeleteParticipantMessage: %v", err)
	}
	if _, found, err := s.GetParticipantMessage(hash); err != nil || found {
		t.Fatalf("GetParticipantMessage after delete: found=%v err=%v", found, err)
	}
}

func TestSignedMessageLifecycle(t *testing.T) {
	s := NewStore(newMemKV())
	var hash [32]byte
	copy(hash[:], []byte("yet-another-hash-for-store-test!"))

	msg := &SignedMessage{
		Participants:  [][]byte{[]byte("alice"), []byte("bob")},
		Signature:     []byte{1, 1, 1},
		PublicPackage: []byte{2, 2, 2},
	}
	if err := s.SetSignedMessage(hash, msg); err != nil {
		t.Fatalf("SetSignedMessage: %v", err)
	}

	got, found, err := s.GetSignedMessage(hash)
	if err != nil || !found {
		t.Fatalf("GetSignedMessage: found=%v err=%v", found, err)
	}
	if got.MessageHash != hash {
		t.Fatalf("GetSignedMessage.MessageHash mismatch")
	}

	if err := s.DeleteSignedMessage(hash); err != nil {
		t.Fatalf("DeleteSignedMessage: %v", err)
	}
	if _, found, err := s.GetSignedMessage(hash); err != nil || found {
		t.Fatalf("GetSignedMessage after delete: found=%v err=%v", found, err)
	}
}
