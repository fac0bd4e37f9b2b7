package store

import (
	"testing"

	"threshold.network/frost/ciphersuite"
)

func TestDkgStateDefaultsToInitial(t *testing.T) {
	s := NewStore(newMemKV())
	state, err := s.GetDkgState()
	if err != nil {
		t.Fatalf("GetDkgState: %v", err)
	}
	if state != DkgInitial {
		t.Fatalf("GetDkgState = %v, want initial", state)
	}
}

func TestDkgStateRoundTrip(t *testing.T) {
	s := NewStore(newMemKV())
	if err := s.SetDkgState(DkgPart2); err != nil {
		t.Fatalf("SetDkgState: %v", err)
	}
	state, err := s.GetDkgState()
	if err != nil {
		t.Fatalf("GetDkgState: %v", err)
	}
	if state != DkgPart2 {
		t.Fatalf("GetDkgState = %v, want part2", state)
	}
}

func TestDkgConfigRoundTrip(t *testing.T) {
	s := NewStore(newMemKV())
	id, err := ciphersuite.HashedIdentifier([]byte("alice@example"))
	if err != nil {
		t.Fatalf("HashedIdentifier: %v", err)
	}
	if err := s.SetIdentifier(id); err != nil {
		t.Fatalf("SetIdentifier: %v", err)
	}
	if err := s.SetMaxSigners(3); err != nil {
		t.Fatalf("SetMaxSigners: %v", err)
	}
	if err := s.SetMinSigners(2); err != nil {
		t.Fatalf("SetMinSigners: %v", err)
	}

	gotID, found, err := s.GetIdentifier()
	if err != nil || !found {
		t.Fatalf("GetIdentifier: found=%v err=%v", found, err)
	}
	if gotID != id {
		t.Fatalf("GetIdentifier = %v, want %v", gotID, id)
	}
	if n, _, _ := s.GetMaxSigners(); n != 3 {
		t.Fatalf("GetMaxSigners = %d, want 3", n)
	}
	if n, _, _ := s.GetMinSigners(); n != 2 {
		t.Fatalf("GetMinSigners = %d, want 2", n)
	}
}

func TestPart1SecretIsConsumedOnRead(t *testing.T) {
	s := NewStore(newMemKV())
	id, err := ciphersuite.HashedIdentifier([]byte("alice@example"))
	if err != nil {
		t.Fatalf("HashedIdentifier: %v", err)
	}
	secret, public, err := ciphersuite.Part1(id, 2, 2, nil)
	if err != nil {
		t.Fatalf("Part1: %v", err)
	}
	if err := s.SetPart1Package(secret, public); err != nil {
		t.Fatalf("SetPart1Package: %v", err)
	}

	got, err := s.GetPart1Secret()
	if err != nil {
		t.Fatalf("first GetPart1Secret: %v", err)
	}
	if got.Identifier != id {
		t.Fatalf("decoded secret identifier = %v, want %v", got.Identifier, id)
	}

	if _, err := s.GetPart1Secret(); err == nil {
		t.Fatalf("second GetPart1Secret succeeded, want not-found error")
	}

	// The public package must remain readable after the secret is
	// consumed; they are independent slots.
	if _, err := s.GetPart1Public(); err != nil {
		t.Fatalf("GetPart1Public after secret consumed: %v", err)
	}
}

func TestReceivedPart1Bookkeeping(t *testing.T) {
	s := NewStore(newMemKV())
	alice, _ := ciphersuite.HashedIdentifier([]byte("alice@example"))
	bob, _ := ciphersuite.HashedIdentifier([]byte("bob@example"))

	if count, err := s.CountReceivedPart1(); err != nil || count != 0 {
		t.Fatalf("CountReceivedPart1 = %d, err=%v, want 0", count, err)
	}
	if ok, err := s.HasReceivedPart1(bob); err != nil || ok {
		t.Fatalf("HasReceivedPart1 = %v, err=%v, want false", ok, err)
	}

	_, public, err := ciphersuite.Part1(bob, 2, 2, nil)
	if err != nil {
		t.Fatalf("Part1: %v", err)
	}
	if err := s.AddReceivedPart1(bob, public); err != nil {
		t.Fatalf("AddReceivedPart1: %v", err)
	}

	if ok, err := s.HasReceivedPart1(bob); err != nil || !ok {
		t.Fatalf("HasReceivedPart1 = %v, err=%v, want true", ok, err)
	}
	if count, err := s.CountReceivedPart1(); err != nil || count != 1 {
		t.Fatalf("CountReceivedPart1 = %d, err=%v, want 1", count, err)
	}

	all, err := s.GetAllReceivedPart1()
	if err != nil {
		t.Fatalf("GetAllReceivedPart1: %v", err)
	}
	if _, ok := all[bob]; !ok {
		t.Fatalf("GetAllReceivedPart1 missing bob's package")
	}
	if _, ok := all[alice]; ok {
		t.Fatalf("GetAllReceivedPart1 unexpectedly has alice's package")
	}
}

func TestClearDkgResetsState(t *testing.T) {
	s := NewStore(newMemKV())
	if err := s.SetDkgState(DkgFinalized); err != nil {
		t.Fatalf("SetDkgState: %v", err)
	}
	if err := s.SetMaxSigners(5); err != nil {
		t.Fatalf("SetMaxSigners: %v", err)
	}
	if err := s.ClearDkg(); err != nil {
		t.Fatalf("ClearDkg: %v", err)
	}

	state, err := s.GetDkgState()
	if err != nil {
		t.Fatalf("GetDkgState: %v", err)
	}
	if state != DkgInitial {
		t.Fatalf("GetDkgState after clear = %v, want initial", state)
	}
	if n, found, err := s.GetMaxSigners(); err != nil || found || n != 0 {
		t.Fatalf("GetMaxSigners after clear = %d found=%v err=%v, want 0/false", n, found, err)
	}
}
