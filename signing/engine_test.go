package signing

import (
	"crypto/sha512"

	"testing"

	"threshold.network/frost/ciphersuite"
	"threshold.network/frost/dkg"
	"threshold.network/frost/internal/testutils"
	"threshold.network/frost/store"
)

type testParty struct {
	id      ciphersuite.Identifier
	dkg     *dkg.Engine
	signing *Engine
	store   *store.Store
}

func newTestParty(t *testing.T, label string) *testParty {
	t.Helper()
	id, err := ciphersuite.HashedIdentifier([]byte(label))
	if err != nil {
		t.Fatalf("HashedIdentifier(%s): %v", label, err)
	}
	s, err := store.NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return &testParty{id: id, dkg: dkg.NewEngine(s, nil), signing: NewEngine(s, nil), store: s}
}

// runDkg drives every party in parties through Configure..Part3, per
// dkg.Engine's contract, leaving each party's store holding a finalized
// keypair record ready for signing.
func runDkg(t *testing.T, parties []*testParty, maxSigners, minSigners uint16) {
	t.Helper()

	for _, p := range parties {
		if err := p.dkg.Configure(p.id, maxSigners, minSigners); err != nil {
			t.Fatalf("Configure(%s): %v", p.id, err)
		}
	}

	part1 := make(map[ciphersuite.Identifier]*dkg.Part1Result, len(parties))
	for _, p := range parties {
		res, err := p.dkg.Part1()
		if err != nil {
			t.Fatalf("Part1(%s): %v", p.id, err)
		}
		part1[p.id] = res
	}
	for _, p := range parties {
		for _, other := range parties {
			if other.id == p.id {
				continue
			}
			if err := p.dkg.ReceivePart1(other.id, part1[other.id].Package); err != nil {
				t.Fatalf("ReceivePart1(%s<-%s): %v", p.id, other.id, err)
			}
		}
	}

	part2 := make(map[ciphersuite.Identifier]*dkg.Part2Result, len(parties))
	for _, p := range parties {
		res, err := p.dkg.Part2()
		if err != nil {
			t.Fatalf("Part2(%s): %v", p.id, err)
		}
		part2[p.id] = res
	}
	for _, p := range parties {
		for _, other := range parties {
			if other.id == p.id {
				continue
			}
			share := part2[other.id].Packages[p.id]
			if err := p.dkg.ReceivePart2(other.id, share); err != nil {
				t.Fatalf("ReceivePart2(%s<-%s): %v", p.id, other.id, err)
			}
		}
	}

	for _, p := range parties {
		if _, _, err := p.dkg.Part3(); err != nil {
			t.Fatalf("Part3(%s): %v", p.id, err)
		}
	}
}

func partyByID(parties []*testParty, id ciphersuite.Identifier) *testParty {
	for _, p := range parties {
		if p.id == id {
			return p
		}
	}
	return nil
}

// runSigning drives a full ceremony to Aggregate for messageHash, with
// coordinator as the coordinating party and signers as every party
// expected to contribute a share (which may or may not include
// coordinator), mirroring spec.md section 8's end-to-end scenarios.
func runSigning(t *testing.T, coordinator *testParty, signers []*testParty, messageHash [32]byte) *AggregateResult {
	t.Helper()

	coordinatorIsSigner := partyByID(signers, coordinator.id) != nil
	var dispatchTo []ciphersuite.Identifier
	for _, s := range signers {
		if s.id != coordinator.id {
			dispatchTo = append(dispatchTo, s.id)
		}
	}

	req, err := coordinator.signing.SignalRound1(messageHash, dispatchTo, coordinatorIsSigner)
	if err != nil {
		t.Fatalf("SignalRound1: %v", err)
	}

	for _, id := range dispatchTo {
		p := partyByID(signers, id)
		res, err := p.signing.Round1Commit(messageHash, req.Participants, req.Coordinator)
		if err != nil {
			t.Fatalf("Round1Commit(%s): %v", p.id, err)
		}
		if err := coordinator.signing.ReceiveRound1Commit(messageHash, p.id, res.Commitments); err != nil {
			t.Fatalf("ReceiveRound1Commit(%s): %v", p.id, err)
		}
	}

	pkgResult, err := coordinator.signing.BuildSigningPackage(messageHash)
	if err != nil {
		t.Fatalf("BuildSigningPackage: %v", err)
	}

	for _, id := range dispatchTo {
		p := partyByID(signers, id)
		res, err := p.signing.Round2Commit(messageHash, pkgResult.Package)
		if err != nil {
			t.Fatalf("Round2Commit(%s): %v", p.id, err)
		}
		if err := coordinator.signing.ReceiveRound2Commit(messageHash, p.id, res.SignatureShare); err != nil {
			t.Fatalf("ReceiveRound2Commit(%s): %v", p.id, err)
		}
	}

	agg, err := coordinator.signing.Aggregate(messageHash)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return agg
}

func TestTwoOfTwoSigningWithCoordinatorAsSigner(t *testing.T) {
	alice := newTestParty(t, "alice@example")
	bob := newTestParty(t, "bob@example")
	runDkg(t, []*testParty{alice, bob}, 2, 2)

	messageHash := sha512.Sum512_256([]byte("Hello FROST!"))

	agg := runSigning(t, alice, []*testParty{alice, bob}, messageHash)
	if agg.Signature == nil {
		t.Fatalf("Aggregate returned nil signature")
	}

	if err := alice.signing.Verify(agg); err != nil {
		t.Fatalf("alice Verify: %v", err)
	}
	if err := bob.signing.Verify(agg); err != nil {
		t.Fatalf("bob Verify: %v", err)
	}

	if err := bob.signing.VerifyAndRemove(agg); err != nil {
		t.Fatalf("bob VerifyAndRemove: %v", err)
	}
	if _, found, err := bob.store.GetParticipantMessage(messageHash); err != nil {
		t.Fatalf("GetParticipantMessage: %v", err)
	} else if found {
		t.Fatalf("bob participant record still present after VerifyAndRemove")
	}

	if _, found, err := alice.store.GetCoordinatorMessage(messageHash); err != nil {
		t.Fatalf("GetCoordinatorMessage: %v", err)
	} else if found {
		t.Fatalf("alice coordinator record still present after Aggregate")
	}
}

// TestTwoOfThreeSigningWithCoordinatorNotSigner grounds spec.md section 8
// scenario 2 ("coordinator is_signer = false … two other parties") in a
// satisfiable threshold: a (t=3,n=3) group polynomial has degree 2, so
// Lagrange interpolation of f(0) needs all 3 shares and cannot be
// recovered from only 2 — the scenario as literally numbered is
// unsatisfiable. minSigners=2 here is the smallest group size where a
// non-signing coordinator plus exactly two other signers is valid; see
// DESIGN.md's Open Question resolutions.
func TestTwoOfThreeSigningWithCoordinatorNotSigner(t *testing.T) {
	alice := newTestParty(t, "alice@example")
	bob := newTestParty(t, "bob@example")
	carol := newTestParty(t, "carol@example")
	runDkg(t, []*testParty{alice, bob, carol}, 3, 2)

	messageHash := sha512.Sum512_256([]byte("Hello FROST!"))

	agg := runSigning(t, alice, []*testParty{bob, carol}, messageHash)
	if agg.Signature == nil {
		t.Fatalf("Aggregate returned nil signature")
	}
	testutils.AssertIntsEqual(t, "aggregate participant count (coordinator not a signer)", 2, len(agg.Participants))

	if err := carol.signing.Verify(agg); err != nil {
		t.Fatalf("carol Verify: %v", err)
	}
}

func TestSignalRound1RejectsDuplicateMessageHash(t *testing.T) {
	alice := newTestParty(t, "alice@example")
	bob := newTestParty(t, "bob@example")
	runDkg(t, []*testParty{alice, bob}, 2, 2)

	messageHash := sha512.Sum512_256([]byte("duplicate"))

	if _, err := alice.signing.SignalRound1(messageHash, []ciphersuite.Identifier{bob.id}, true); err != nil {
		t.Fatalf("first SignalRound1: %v", err)
	}
	_, err := alice.signing.SignalRound1(messageHash, []ciphersuite.Identifier{bob.id}, true)
	if err == nil {
		t.Fatalf("second SignalRound1 succeeded, want MessageToSignAlreadyExists")
	}
	if e, ok := err.(*Error); !ok || e.Kind != KindMessageToSignAlreadyExists {
		t.Fatalf("err = %v, want KindMessageToSignAlreadyExists", err)
	}
}

func TestSignalRound1RejectsParticipantNotInKeypair(t *testing.T) {
	alice := newTestParty(t, "alice@example")
	bob := newTestParty(t, "bob@example")
	runDkg(t, []*testParty{alice, bob}, 2, 2)

	stranger, err := ciphersuite.HashedIdentifier([]byte("eve@example"))
	if err != nil {
		t.Fatalf("HashedIdentifier: %v", err)
	}

	messageHash := sha512.Sum512_256([]byte("stranger"))
	_, err = alice.signing.SignalRound1(messageHash, []ciphersuite.Identifier{stranger}, true)
	if err == nil {
		t.Fatalf("SignalRound1 with stranger succeeded, want InvalidParticipants")
	}
	if e, ok := err.(*Error); !ok || e.Kind != KindInvalidParticipants {
		t.Fatalf("err = %v, want KindInvalidParticipants", err)
	}
}

func TestRound2CommitIsIdempotent(t *testing.T) {
	alice := newTestParty(t, "alice@example")
	bob := newTestParty(t, "bob@example")
	runDkg(t, []*testParty{alice, bob}, 2, 2)

	messageHash := sha512.Sum512_256([]byte("idempotent"))

	req, err := alice.signing.SignalRound1(messageHash, []ciphersuite.Identifier{bob.id}, true)
	if err != nil {
		t.Fatalf("SignalRound1: %v", err)
	}
	bobCommit, err := bob.signing.Round1Commit(messageHash, req.Participants, req.Coordinator)
	if err != nil {
		t.Fatalf("Round1Commit: %v", err)
	}
	if err := alice.signing.ReceiveRound1Commit(messageHash, bob.id, bobCommit.Commitments); err != nil {
		t.Fatalf("ReceiveRound1Commit: %v", err)
	}
	pkgResult, err := alice.signing.BuildSigningPackage(messageHash)
	if err != nil {
		t.Fatalf("BuildSigningPackage: %v", err)
	}

	first, err := bob.signing.Round2Commit(messageHash, pkgResult.Package)
	if err != nil {
		t.Fatalf("first Round2Commit: %v", err)
	}
	second, err := bob.signing.Round2Commit(messageHash, pkgResult.Package)
	if err != nil {
		t.Fatalf("second Round2Commit: %v", err)
	}
	testutils.AssertBytesEqual(t, first.SignatureShare.Encode(), second.SignatureShare.Encode())
}

func TestReceiveRound1CommitRejectsUnknownSender(t *testing.T) {
	alice := newTestParty(t, "alice@example")
	bob := newTestParty(t, "bob@example")
	carol := newTestParty(t, "carol@example")
	runDkg(t, []*testParty{alice, bob, carol}, 3, 3)

	messageHash := sha512.Sum512_256([]byte("unknown sender"))
	req, err := alice.signing.SignalRound1(messageHash, []ciphersuite.Identifier{bob.id}, false)
	if err != nil {
		t.Fatalf("SignalRound1: %v", err)
	}

	carolCommit, err := carol.signing.Round1Commit(messageHash, req.Participants, req.Coordinator)
	if err != nil {
		t.Fatalf("Round1Commit(carol): %v", err)
	}
	err = alice.signing.ReceiveRound1Commit(messageHash, carol.id, carolCommit.Commitments)
	if err == nil {
		t.Fatalf("ReceiveRound1Commit(carol) succeeded, want InvalidParticipant")
	}
	if e, ok := err.(*Error); !ok || e.Kind != KindInvalidParticipant {
		t.Fatalf("err = %v, want KindInvalidParticipant", err)
	}
}

func TestAggregateRejectedBeforeRound2Complete(t *testing.T) {
	alice := newTestParty(t, "alice@example")
	bob := newTestParty(t, "bob@example")
	runDkg(t, []*testParty{alice, bob}, 2, 2)

	messageHash := sha512.Sum512_256([]byte("too early"))
	if _, err := alice.signing.SignalRound1(messageHash, []ciphersuite.Identifier{bob.id}, true); err != nil {
		t.Fatalf("SignalRound1: %v", err)
	}

	_, err := alice.signing.Aggregate(messageHash)
	if err == nil {
		t.Fatalf("Aggregate before Round2 completed succeeded, want ExpectedAggregateSigningState")
	}
	if e, ok := err.(*Error); !ok || e.Kind != KindExpectedAggregateSigningState {
		t.Fatalf("err = %v, want KindExpectedAggregateSigningState", err)
	}
}
