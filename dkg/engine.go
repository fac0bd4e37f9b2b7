package dkg

import (
	"io"

	"threshold.network/frost/ciphersuite"
	"threshold.network/frost/store"
)

// Engine drives one party's side of a FROST DKG ceremony against a
// store.Store, mirroring the part1/part2/part3 calling contract of
// original_source/krill-frost/src/ops/dkg.rs one operation at a time, per
// spec.md section 4.D.
type Engine struct {
	store *store.Store
	rng   io.Reader
}

// NewEngine builds a DKG engine over an already-open store. rng may be
// nil, in which case the ciphersuite draws from crypto/rand.Reader.
func NewEngine(s *store.Store, rng io.Reader) *Engine {
	return &Engine{store: s, rng: rng}
}

// Configure sets this party's identifier and group size, per spec.md
// section 4.D's Configuration phase. Requires state = Initial.
func (e *Engine) Configure(id ciphersuite.Identifier, maxSigners, minSigners uint16) error {
	state, err := e.store.GetDkgState()
	if err != nil {
		return err
	}
	if state != store.DkgInitial {
		return newErr("configure", KindInvalidDkgState, nil)
	}
	if maxSigners < 2 {
		return newErr("configure", KindThereMustBeAtLeast2Signers, nil)
	}
	if minSigners < 2 || minSigners > maxSigners {
		return newErr("configure", KindMinSignersGreaterThanMax, nil)
	}

	if existing, found, err := e.store.GetIdentifier(); err != nil {
		return err
	} else if found && existing != id {
		return newErr("configure", KindIdentifierAlreadyExists, nil)
	}

	if err := e.store.SetIdentifier(id); err != nil {
		return err
	}
	if err := e.store.SetMaxSigners(maxSigners); err != nil {
		return err
	}
	return e.store.SetMinSigners(minSigners)
}

// SignalDkg clears any prior DKG working set, returning state to Initial.
// Idempotent: repeated calls before Part1 leave state Initial, per spec.md
// section 8's idempotence property.
func (e *Engine) SignalDkg() error {
	return e.store.ClearDkg()
}

// Part1Result is returned by Part1 for broadcast to every other party, per
// spec.md section 6's Part1Broadcast message shape.
type Part1Result struct {
	Identifier ciphersuite.Identifier
	Package    *ciphersuite.Round1Public
}

// Part1 draws this party's round-1 secret and public package, persists the
// secret, and transitions Initial -> Part1, per spec.md section 4.D.
func (e *Engine) Part1() (*Part1Result, error) {
	state, err := e.store.GetDkgState()
	if err != nil {
		return nil, err
	}
	if state != store.DkgInitial {
		return nil, newErr("part1", KindInvalidDkgState, nil)
	}

	id, found, err := e.store.GetIdentifier()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newErr("part1", KindDkgIdentifierNotFound, nil)
	}
	maxSigners, _, err := e.store.GetMaxSigners()
	if err != nil {
		return nil, err
	}
	minSigners, _, err := e.store.GetMinSigners()
	if err != nil {
		return nil, err
	}

	secret, public, err := ciphersuite.Part1(id, maxSigners, minSigners, e.rng)
	if err != nil {
		return nil, newErr("part1", KindPart1KeyGeneration, err)
	}
	if err := e.store.SetPart1Package(secret, public); err != nil {
		return nil, err
	}
	secret.Zero()
	if err := e.store.SetDkgState(store.DkgPart1); err != nil {
		return nil, err
	}
	return &Part1Result{Identifier: id, Package: public}, nil
}

// Part1PublicPackage returns this party's own round-1 public package,
// letting a caller re-fetch it without rerunning Part1 (the supplemented
// parity API described in SPEC_FULL.md).
func (e *Engine) Part1PublicPackage() (*ciphersuite.Round1Public, error) {
	public, err := e.store.GetPart1Public()
	if err != nil {
		return nil, newErr("part1 public package", KindPart1PublicPackageNotFound, err)
	}
	return public, nil
}

// ReceivePart1 records a peer's round-1 broadcast, transitioning
// Part1 -> Part2 once every other party's package has arrived, per
// spec.md section 4.D's Part 1 receive contract.
func (e *Engine) ReceivePart1(peer ciphersuite.Identifier, pkg *ciphersuite.Round1Public) error {
	state, err := e.store.GetDkgState()
	if err != nil {
		return err
	}
	if state == store.DkgPart2 {
		// Every peer's round-1 package is already in; a package from a peer
		// not yet recorded is one more than the group allows.
		known, err := e.store.HasReceivedPart1(peer)
		if err != nil {
			return err
		}
		if !known {
			return newErr("receive part1", KindPart1MaxPartiesReached, nil)
		}
	}
	if state != store.DkgPart1 {
		return newErr("receive part1", KindInvalidDkgState, nil)
	}
	maxSigners, _, err := e.store.GetMaxSigners()
	if err != nil {
		return err
	}

	has, err := e.store.HasReceivedPart1(peer)
	if err != nil {
		return err
	}
	if !has {
		count, err := e.store.CountReceivedPart1()
		if err != nil {
			return err
		}
		if count >= int(maxSigners)-1 {
			return newErr("receive part1", KindPart1MaxPartiesReached, nil)
		}
	}

	if err := e.store.AddReceivedPart1(peer, pkg); err != nil {
		return err
	}

	newCount, err := e.store.CountReceivedPart1()
	if err != nil {
		return err
	}
	if newCount+1 == int(maxSigners) {
		return e.store.SetDkgState(store.DkgPart2)
	}
	return nil
}

// Part2Result is returned by Part2 for point-to-point distribution, per
// spec.md section 6's Part2Point2Point message shape.
type Part2Result struct {
	Identifier ciphersuite.Identifier
	Packages   map[ciphersuite.Identifier]*ciphersuite.Round2Public
}

// Part2 consumes the round-1 secret, evaluates this party's polynomial for
// every peer, and persists the round-2 secret and outgoing shares, per
// spec.md section 4.D.
func (e *Engine) Part2() (*Part2Result, error) {
	state, err := e.store.GetDkgState()
	if err != nil {
		return nil, err
	}
	if state != store.DkgPart2 {
		return nil, newErr("part2", KindInvalidDkgState, nil)
	}

	secret, err := e.store.GetPart1Secret()
	if err != nil {
		return nil, newErr("part2", KindRound1SecretNotFound, err)
	}
	received, err := e.store.GetAllReceivedPart1()
	if err != nil {
		return nil, err
	}

	round2Secret, outgoing, err := ciphersuite.Part2(secret, received)
	secret.Zero()
	if err != nil {
		return nil, newErr("part2", KindPart2KeyGeneration, err)
	}

	if err := e.store.SetPart2Package(round2Secret, outgoing); err != nil {
		return nil, err
	}
	round2Secret.Zero()

	return &Part2Result{Identifier: secret.Identifier, Packages: outgoing}, nil
}

// SendPart2 returns the outgoing round-2 share addressed to recipient, the
// supplemented parity API mirroring Part1PublicPackage for round 2.
func (e *Engine) SendPart2(recipient ciphersuite.Identifier) (*ciphersuite.Round2Public, error) {
	pkg, found, err := e.store.GetPart2Package(recipient)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newErr("send part2", KindPart2SecretNotFound, nil)
	}
	return pkg, nil
}

// ReceivePart2 records a peer's round-2 share, transitioning
// Part2 -> Part3 once every other party's share has arrived, per spec.md
// section 4.D's Part 2 receive contract.
func (e *Engine) ReceivePart2(peer ciphersuite.Identifier, pkg *ciphersuite.Round2Public) error {
	state, err := e.store.GetDkgState()
	if err != nil {
		return err
	}
	if state != store.DkgPart2 {
		return newErr("receive part2", KindInvalidDkgState, nil)
	}
	maxSigners, _, err := e.store.GetMaxSigners()
	if err != nil {
		return err
	}

	count, err := e.store.CountReceivedPart2()
	if err != nil {
		return err
	}
	if count >= int(maxSigners)-1 {
		return newErr("receive part2", KindPart2MaxPartiesReached, nil)
	}

	if err := e.store.AddReceivedPart2(peer, pkg); err != nil {
		return err
	}

	newCount, err := e.store.CountReceivedPart2()
	if err != nil {
		return err
	}
	if newCount+1 == int(maxSigners) {
		return e.store.SetDkgState(store.DkgPart3)
	}
	return nil
}

// Part3 consumes the round-2 secret, validates every received share,
// derives the final signing key package and public key package, persists
// the keypair record, and clears the DKG working set, per spec.md section
// 4.D. Clearing deletes the DKG blob, so the state reads as Initial
// afterwards; DkgFinalized is never written.
func (e *Engine) Part3() (*ciphersuite.SigningKeyPackage, *ciphersuite.PublicKeyPackage, error) {
	state, err := e.store.GetDkgState()
	if err != nil {
		return nil, nil, err
	}
	if state != store.DkgPart3 {
		return nil, nil, newErr("part3", KindInvalidDkgState, nil)
	}

	secret, err := e.store.GetPart2Secret()
	if err != nil {
		return nil, nil, newErr("part3", KindPart2SecretNotFound, err)
	}
	receivedPart1, err := e.store.GetAllReceivedPart1()
	if err != nil {
		return nil, nil, err
	}
	receivedPart2, err := e.store.GetAllReceivedPart2()
	if err != nil {
		return nil, nil, err
	}

	signingKeyPkg, publicKeyPkg, err := ciphersuite.Part3(secret, receivedPart1, receivedPart2)
	secret.Zero()
	if err != nil {
		return nil, nil, newErr("part3", KindPart3KeyGeneration, err)
	}

	maxSigners, _, err := e.store.GetMaxSigners()
	if err != nil {
		return nil, nil, err
	}
	minSigners, _, err := e.store.GetMinSigners()
	if err != nil {
		return nil, nil, err
	}

	participants := make([][]byte, 0, len(receivedPart2))
	for id := range receivedPart2 {
		participants = append(participants, id.Bytes())
	}

	record := &store.KeypairRecord{
		Identifier:    signingKeyPkg.Identifier.Bytes(),
		MaxSigners:    maxSigners,
		MinSigners:    minSigners,
		SigningKey:    signingKeyPkg.Encode(),
		PublicPackage: publicKeyPkg.Encode(),
		Participants:  participants,
	}
	if err := e.store.SetKeypair(record); err != nil {
		return nil, nil, err
	}
	if err := e.store.ClearDkg(); err != nil {
		return nil, nil, err
	}

	return signingKeyPkg, publicKeyPkg, nil
}

// RecoveryStatus reports this party's DKG progress after a restart, the
// supplemented startup-normalization feature described in SPEC_FULL.md.
type RecoveryStatus struct {
	State      store.DkgState
	HasKeypair bool
}

// Recover inspects the store at startup and replays the tail of Part3's
// clear_dkg postcondition if a process crash left a finalized keypair
// alongside a non-empty DKG working set.
func (e *Engine) Recover() (RecoveryStatus, error) {
	state, err := e.store.GetDkgState()
	if err != nil {
		return RecoveryStatus{}, err
	}

	_, err = e.store.GetKeypair()
	hasKeypair := err == nil

	if hasKeypair && state != store.DkgInitial {
		if err := e.store.ClearDkg(); err != nil {
			return RecoveryStatus{}, err
		}
		state = store.DkgInitial
	}

	return RecoveryStatus{State: state, HasKeypair: hasKeypair}, nil
}
