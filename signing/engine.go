package signing

import (
	"io"

	"threshold.network/frost/ciphersuite"
	"threshold.network/frost/store"
)

// Engine drives one party's side of FROST signing ceremonies against a
// store.Store, mirroring the signal_round1/round1_commit/signing_package/
// round2_commit/aggregate calling contract of
// original_source/krill-frost/src/ops/signing.rs one operation at a time,
// per spec.md section 4.E.
type Engine struct {
	store *store.Store
	rng   io.Reader
}

// NewEngine builds a signing engine over an already-open store holding a
// finalized keypair record. rng may be nil, in which case the ciphersuite
// draws from crypto/rand.Reader.
func NewEngine(s *store.Store, rng io.Reader) *Engine {
	return &Engine{store: s, rng: rng}
}

func (e *Engine) selfIdentifier(record *store.KeypairRecord) (ciphersuite.Identifier, error) {
	return ciphersuite.DecodeIdentifier(record.Identifier)
}

func (e *Engine) keypair(op string, hash [32]byte) (*store.KeypairRecord, ciphersuite.Identifier, error) {
	record, err := e.store.GetKeypair()
	if err != nil {
		return nil, ciphersuite.Identifier{}, newErr(op, KindKeypairNotFound, hash, err)
	}
	id, err := e.selfIdentifier(record)
	if err != nil {
		return nil, ciphersuite.Identifier{}, newErr(op, KindKeypairNotFound, hash, err)
	}
	return record, id, nil
}

func identifierInList(id ciphersuite.Identifier, list [][]byte) bool {
	needle := id.Bytes()
	for _, raw := range list {
		if string(raw) == string(needle) {
			return true
		}
	}
	return false
}

// Round1Request is returned by SignalRound1 for dispatch to every
// participant, per spec.md section 6's Round1Request message shape.
type Round1Request struct {
	MessageHash  [32]byte
	Participants []ciphersuite.Identifier
	Coordinator  ciphersuite.Identifier
}

// SignalRound1 starts a new signing ceremony as coordinator for
// messageHash, per spec.md section 4.E. Every id in participants must
// already be a member of this party's keypair.participants.
func (e *Engine) SignalRound1(messageHash [32]byte, participants []ciphersuite.Identifier, isSigner bool) (*Round1Request, error) {
	if _, found, err := e.store.GetCoordinatorMessage(messageHash); err != nil {
		return nil, err
	} else if found {
		return nil, newErr("signal round1", KindMessageToSignAlreadyExists, messageHash, nil)
	}

	record, selfID, err := e.keypair("signal round1", messageHash)
	if err != nil {
		return nil, err
	}

	var offenders []ciphersuite.Identifier
	for _, id := range participants {
		if !identifierInList(id, record.Participants) {
			offenders = append(offenders, id)
		}
	}
	if len(offenders) > 0 {
		return nil, newErr("signal round1", KindInvalidParticipants, messageHash, nil)
	}

	allParticipants := append([]ciphersuite.Identifier(nil), participants...)
	commitments := make(map[string][]byte)
	var nonces []byte

	if isSigner {
		allParticipants = append(allParticipants, selfID)

		keyPkg, err := ciphersuite.DecodeSigningKeyPackage(record.SigningKey)
		if err != nil {
			return nil, newErr("signal round1", KindSigningRound1, messageHash, err)
		}
		n, c, err := ciphersuite.Commit(keyPkg.SigningShare, e.rng)
		keyPkg.Zero()
		if err != nil {
			return nil, newErr("signal round1", KindSigningRound1, messageHash, err)
		}
		nonces = n.Encode()
		n.Zero()
		commitments[string(selfID.Bytes())] = c.Encode()
	}

	participantBytes := make([][]byte, len(allParticipants))
	for i, id := range allParticipants {
		participantBytes[i] = id.Bytes()
	}

	msg := &store.CoordinatorMessage{
		State:           store.SigningRound1,
		Participants:    participantBytes,
		IsSigner:        isSigner,
		Nonces:          nonces,
		Commitments:     commitments,
		SignatureShares: make(map[string][]byte),
	}
	if err := e.store.SetCoordinatorMessage(messageHash, msg); err != nil {
		return nil, err
	}

	return &Round1Request{MessageHash: messageHash, Participants: allParticipants, Coordinator: selfID}, nil
}

// Round1CommitResult is returned by Round1Commit for delivery to the
// coordinator, per spec.md section 6's Round1Commit message shape.
type Round1CommitResult struct {
	MessageHash [32]byte
	Identifier  ciphersuite.Identifier
	Commitments *ciphersuite.SigningCommitments
}

// Round1Commit implements the participant side of round 1: draw nonces and
// commitments and persist a Participant record, per spec.md section 4.E.
func (e *Engine) Round1Commit(messageHash [32]byte, participants []ciphersuite.Identifier, coordinator ciphersuite.Identifier) (*Round1CommitResult, error) {
	record, selfID, err := e.keypair("round1 commit", messageHash)
	if err != nil {
		return nil, err
	}

	keyPkg, err := ciphersuite.DecodeSigningKeyPackage(record.SigningKey)
	if err != nil {
		return nil, newErr("round1 commit", KindSigningRound1, messageHash, err)
	}
	nonces, commitments, err := ciphersuite.Commit(keyPkg.SigningShare, e.rng)
	keyPkg.Zero()
	if err != nil {
		return nil, newErr("round1 commit", KindSigningRound1, messageHash, err)
	}

	participantBytes := make([][]byte, len(participants))
	for i, id := range participants {
		participantBytes[i] = id.Bytes()
	}

	msg := &store.ParticipantMessage{
		Participants: participantBytes,
		Coordinator:  coordinator.Bytes(),
		Nonces:       nonces.Encode(),
		Commitments:  commitments.Encode(),
	}
	nonces.Zero()
	if err := e.store.SetParticipantMessage(messageHash, msg); err != nil {
		return nil, err
	}

	return &Round1CommitResult{MessageHash: messageHash, Identifier: selfID, Commitments: commitments}, nil
}

// ReceiveRound1Commit records a participant's round-1 commitment,
// transitioning Round1 -> Round2 once every participant has responded, per
// spec.md section 4.E.
func (e *Engine) ReceiveRound1Commit(messageHash [32]byte, sender ciphersuite.Identifier, commitments *ciphersuite.SigningCommitments) error {
	msg, found, err := e.store.GetCoordinatorMessage(messageHash)
	if err != nil {
		return err
	}
	if !found {
		return newErr("receive round1 commit", KindMessageToSignNotFound, messageHash, nil)
	}
	if msg.State != store.SigningRound1 {
		return newErr("receive round1 commit", KindExpectedRound1SigningState, messageHash, nil)
	}
	if !identifierInList(sender, msg.Participants) {
		return newErr("receive round1 commit", KindInvalidParticipant, messageHash, nil)
	}

	msg.Commitments[string(sender.Bytes())] = commitments.Encode()
	if len(msg.Commitments) == len(msg.Participants) {
		msg.State = store.SigningRound2
	}
	return e.store.SetCoordinatorMessage(messageHash, msg)
}

// SigningPackageResult is returned by BuildSigningPackage for dispatch to
// every participant, per spec.md section 6's SigningPackageDispatch
// message shape.
type SigningPackageResult struct {
	MessageHash [32]byte
	Package     *ciphersuite.SigningPackage
}

// BuildSigningPackage implements the coordinator's signing_package
// operation: build the SigningPackage from collected commitments and, if
// this party is itself a signer, compute and store its own signature
// share, per spec.md section 4.E.
func (e *Engine) BuildSigningPackage(messageHash [32]byte) (*SigningPackageResult, error) {
	msg, found, err := e.store.GetCoordinatorMessage(messageHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newErr("signing package", KindMessageToSignNotFound, messageHash, nil)
	}
	if msg.State != store.SigningRound2 {
		return nil, newErr("signing package", KindExpectedRound2SigningState, messageHash, nil)
	}

	commitments := make(map[ciphersuite.Identifier]*ciphersuite.SigningCommitments, len(msg.Commitments))
	for key, raw := range msg.Commitments {
		id, err := ciphersuite.DecodeIdentifier([]byte(key))
		if err != nil {
			return nil, newErr("signing package", KindSigningRound2, messageHash, err)
		}
		c, err := ciphersuite.DecodeSigningCommitments(raw)
		if err != nil {
			return nil, newErr("signing package", KindSigningRound2, messageHash, err)
		}
		commitments[id] = c
	}

	pkg, err := ciphersuite.SigningPackageNew(commitments, messageHash)
	if err != nil {
		return nil, newErr("signing package", KindSigningRound2, messageHash, err)
	}
	msg.SigningPackage = pkg.Encode()

	if msg.IsSigner {
		record, selfID, err := e.keypair("signing package", messageHash)
		if err != nil {
			return nil, err
		}
		nonces, err := ciphersuite.DecodeSigningNonces(msg.Nonces)
		if err != nil {
			return nil, newErr("signing package", KindRound1NoncesNotFound, messageHash, err)
		}
		keyPkg, err := ciphersuite.DecodeSigningKeyPackage(record.SigningKey)
		if err != nil {
			return nil, newErr("signing package", KindSigningRound2, messageHash, err)
		}
		share, err := ciphersuite.Sign(pkg, nonces, keyPkg)
		nonces.Zero()
		keyPkg.Zero()
		if err != nil {
			return nil, newErr("signing package", KindSigningRound2, messageHash, err)
		}
		msg.SignatureShares[string(selfID.Bytes())] = share.Encode()
		msg.Nonces = nil
	}

	if err := e.store.SetCoordinatorMessage(messageHash, msg); err != nil {
		return nil, err
	}
	return &SigningPackageResult{MessageHash: messageHash, Package: pkg}, nil
}

// Round2CommitResult is returned by Round2Commit for delivery to the
// coordinator, per spec.md section 6's Round2Share message shape.
type Round2CommitResult struct {
	MessageHash    [32]byte
	Identifier     ciphersuite.Identifier
	SignatureShare *ciphersuite.SignatureShare
}

// Round2Commit implements the participant side of round 2: compute this
// party's signature share over the coordinator's signing package, caching
// the result so repeated calls for the same message are idempotent, per
// spec.md section 4.E and section 8's idempotence property.
func (e *Engine) Round2Commit(messageHash [32]byte, pkg *ciphersuite.SigningPackage) (*Round2CommitResult, error) {
	msg, found, err := e.store.GetParticipantMessage(messageHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newErr("round2 commit", KindMessageToSignNotFound, messageHash, nil)
	}

	record, selfID, err := e.keypair("round2 commit", messageHash)
	if err != nil {
		return nil, err
	}

	if len(msg.Round2Share) > 0 {
		share, err := ciphersuite.DecodeSignatureShare(msg.Round2Share)
		if err != nil {
			return nil, newErr("round2 commit", KindSigningRound2, messageHash, err)
		}
		return &Round2CommitResult{MessageHash: messageHash, Identifier: selfID, SignatureShare: share}, nil
	}

	if len(msg.Nonces) == 0 {
		return nil, newErr("round2 commit", KindRound1NoncesAndCommitmentsNotFound, messageHash, nil)
	}
	nonces, err := ciphersuite.DecodeSigningNonces(msg.Nonces)
	if err != nil {
		return nil, newErr("round2 commit", KindRound1NoncesNotFound, messageHash, err)
	}
	keyPkg, err := ciphersuite.DecodeSigningKeyPackage(record.SigningKey)
	if err != nil {
		return nil, newErr("round2 commit", KindSigningRound2, messageHash, err)
	}

	share, err := ciphersuite.Sign(pkg, nonces, keyPkg)
	nonces.Zero()
	keyPkg.Zero()
	if err != nil {
		return nil, newErr("round2 commit", KindSigningRound2, messageHash, err)
	}

	msg.SigningPackage = pkg.Encode()
	msg.Round2Share = share.Encode()
	msg.Nonces = nil
	if err := e.store.SetParticipantMessage(messageHash, msg); err != nil {
		return nil, err
	}

	return &Round2CommitResult{MessageHash: messageHash, Identifier: selfID, SignatureShare: share}, nil
}

// ReceiveRound2Commit records a participant's signature share,
// transitioning Round2 -> Aggregate once every participant has responded,
// per spec.md section 4.E.
func (e *Engine) ReceiveRound2Commit(messageHash [32]byte, sender ciphersuite.Identifier, share *ciphersuite.SignatureShare) error {
	msg, found, err := e.store.GetCoordinatorMessage(messageHash)
	if err != nil {
		return err
	}
	if !found {
		return newErr("receive round2 commit", KindMessageToSignNotFound, messageHash, nil)
	}
	if msg.State != store.SigningRound2 {
		return newErr("receive round2 commit", KindExpectedRound2SigningState, messageHash, nil)
	}
	if !identifierInList(sender, msg.Participants) {
		return newErr("receive round2 commit", KindInvalidParticipant, messageHash, nil)
	}

	msg.SignatureShares[string(sender.Bytes())] = share.Encode()
	if len(msg.SignatureShares) == len(msg.Participants) {
		msg.State = store.SigningAggregate
	}
	return e.store.SetCoordinatorMessage(messageHash, msg)
}

// AggregateResult is returned by Aggregate for optional broadcast, per
// spec.md section 6's AggregateResult message shape.
type AggregateResult struct {
	MessageHash  [32]byte
	Signature    *ciphersuite.Signature
	Coordinator  ciphersuite.Identifier
	Participants []ciphersuite.Identifier
}

// Aggregate combines every signature share into the final signature,
// removing the Coordinator record as part of the operation, per spec.md
// section 4.E.
func (e *Engine) Aggregate(messageHash [32]byte) (*AggregateResult, error) {
	msg, found, err := e.store.GetCoordinatorMessage(messageHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newErr("aggregate", KindMessageToSignNotFound, messageHash, nil)
	}
	if msg.State != store.SigningAggregate {
		return nil, newErr("aggregate", KindExpectedAggregateSigningState, messageHash, nil)
	}

	record, selfID, err := e.keypair("aggregate", messageHash)
	if err != nil {
		return nil, err
	}

	pkg, err := ciphersuite.DecodeSigningPackage(msg.SigningPackage)
	if err != nil {
		return nil, newErr("aggregate", KindSigningPackageNotFound, messageHash, err)
	}
	pubPkg, err := ciphersuite.DecodePublicKeyPackage(record.PublicPackage)
	if err != nil {
		return nil, newErr("aggregate", KindUnableToAggregateSignature, messageHash, err)
	}

	shares := make(map[ciphersuite.Identifier]*ciphersuite.SignatureShare, len(msg.SignatureShares))
	for key, raw := range msg.SignatureShares {
		id, err := ciphersuite.DecodeIdentifier([]byte(key))
		if err != nil {
			return nil, newErr("aggregate", KindUnableToAggregateSignature, messageHash, err)
		}
		share, err := ciphersuite.DecodeSignatureShare(raw)
		if err != nil {
			return nil, newErr("aggregate", KindUnableToAggregateSignature, messageHash, err)
		}
		shares[id] = share
	}

	signature, err := ciphersuite.Aggregate(pkg, shares, pubPkg)
	if err != nil {
		return nil, newErr("aggregate", KindUnableToAggregateSignature, messageHash, err)
	}

	if err := e.store.DeleteCoordinatorMessage(messageHash); err != nil {
		return nil, err
	}

	participants := make([]ciphersuite.Identifier, 0, len(msg.Participants))
	for _, raw := range msg.Participants {
		id, err := ciphersuite.DecodeIdentifier(raw)
		if err != nil {
			return nil, newErr("aggregate", KindUnableToAggregateSignature, messageHash, err)
		}
		participants = append(participants, id)
	}

	if err := e.store.SetSignedMessage(messageHash, &store.SignedMessage{
		Participants:  msg.Participants,
		MessageHash:   messageHash,
		Signature:     signature.Encode(),
		PublicPackage: record.PublicPackage,
	}); err != nil {
		return nil, err
	}

	return &AggregateResult{MessageHash: messageHash, Signature: signature, Coordinator: selfID, Participants: participants}, nil
}

// Verify checks agg's signature against this party's own stored group
// verifying key (keypair.PublicPackage), per spec.md section 4.E: verify
// takes the aggregate as a parameter, it does not read a local
// signed_messages record — every finalized party already holds the group
// verifying key from its own DKG output.
func (e *Engine) Verify(agg *AggregateResult) error {
	record, _, err := e.keypair("verify", agg.MessageHash)
	if err != nil {
		return err
	}
	pubPkg, err := ciphersuite.DecodePublicKeyPackage(record.PublicPackage)
	if err != nil {
		return newErr("verify", KindInvalidAggregateSignature, agg.MessageHash, err)
	}
	if err := pubPkg.VerifyingKey().Verify(agg.MessageHash, agg.Signature); err != nil {
		return newErr("verify", KindInvalidAggregateSignature, agg.MessageHash, err)
	}
	return nil
}

// VerifyAndRemove verifies agg and then removes this party's own
// Participant record for it, so a completed ceremony leaves no residue,
// per spec.md section 4.E.
func (e *Engine) VerifyAndRemove(agg *AggregateResult) error {
	if err := e.Verify(agg); err != nil {
		return err
	}
	if err := e.store.DeleteParticipantMessage(agg.MessageHash); err != nil {
		return newErr("verify and remove", KindUnableToRemoveValidSignedParticipantMessage, agg.MessageHash, err)
	}
	return nil
}
