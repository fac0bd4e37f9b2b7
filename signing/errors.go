// Package signing implements the signing engine of spec.md section 4.E:
// the per-party, per-message-hash coordinator and participant state
// machines driving FROST's two signing rounds plus aggregation against a
// store.Store and the ciphersuite package.
package signing

import "fmt"

// Kind classifies engine-level failures, per spec.md section 7's Signing
// state taxonomy.
type Kind uint8

const (
	KindMessageToSignNotFound Kind = iota
	KindMessageToSignAlreadyExists
	KindExpectedRound1SigningState
	KindExpectedRound2SigningState
	KindExpectedAggregateSigningState
	KindInvalidParticipant
	KindInvalidParticipants
	KindRound1NoncesNotFound
	KindRound1NoncesAndCommitmentsNotFound
	KindSigningPackageNotFound
	KindSigningRound1
	KindSigningRound2
	KindUnableToAggregateSignature
	KindInvalidAggregateSignature
	KindUnableToRemoveValidSignedParticipantMessage
	KindKeypairNotFound
)

func (k Kind) String() string {
	switch k {
	case KindMessageToSignNotFound:
		return "message_to_sign_not_found"
	case KindMessageToSignAlreadyExists:
		return "message_to_sign_already_exists"
	case KindExpectedRound1SigningState:
		return "expected_round1_signing_state"
	case KindExpectedRound2SigningState:
		return "expected_round2_signing_state"
	case KindExpectedAggregateSigningState:
		return "expected_aggregate_signing_state"
	case KindInvalidParticipant:
		return "invalid_participant"
	case KindInvalidParticipants:
		return "invalid_participants"
	case KindRound1NoncesNotFound:
		return "round1_nonces_not_found"
	case KindRound1NoncesAndCommitmentsNotFound:
		return "round1_nonces_and_commitments_not_found"
	case KindSigningPackageNotFound:
		return "signing_package_not_found"
	case KindSigningRound1:
		return "signing_round1"
	case KindSigningRound2:
		return "signing_round2"
	case KindUnableToAggregateSignature:
		return "unable_to_aggregate_signature"
	case KindInvalidAggregateSignature:
		return "invalid_aggregate_signature"
	case KindUnableToRemoveValidSignedParticipantMessage:
		return "unable_to_remove_valid_signed_participant_message"
	case KindKeypairNotFound:
		return "keypair_not_found"
	default:
		return "unknown"
	}
}

// Error is the signing package's error type, carrying a Kind and the
// message_hash the failure pertains to, where relevant.
type Error struct {
	Kind        Kind
	Op          string
	MessageHash [32]byte
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("signing: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(op string, kind Kind, hash [32]byte, err error) error {
	return &Error{Op: op, Kind: kind, MessageHash: hash, Err: err}
}
