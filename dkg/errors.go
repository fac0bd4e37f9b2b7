// Package dkg implements the DKG engine of spec.md section 4.D: the
// per-party state machine driving part1/part2/part3 of the FROST key
// generation ceremony against a store.Store and the ciphersuite package.
package dkg

import "fmt"

// Kind classifies engine-level failures, per spec.md section 7's
// Configuration and DKG state taxonomies.
type Kind uint8

const (
	KindMinSignersGreaterThanMax Kind = iota
	KindThereMustBeAtLeast2Signers
	KindIdentifierAlreadyExists
	KindInvalidDkgState
	KindDkgStateAlreadyFinalized
	KindPart1MaxPartiesReached
	KindPart2MaxPartiesReached
	KindPart1KeyGeneration
	KindPart2KeyGeneration
	KindPart3KeyGeneration
	KindRound1SecretNotFound
	KindPart1PublicPackageNotFound
	KindPart2SecretNotFound
	KindDkgIdentifierNotFound
)

func (k Kind) String() string {
	switch k {
	case KindMinSignersGreaterThanMax:
		return "min_signers_greater_than_max_signers"
	case KindThereMustBeAtLeast2Signers:
		return "there_must_be_at_least_2_signers"
	case KindIdentifierAlreadyExists:
		return "identifier_already_exists"
	case KindInvalidDkgState:
		return "invalid_dkg_state"
	case KindDkgStateAlreadyFinalized:
		return "dkg_state_already_finalized"
	case KindPart1MaxPartiesReached:
		return "part1_max_parties_reached"
	case KindPart2MaxPartiesReached:
		return "part2_max_parties_reached"
	case KindPart1KeyGeneration:
		return "part1_key_generation"
	case KindPart2KeyGeneration:
		return "part2_key_generation"
	case KindPart3KeyGeneration:
		return "part3_key_generation"
	case KindRound1SecretNotFound:
		return "round1_secret_not_found"
	case KindPart1PublicPackageNotFound:
		return "part1_public_package_not_found"
	case KindPart2SecretNotFound:
		return "part2_secret_not_found"
	case KindDkgIdentifierNotFound:
		return "dkg_identifier_not_found"
	default:
		return "unknown"
	}
}

// Error is the dkg package's error type, carrying a Kind for callers to
// branch on with errors.Is/errors.As.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dkg: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("dkg: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}
