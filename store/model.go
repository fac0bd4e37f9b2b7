package store

// DkgState is the DKG working set's phase, per spec.md section 4.D's state
// diagram: Initial -> Part1 -> Part2 -> Part3 -> Finalized.
type DkgState uint8

const (
	DkgInitial DkgState = iota
	DkgPart1
	DkgPart2
	DkgPart3
	DkgFinalized
)

func (s DkgState) String() string {
	switch s {
	case DkgInitial:
		return "initial"
	case DkgPart1:
		return "part1"
	case DkgPart2:
		return "part2"
	case DkgPart3:
		return "part3"
	case DkgFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// dkgBlob is the on-disk CBOR representation of the single DKG working-set
// record (spec.md section 3's "DKG working set"). Every field holds
// ciphersuite-encoded opaque bytes; this package never interprets the
// cryptographic content of a value, only its presence and keying, per
// spec.md section 9's note that the store's serialization layer is
// "opaque to it."
//
// Map keys are the raw 32-byte identifier encoding converted to a Go
// string, since fxamacker/cbor marshals map[string][]byte directly without
// needing a custom MarshalCBOR on the key type.
type dkgBlob struct {
	State         DkgState          `cbor:"state"`
	Identifier    []byte            `cbor:"identifier,omitempty"`
	HasIdentifier bool              `cbor:"has_identifier"`
	MaxSigners    uint16            `cbor:"max_signers"`
	MinSigners    uint16            `cbor:"min_signers"`
	Part1Secret   []byte            `cbor:"part1_secret,omitempty"`
	Part1Public   []byte            `cbor:"part1_public,omitempty"`
	ReceivedPart1 map[string][]byte `cbor:"received_part1,omitempty"`
	Part2Secret   []byte            `cbor:"part2_secret,omitempty"`
	Part2Outgoing map[string][]byte `cbor:"part2_outgoing,omitempty"`
	ReceivedPart2 map[string][]byte `cbor:"received_part2,omitempty"`
}

// KeypairRecord is the finalized DKG output this party keeps for signing,
// per spec.md section 3's "Keypair record."
type KeypairRecord struct {
	Identifier    []byte
	MaxSigners    uint16
	MinSigners    uint16
	SigningKey    []byte // ciphersuite.SigningKeyPackage.Encode(); secret at rest
	PublicPackage []byte // ciphersuite.PublicKeyPackage.Encode()
	Participants  [][]byte
}

type keypairBlob struct {
	Identifier    []byte   `cbor:"identifier"`
	MaxSigners    uint16   `cbor:"max_signers"`
	MinSigners    uint16   `cbor:"min_signers"`
	SigningKey    []byte   `cbor:"signing_key"`
	PublicPackage []byte   `cbor:"public_package"`
	Participants  [][]byte `cbor:"participants"`
}

// SigningState is a coordinator-side signing record's phase, per spec.md
// section 4.E's state diagram: Round1 -> Round2 -> Aggregate -> (removed).
type SigningState uint8

const (
	SigningRound1 SigningState = iota
	SigningRound2
	SigningAggregate
)

func (s SigningState) String() string {
	switch s {
	case SigningRound1:
		return "round1"
	case SigningRound2:
		return "round2"
	case SigningAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// CoordinatorMessage is the coordinator-side bookkeeping record for one
// in-flight signing operation, keyed by message_hash, per spec.md section
// 3's "Coordinator message."
type CoordinatorMessage struct {
	State           SigningState
	Participants    [][]byte
	IsSigner        bool
	Nonces          []byte            // ciphersuite.SigningNonces.Encode(); set only when IsSigner; secret until consumed
	SigningPackage  []byte            // ciphersuite.SigningPackage.Encode(), set once Round2 begins
	Commitments     map[string][]byte // participant id -> SigningCommitments.Encode()
	SignatureShares map[string][]byte // participant id -> SignatureShare.Encode()
}

type coordinatorMessageBlob struct {
	State           SigningState      `cbor:"state"`
	Participants    [][]byte          `cbor:"participants"`
	IsSigner        bool              `cbor:"is_signer"`
	Nonces          []byte            `cbor:"nonces,omitempty"`
	SigningPackage  []byte            `cbor:"signing_package,omitempty"`
	Commitments     map[string][]byte `cbor:"commitments,omitempty"`
	SignatureShares map[string][]byte `cbor:"signature_shares,omitempty"`
}

// ParticipantMessage is a signer-side bookkeeping record for one in-flight
// signing operation it was asked to participate in, keyed by message_hash,
// per spec.md section 3's "Participant message."
type ParticipantMessage struct {
	Participants   [][]byte
	Coordinator    []byte
	Nonces         []byte // ciphersuite.SigningNonces.Encode(); secret until consumed
	Commitments    []byte // this party's own SigningCommitments.Encode()
	SigningPackage []byte // set once the coordinator dispatches round 2
	Round2Share    []byte // this party's SignatureShare.Encode(), once computed
}

type participantMessageBlob struct {
	Participants   [][]byte `cbor:"participants"`
	Coordinator    []byte   `cbor:"coordinator"`
	Nonces         []byte   `cbor:"nonces,omitempty"`
	Commitments    []byte   `cbor:"commitments,omitempty"`
	SigningPackage []byte   `cbor:"signing_package,omitempty"`
	Round2Share    []byte   `cbor:"round2_share,omitempty"`
}

// SignedMessage is the terminal artifact of a completed signing operation,
// written by the coordinator's Aggregate and kept until the caller removes
// it with Store.DeleteSignedMessage, per spec.md section 3's "Signed
// message." VerifyAndRemove does not touch it.
type SignedMessage struct {
	Participants  [][]byte
	MessageHash   [32]byte
	Signature     []byte // ciphersuite.Signature.Encode()
	PublicPackage []byte // ciphersuite.PublicKeyPackage.Encode()
}

type signedMessageBlob struct {
	Participants  [][]byte `cbor:"participants"`
	MessageHash   []byte   `cbor:"message_hash"`
	Signature     []byte   `cbor:"signature"`
	PublicPackage []byte   `cbor:"public_package"`
}
